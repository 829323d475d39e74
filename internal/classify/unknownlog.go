package classify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/vlink/internal/metrics"
	"go.uber.org/zap"
)

// logUnknownFormat appends the URL to the per-service unknown format log.
// These files feed pattern curation; failures here never affect the
// classification result.
func (c *Classifier) logUnknownFormat(service string, url string) {
	metrics.UnknownFormatTotal.WithLabelValues(service).Inc()
	logger := logutil.GetLogger(context.Background())
	logger.Warn("unrecognized url format", zap.String("service", service), zap.String("url", url))

	name := fmt.Sprintf("unknown_%s_urls.log", strings.ToLower(service))
	path := name
	if c.unknownDir != "" {
		if err := os.MkdirAll(c.unknownDir, 0o755); err != nil {
			logger.Error("create unknown log dir failed", zap.Error(err))
			return
		}
		path = filepath.Join(c.unknownDir, name)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Error("open unknown log failed", zap.String("file", path), zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s - %s\n", time.Now().Format(time.RFC3339), url); err != nil {
		logger.Error("append unknown log failed", zap.String("file", path), zap.Error(err))
	}
}
