package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const defaultYtDlpBin = "yt-dlp"

// YtDlpFetcher shells out to yt-dlp to retrieve video metadata as JSON.
type YtDlpFetcher struct {
	bin string
}

// NewYtDlp creates a fetcher using the given yt-dlp binary, or the one on
// PATH when empty.
func NewYtDlp(bin string) *YtDlpFetcher {
	if bin == "" {
		bin = defaultYtDlpBin
	}
	return &YtDlpFetcher{bin: bin}
}

func (f *YtDlpFetcher) Fetch(ctx context.Context, url string) (json.RawMessage, error) {
	cmd := exec.CommandContext(ctx, f.bin, "-J", "--no-warnings", "--no-playlist", url)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	logutil.GetLogger(ctx).Debug("fetch video metadata", zap.String("url", url))
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run %s: %w, stderr:%s", f.bin, err, stderr.String())
	}
	raw := bytes.TrimSpace(stdout.Bytes())
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%s returned non-json output", f.bin)
	}
	return json.RawMessage(raw), nil
}
