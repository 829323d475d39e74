package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xxxsen/vlink/internal/matcher"
)

// Report carries diagnostic details about a URL, used for debugging pattern
// coverage.
type Report struct {
	URL              string `json:"url"`
	Valid            bool   `json:"valid"`
	Service          string `json:"service"`
	MatchedPattern   string `json:"matched_pattern,omitempty"`
	SuggestedPattern string `json:"suggested_pattern,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Inspect classifies a URL and reports which pattern matched it. When the
// domain is recognized but no pattern matches, a permissive pattern derived
// from the host is suggested as a starting point for registration.
func (c *Classifier) Inspect(url string) Report {
	report := Report{URL: url, Service: ServiceUnknown}
	if url == "" {
		report.Error = (&ValidationError{Kind: KindEmptyInput}).Error()
		return report
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		report.Error = (&ValidationError{Kind: KindMissingScheme}).Error()
		return report
	}
	c.Init()
	report.Service = c.ServiceName(url)
	if report.Service == ServiceUnknown {
		report.Error = (&ValidationError{Kind: KindUnsupportedService}).Error()
		return report
	}
	if pat, ok := c.matcher.MatchedPattern(url, report.Service); ok {
		report.Valid = true
		report.MatchedPattern = pat
		return report
	}
	host := matcher.HostOf(url)
	report.SuggestedPattern = fmt.Sprintf(`^https?://(?:www\.)?%s\S*$`, regexp.QuoteMeta(host))
	report.Error = (&ValidationError{Kind: KindFormatMismatch, Service: report.Service}).Error()
	return report
}
