package matcher

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/vlink/internal/pattern"
	"go.uber.org/zap"
)

type patternEntry struct {
	raw string
	re  *regexp.Regexp
}

// compiledService is either one combined alternation regexp for the whole
// service, or a fallback list of individually compiled patterns when the
// combined form fails to compile.
type compiledService struct {
	combined *regexp.Regexp
	fallback []patternEntry
}

func (c *compiledService) match(url string) bool {
	if c.combined != nil {
		return c.combined.MatchString(url)
	}
	for _, entry := range c.fallback {
		if entry.re.MatchString(url) {
			return true
		}
	}
	return false
}

// Matcher evaluates URLs against the compiled per-service pattern sets.
// Compilation happens at most once and the compiled state is read-only
// afterwards, so Match calls are safe for concurrent use.
type Matcher struct {
	store    *pattern.Store
	once     sync.Once
	order    []string
	services map[string]*compiledService
}

func NewMatcher(store *pattern.Store) *Matcher {
	return &Matcher{store: store}
}

// Compile builds the per-service matchers from the current pattern store
// state. Repeated calls are no-ops.
func (m *Matcher) Compile() {
	m.once.Do(m.compile)
}

func (m *Matcher) compile() {
	logger := logutil.GetLogger(context.Background())
	m.order = m.store.Services()
	m.services = make(map[string]*compiledService, len(m.order))
	for _, service := range m.order {
		patterns := m.store.Patterns(service)
		if len(patterns) == 0 {
			continue
		}
		m.services[service] = compileService(service, patterns, logger)
	}
	logger.Info("pattern matchers compiled", zap.Int("service_count", len(m.services)))
}

func compileService(service string, patterns []string, logger *zap.Logger) *compiledService {
	anchored := make([]string, 0, len(patterns))
	for _, p := range patterns {
		anchored = append(anchored, anchorPattern(p))
	}
	combined, err := regexp.Compile(strings.Join(anchored, "|"))
	if err == nil {
		return &compiledService{combined: combined}
	}
	logger.Warn("combined pattern compile failed, falling back to per-pattern matching",
		zap.String("service", service), zap.Error(err))
	fallback := make([]patternEntry, 0, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(anchored[i])
		if err != nil {
			// one bad pattern degrades only itself
			logger.Warn("pattern compile failed",
				zap.String("service", service), zap.String("pattern", p), zap.Error(err))
			continue
		}
		fallback = append(fallback, patternEntry{raw: p, re: re})
	}
	return &compiledService{fallback: fallback}
}

// anchorPattern wraps a pattern so it must describe the entire URL.
func anchorPattern(p string) string {
	return fmt.Sprintf(`\A(?:%s)\z`, p)
}

// MatchService reports whether the URL matches any pattern of the service.
func (m *Matcher) MatchService(url string, service string) bool {
	m.Compile()
	cs, ok := m.services[service]
	if !ok {
		return false
	}
	return cs.match(url)
}

// MatchAny scans the services in their fixed order and returns the first one
// whose patterns match the URL.
func (m *Matcher) MatchAny(url string) (string, bool) {
	m.Compile()
	for _, service := range m.order {
		cs, ok := m.services[service]
		if !ok {
			continue
		}
		if cs.match(url) {
			return service, true
		}
	}
	return "", false
}

// MatchedPattern returns the original pattern text matching the URL for the
// given service, used by diagnostics. The combined variant reports the first
// constituent pattern that matches individually.
func (m *Matcher) MatchedPattern(url string, service string) (string, bool) {
	m.Compile()
	if _, ok := m.services[service]; !ok {
		return "", false
	}
	for _, p := range m.store.Patterns(service) {
		re, err := regexp.Compile(anchorPattern(p))
		if err != nil {
			continue
		}
		if re.MatchString(url) {
			return p, true
		}
	}
	return "", false
}
