package classify

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/vlink/internal/cache"
	"github.com/xxxsen/vlink/internal/matcher"
	"github.com/xxxsen/vlink/internal/metrics"
	"github.com/xxxsen/vlink/internal/pattern"
	"go.uber.org/zap"
)

// ServiceUnknown is returned when no registered service covers a URL.
const ServiceUnknown = "Unknown"

// Options wires the classifier's collaborators.
type Options struct {
	Store      *pattern.Store
	Domains    map[string]string
	CacheSize  int
	CacheTTL   time.Duration
	UnknownDir string
}

// Classifier resolves the video service behind a URL. All matching state is
// built once on first use and read-only afterwards; concurrent calls are safe.
type Classifier struct {
	store      *pattern.Store
	matcher    *matcher.Matcher
	trie       *matcher.ServiceTrie
	domains    map[string]string
	domainScan []string
	cache      *cache.ServiceCache
	unknownDir string
	initOnce   sync.Once
}

// New creates a classifier. A nil Domains map falls back to the built-in
// domain table.
func New(opts Options) *Classifier {
	domains := opts.Domains
	if domains == nil {
		domains = pattern.BuiltinDomains()
	}
	return &Classifier{
		store:      opts.Store,
		matcher:    matcher.NewMatcher(opts.Store),
		domains:    domains,
		cache:      cache.NewServiceCache(opts.CacheSize, opts.CacheTTL),
		unknownDir: opts.UnknownDir,
	}
}

// Init loads the pattern file, compiles the matchers and builds the domain
// trie. It runs at most once; ServiceName and Validate call it lazily.
func (c *Classifier) Init() {
	c.initOnce.Do(func() {
		if err := c.store.Load(); err != nil {
			// built-in patterns remain authoritative
			logutil.GetLogger(context.Background()).Warn("load pattern file failed", zap.Error(err))
		}
		c.matcher.Compile()
		c.trie = matcher.NewServiceTrie()
		for domain, service := range c.domains {
			c.trie.Add(domain, service)
		}
		// longest domain first so my.mail.ru wins over mail.ru
		c.domainScan = make([]string, 0, len(c.domains))
		for domain := range c.domains {
			c.domainScan = append(c.domainScan, domain)
		}
		sort.Slice(c.domainScan, func(i, j int) bool {
			if len(c.domainScan[i]) != len(c.domainScan[j]) {
				return len(c.domainScan[i]) > len(c.domainScan[j])
			}
			return c.domainScan[i] < c.domainScan[j]
		})
	})
}

// ServiceName resolves the service a URL belongs to. Domain recognition wins
// over pattern mismatch: a URL on a known domain is labelled with that
// service even when no pattern matches, and the miss is logged for pattern
// curation.
func (c *Classifier) ServiceName(url string) string {
	if url == "" {
		return ServiceUnknown
	}
	c.Init()
	if service, ok := c.cache.Get(url); ok {
		metrics.ServiceCacheHits.WithLabelValues("hit").Inc()
		return service
	}
	metrics.ServiceCacheHits.WithLabelValues("miss").Inc()

	service := c.resolve(url)
	c.cache.Set(url, service)
	metrics.ClassifyTotal.WithLabelValues(service).Inc()
	return service
}

func (c *Classifier) resolve(url string) string {
	if trieService := c.trie.Find(url); trieService != "" {
		if c.matcher.MatchService(url, trieService) {
			return trieService
		}
		c.logUnknownFormat(trieService, url)
		return trieService
	}
	if service, ok := c.matcher.MatchAny(url); ok {
		return service
	}
	for _, domain := range c.domainScan {
		if strings.Contains(url, domain) {
			service := c.domains[domain]
			c.logUnknownFormat(service, url)
			return service
		}
	}
	return ServiceUnknown
}

// Validate checks whether a URL is a well-formed locator for a supported
// service. It returns nil for valid URLs and a *ValidationError otherwise.
// Unlike ServiceName, a recognized domain with an unrecognized URL shape is
// rejected here.
func (c *Classifier) Validate(url string) error {
	return c.validate(url, true)
}

func (c *Classifier) validate(url string, allowFix bool) error {
	if url == "" {
		return &ValidationError{Kind: KindEmptyInput}
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		if allowFix && !strings.Contains(url, "://") {
			fixed := "https://" + url
			logutil.GetLogger(context.Background()).Info("auto-correct url",
				zap.String("url", url), zap.String("fixed", fixed))
			return c.validate(fixed, false)
		}
		return &ValidationError{Kind: KindMissingScheme}
	}
	c.Init()
	if trieService := c.trie.Find(url); trieService != "" && c.matcher.MatchService(url, trieService) {
		return nil
	}
	if _, ok := c.matcher.MatchAny(url); ok {
		return nil
	}
	if service := c.ServiceName(url); service != ServiceUnknown {
		return &ValidationError{Kind: KindFormatMismatch, Service: service}
	}
	return &ValidationError{Kind: KindUnsupportedService}
}

// CacheLen exposes the classification cache occupancy for stats reporting.
func (c *Classifier) CacheLen() int {
	return c.cache.Len()
}

// RegisterPattern adds a pattern for a known service and persists the store.
// Compiled matchers are fixed after first use, so new patterns take effect
// on the next process start.
func (c *Classifier) RegisterPattern(service string, pat string) error {
	return c.store.Register(service, pat)
}
