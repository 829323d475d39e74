package pattern

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

var (
	ErrUnknownService   = fmt.Errorf("unknown service")
	ErrDuplicatePattern = fmt.Errorf("pattern already registered")
)

// Store holds the per-service URL pattern lists. The service set is fixed at
// build time; Load and Register may only extend the pattern lists of known
// services. The backing file is the source of truth across restarts.
type Store struct {
	mu       sync.RWMutex
	file     string
	order    []string
	patterns map[string][]string
}

// NewStore builds a store seeded with the built-in pattern table, persisted
// to the given file.
func NewStore(file string) *Store {
	patterns := make(map[string][]string, len(builtinPatterns))
	for service, list := range builtinPatterns {
		patterns[service] = append([]string(nil), list...)
	}
	order := append([]string(nil), builtinServiceOrder...)
	return &Store{
		file:     file,
		order:    order,
		patterns: patterns,
	}
}

// Services returns the service names in their fixed scan order.
func (s *Store) Services() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Patterns returns a copy of the pattern list for the given service.
func (s *Store) Patterns(service string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.patterns[service]...)
}

// Has reports whether the service is part of the fixed service set.
func (s *Store) Has(service string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.patterns[service]
	return ok
}

// Load merges the persisted pattern file into the built-in set. Only services
// already known to the store are considered; already present patterns are
// skipped. When the file does not exist yet, the current set is written out
// instead so that the file exists for manual editing.
func (s *Store) Load() error {
	logger := logutil.GetLogger(context.Background())
	data, err := os.ReadFile(filepath.Clean(s.file))
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("pattern file not found, bootstrapping", zap.String("file", s.file))
			return s.Save()
		}
		logger.Error("read pattern file failed", zap.String("file", s.file), zap.Error(err))
		return fmt.Errorf("read pattern file: %w", err)
	}
	loaded := make(map[string][]string)
	if err := json.Unmarshal(data, &loaded); err != nil {
		logger.Error("parse pattern file failed", zap.String("file", s.file), zap.Error(err))
		return fmt.Errorf("parse pattern file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	merged := 0
	for service, list := range loaded {
		existing, ok := s.patterns[service]
		if !ok {
			logger.Warn("skip patterns of unknown service", zap.String("service", service))
			continue
		}
		seen := make(map[string]struct{}, len(existing))
		for _, p := range existing {
			seen[p] = struct{}{}
		}
		for _, p := range list {
			if _, ok := seen[p]; ok {
				continue
			}
			s.patterns[service] = append(s.patterns[service], p)
			seen[p] = struct{}{}
			merged++
		}
	}
	logger.Info("pattern file loaded", zap.String("file", s.file), zap.Int("merged", merged))
	return nil
}

// Save writes the full pattern set to the backing file.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.patterns, "", "    ")
	s.mu.RUnlock()
	logger := logutil.GetLogger(context.Background())
	if err != nil {
		logger.Error("marshal pattern set failed", zap.Error(err))
		return fmt.Errorf("marshal pattern set: %w", err)
	}
	if dir := filepath.Dir(s.file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("create pattern dir failed", zap.Error(err))
			return fmt.Errorf("create pattern dir: %w", err)
		}
	}
	if err := os.WriteFile(s.file, data, 0o644); err != nil {
		logger.Error("write pattern file failed", zap.String("file", s.file), zap.Error(err))
		return fmt.Errorf("write pattern file: %w", err)
	}
	return nil
}

// Register appends a new pattern for a known service and persists the store.
// The pattern must compile as a regular expression.
func (s *Store) Register(service string, pat string) error {
	logger := logutil.GetLogger(context.Background())
	if _, err := regexp.Compile(pat); err != nil {
		logger.Error("register pattern compile failed",
			zap.String("service", service), zap.String("pattern", pat), zap.Error(err))
		return fmt.Errorf("compile pattern: %w", err)
	}

	s.mu.Lock()
	existing, ok := s.patterns[service]
	if !ok {
		s.mu.Unlock()
		logger.Warn("register pattern for unknown service", zap.String("service", service))
		return fmt.Errorf("service:%s, %w", service, ErrUnknownService)
	}
	for _, p := range existing {
		if p == pat {
			s.mu.Unlock()
			return fmt.Errorf("service:%s, %w", service, ErrDuplicatePattern)
		}
	}
	s.patterns[service] = append(s.patterns[service], pat)
	s.mu.Unlock()

	logger.Info("pattern registered", zap.String("service", service), zap.String("pattern", pat))
	if err := s.Save(); err != nil {
		// in-memory state stays authoritative until the next successful save
		logger.Warn("persist after register failed", zap.Error(err))
	}
	return nil
}
