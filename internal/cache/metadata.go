package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	defaultMetaCacheSize    = 50
	defaultMetaCacheBytes   = 100 * 1024 * 1024
	defaultMemoryThreshold  = 512 * 1024 * 1024
	defaultPressureInterval = 5 * time.Minute
)

// MemoryProbe reports the current process memory usage in bytes.
type MemoryProbe func() uint64

// GCHint asks the runtime to reclaim memory after a pressure eviction.
type GCHint func()

func defaultMemoryProbe() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.Sys
}

// MetaCacheOptions controls the metadata cache bounds and collaborators.
type MetaCacheOptions struct {
	MaxCount         int
	MaxBytes         int64
	File             string
	MemoryThreshold  uint64
	PressureInterval time.Duration
	Probe            MemoryProbe
	Hint             GCHint
}

// MetaCache stores fetched metadata blobs keyed by URL, bounded both by entry
// count and by the summed serialized size of its values. Least-recently-used
// entries are evicted first whenever either bound would be exceeded.
type MetaCache struct {
	mu        sync.Mutex
	cache     *lru.Cache[string, *metaEntry]
	opts      MetaCacheOptions
	bytes     int64
	lastCheck time.Time
	now       func() time.Time
}

type metaEntry struct {
	key   string
	value json.RawMessage
	size  int64
}

// NewMetaCache creates the cache and, when a backing file is configured,
// loads the persisted snapshot from it.
func NewMetaCache(opts MetaCacheOptions) (*MetaCache, error) {
	if opts.MaxCount <= 0 {
		opts.MaxCount = defaultMetaCacheSize
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMetaCacheBytes
	}
	if opts.MemoryThreshold == 0 {
		opts.MemoryThreshold = defaultMemoryThreshold
	}
	if opts.PressureInterval <= 0 {
		opts.PressureInterval = defaultPressureInterval
	}
	if opts.Probe == nil {
		opts.Probe = defaultMemoryProbe
	}
	if opts.Hint == nil {
		opts.Hint = debug.FreeOSMemory
	}
	c := &MetaCache{
		opts: opts,
		now:  time.Now,
	}
	lruCache, err := lru.NewWithEvict(opts.MaxCount, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("init lru: %w", err)
	}
	c.cache = lruCache
	c.lastCheck = c.now()
	if opts.File != "" {
		if err := c.loadFromFile(); err != nil {
			logutil.GetLogger(context.Background()).Error("load metadata cache file failed",
				zap.String("file", opts.File), zap.Error(err))
		}
	}
	return c, nil
}

// onEvict runs inside lru mutations while c.mu is held.
func (c *MetaCache) onEvict(key string, ent *metaEntry) {
	c.bytes -= ent.size
}

// Key returns the cache key for a URL.
func Key(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Get returns the metadata stored for the URL and promotes it to
// most-recently-used. It also opportunistically runs the memory pressure
// check at the configured interval.
func (c *MetaCache) Get(url string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkPressure()
	ent, ok := c.cache.Get(Key(url))
	if !ok {
		return nil, false
	}
	return ent.value, true
}

// Set stores metadata for the URL, evicting least-recently-used entries
// until both the count and the byte bound hold, then persists the cache.
func (c *MetaCache) Set(url string, value json.RawMessage) {
	key := Key(url)
	size := int64(len(value))

	c.mu.Lock()
	if _, ok := c.cache.Peek(key); ok {
		c.cache.Remove(key)
	}
	for c.cache.Len() >= c.opts.MaxCount || c.bytes+size > c.opts.MaxBytes {
		if _, _, ok := c.cache.RemoveOldest(); !ok {
			break
		}
	}
	c.cache.Add(key, &metaEntry{key: key, value: value, size: size})
	c.bytes += size
	if c.opts.File == "" {
		c.mu.Unlock()
		return
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	if err := c.writeSnapshot(snapshot); err != nil {
		logutil.GetLogger(context.Background()).Warn("persist metadata cache failed",
			zap.String("file", c.opts.File), zap.Error(err))
	}
}

// Stats reports the current cache occupancy against its bounds.
type MetaCacheStats struct {
	Entries    int   `json:"entries"`
	MaxEntries int   `json:"max_entries"`
	Bytes      int64 `json:"bytes"`
	MaxBytes   int64 `json:"max_bytes"`
}

func (c *MetaCache) Stats() MetaCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return MetaCacheStats{
		Entries:    c.cache.Len(),
		MaxEntries: c.opts.MaxCount,
		Bytes:      c.bytes,
		MaxBytes:   c.opts.MaxBytes,
	}
}

// Clear drops all entries.
func (c *MetaCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
	c.bytes = 0
}

// checkPressure evicts half the cache oldest-first when the process memory
// probe exceeds the configured threshold. Caller must hold c.mu.
func (c *MetaCache) checkPressure() {
	now := c.now()
	if now.Sub(c.lastCheck) < c.opts.PressureInterval {
		return
	}
	c.lastCheck = now
	if c.opts.Probe() <= c.opts.MemoryThreshold {
		return
	}
	removed := 0
	for target := c.cache.Len() / 2; removed < target; removed++ {
		if _, _, ok := c.cache.RemoveOldest(); !ok {
			break
		}
	}
	c.opts.Hint()
	logutil.GetLogger(context.Background()).Info("memory pressure eviction",
		zap.Int("removed", removed), zap.Int("remaining", c.cache.Len()))
}

type persistRecord struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// snapshotLocked captures the cache content oldest-to-newest. Caller must
// hold c.mu.
func (c *MetaCache) snapshotLocked() []persistRecord {
	keys := c.cache.Keys()
	records := make([]persistRecord, 0, len(keys))
	for _, key := range keys {
		ent, ok := c.cache.Peek(key)
		if !ok {
			continue
		}
		records = append(records, persistRecord{Key: ent.key, Value: ent.value})
	}
	return records
}

// SaveToFile writes the full cache content to the backing file.
func (c *MetaCache) SaveToFile() error {
	c.mu.Lock()
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	return c.writeSnapshot(snapshot)
}

func (c *MetaCache) writeSnapshot(snapshot []persistRecord) error {
	path := strings.TrimSpace(c.opts.File)
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// loadFromFile restores a persisted snapshot, keeping its recency order.
func (c *MetaCache) loadFromFile() error {
	data, err := os.ReadFile(filepath.Clean(c.opts.File))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var records []persistRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range records {
		size := int64(len(rec.Value))
		for c.cache.Len() >= c.opts.MaxCount || c.bytes+size > c.opts.MaxBytes {
			if _, _, ok := c.cache.RemoveOldest(); !ok {
				break
			}
		}
		c.cache.Add(rec.Key, &metaEntry{key: rec.Key, value: rec.Value, size: size})
		c.bytes += size
	}
	return nil
}
