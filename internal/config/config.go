package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xxxsen/common/logger"
	"gopkg.in/yaml.v3"
)

// Config is the root runtime configuration.
type Config struct {
	Bind    string           `json:"bind" yaml:"bind"`
	Log     logger.LogConfig `json:"log" yaml:"log"`
	Pattern PatternConfig    `json:"pattern" yaml:"pattern"`
	Cache   CacheConfig      `json:"cache" yaml:"cache"`
	Fetch   FetchConfig      `json:"fetch" yaml:"fetch"`
	Pprof   PprofConfig      `json:"pprof" yaml:"pprof"`
}

type PatternConfig struct {
	File       string `json:"file" yaml:"file"`
	UnknownDir string `json:"unknown_dir" yaml:"unknown_dir"`
}

type CacheConfig struct {
	ServiceSize       int    `json:"service_size" yaml:"service_size"`
	ServiceTTLSeconds int64  `json:"service_ttl_seconds" yaml:"service_ttl_seconds"`
	MetaSize          int    `json:"meta_size" yaml:"meta_size"`
	MetaMemoryMB      int64  `json:"meta_memory_mb" yaml:"meta_memory_mb"`
	MetaFile          string `json:"meta_file" yaml:"meta_file"`
	MemoryLimitMB     int64  `json:"memory_limit_mb" yaml:"memory_limit_mb"`
}

type FetchConfig struct {
	Bin            string `json:"bin" yaml:"bin"`
	TimeoutSeconds int64  `json:"timeout_seconds" yaml:"timeout_seconds"`
}

type PprofConfig struct {
	Enable bool   `json:"enable" yaml:"enable"`
	Bind   string `json:"bind" yaml:"bind"`
}

// Load reads the configuration file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Bind == "" {
		cfg.Bind = ":8090"
	}
	if cfg.Pattern.File == "" {
		cfg.Pattern.File = "url_patterns.json"
	}
	if cfg.Cache.MetaFile == "" {
		cfg.Cache.MetaFile = "video_cache.json"
	}
	return cfg, nil
}
