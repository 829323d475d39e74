package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/vlink/internal/cache"
	"github.com/xxxsen/vlink/internal/classify"
	"github.com/xxxsen/vlink/internal/config"
	"github.com/xxxsen/vlink/internal/fetcher"
	"github.com/xxxsen/vlink/internal/pattern"
	"github.com/xxxsen/vlink/internal/server"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// logger not initialised yet, fallback to stderr
		log.Fatalf("init config failed, err:%v", err)
	}
	logkit := logger.Init(cfg.Log.File, cfg.Log.Level, int(cfg.Log.FileCount),
		int(cfg.Log.FileSize), int(cfg.Log.KeepDays), cfg.Log.Console)
	defer logkit.Sync() //nolint:errcheck

	store := pattern.NewStore(cfg.Pattern.File)
	classifier := classify.New(classify.Options{
		Store:      store,
		CacheSize:  cfg.Cache.ServiceSize,
		CacheTTL:   time.Duration(cfg.Cache.ServiceTTLSeconds) * time.Second,
		UnknownDir: cfg.Pattern.UnknownDir,
	})
	classifier.Init()

	metaCache, err := cache.NewMetaCache(cache.MetaCacheOptions{
		MaxCount:        cfg.Cache.MetaSize,
		MaxBytes:        cfg.Cache.MetaMemoryMB * 1024 * 1024,
		File:            cfg.Cache.MetaFile,
		MemoryThreshold: uint64(cfg.Cache.MemoryLimitMB) * 1024 * 1024,
	})
	if err != nil {
		logkit.Fatal("init metadata cache failed", zap.Error(err))
	}
	fetch := fetcher.WithCache(fetcher.NewYtDlp(cfg.Fetch.Bin), metaCache)

	if cfg.Pprof.Enable {
		startPprofServer(cfg.Pprof.Bind, logkit)
	}

	svr := server.New(cfg.Bind, classifier, fetch, metaCache,
		time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logkit.Info("vlink listening", zap.String("addr", cfg.Bind))
	if err := svr.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logkit.Fatal("server error", zap.Error(err))
	}
	if err := metaCache.SaveToFile(); err != nil {
		logkit.Warn("save metadata cache on exit failed", zap.Error(err))
	}
	logkit.Info("shutdown complete")
}
