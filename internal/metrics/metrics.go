package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClassifyTotal counts classification results by resolved service.
	ClassifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vlink_classify_total",
		Help: "Total number of URL classifications by resolved service",
	}, []string{"service"})

	// ServiceCacheHits counts classification cache lookups by outcome.
	ServiceCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vlink_service_cache_lookups_total",
		Help: "Classification cache lookups by outcome",
	}, []string{"outcome"})

	// MetaCacheHits counts metadata cache lookups by outcome.
	MetaCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vlink_meta_cache_lookups_total",
		Help: "Metadata cache lookups by outcome",
	}, []string{"outcome"})

	// UnknownFormatTotal counts URLs whose domain was recognized but whose
	// shape matched no registered pattern.
	UnknownFormatTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vlink_unknown_format_total",
		Help: "Domain-recognized URLs matching no pattern, by service",
	}, []string{"service"})

	// FetchDuration tracks metadata fetch latency.
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vlink_fetch_duration_seconds",
		Help:    "Duration of metadata fetches in seconds",
		Buckets: prometheus.DefBuckets,
	})
)
