package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IngestTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "floorapi_ingest_total",
		Help: "Total number of layout ingestion requests",
	})
	IngestFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "floorapi_ingest_failures_total",
		Help: "Total ingestion failures by error kind",
	}, []string{"kind"})
	IngestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "floorapi_ingest_duration_ms",
		Help:    "Ingestion duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
	})
	FallbackSynthTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "floorapi_fallback_synthesis_total",
		Help: "Total ingestions that fell back to grid-layout room synthesis",
	})
	UpsertsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "floorapi_upserts_total",
		Help: "Total layout records upserted",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "floorapi_cache_hits_total",
		Help: "Total redis layout cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "floorapi_cache_misses_total",
		Help: "Total redis layout cache misses",
	})
)

func init() {
	prometheus.MustRegister(
		IngestTotal,
		IngestFailuresTotal,
		IngestDurationMs,
		FallbackSynthTotal,
		UpsertsTotal,
		CacheHitsTotal,
		CacheMissesTotal,
	)
}

// Handler：暴露 prometheus 抓取端点
func Handler() http.Handler {
	return promhttp.Handler()
}
