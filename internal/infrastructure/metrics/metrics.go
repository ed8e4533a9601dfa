// Package metrics exposes Prometheus collectors for the HTTP layer, lifecycle operations,
// the projection cache and the database pool.
package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/cache"
	"retaguarda/internal/domain"
)

var (
	// Request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retaguarda_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retaguarda_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retaguarda_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	// Business metrics
	lifecycleOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retaguarda_lifecycle_operations_total",
			Help: "Total number of catalog lifecycle operations by outcome",
		},
		[]string{"entity", "operation", "outcome"},
	)

	cacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retaguarda_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	cacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retaguarda_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)
)

// Handler serves the /metrics endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Middleware records request count, latency and in-flight requests.
// Routes are labelled by their template ("/api/v1/empresas/:id") to bound cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Outcome labels an operation result: "success" or the error kind.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	return string(apperror.KindOf(err))
}

// LifecycleObserver counts every lifecycle operation by entity, operation and outcome.
func LifecycleObserver() domain.Observer {
	return func(ctx context.Context, entity string, op domain.Operation, err error) {
		lifecycleOperationsTotal.WithLabelValues(entity, string(op), Outcome(err)).Inc()
	}
}

// RecordCacheHit records a cache hit.
func RecordCacheHit(name string) {
	cacheHitsTotal.WithLabelValues(name).Inc()
}

// RecordCacheMiss records a cache miss.
func RecordCacheMiss(name string) {
	cacheMissesTotal.WithLabelValues(name).Inc()
}

// instrumentedCache counts hits and misses of the wrapped cache.
type instrumentedCache struct {
	cache.Cache
	name string
}

// InstrumentCache wraps c so every Get is counted under name.
func InstrumentCache(c cache.Cache, name string) cache.Cache {
	if c == nil {
		return nil
	}
	return &instrumentedCache{Cache: c, name: name}
}

func (c *instrumentedCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.Cache.Get(ctx, key)
	switch {
	case err == nil:
		RecordCacheHit(c.name)
	case errors.Is(err, cache.ErrMiss):
		RecordCacheMiss(c.name)
	}
	return data, err
}

// PoolStats is the pool snapshot exported as gauges.
type PoolStats struct {
	Total    int32
	Acquired int32
	Idle     int32
	Max      int32
}

// RegisterPoolGauges exports database pool gauges read from stats at scrape time.
// It must be called once per process.
func RegisterPoolGauges(stats func() PoolStats) {
	gauge := func(name, help string, pick func(PoolStats) int32) {
		promauto.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, func() float64 {
			return float64(pick(stats()))
		})
	}

	gauge("retaguarda_db_pool_total_conns", "Total connections in the database pool", func(s PoolStats) int32 { return s.Total })
	gauge("retaguarda_db_pool_acquired_conns", "Connections currently in use", func(s PoolStats) int32 { return s.Acquired })
	gauge("retaguarda_db_pool_idle_conns", "Idle connections in the pool", func(s PoolStats) int32 { return s.Idle })
	gauge("retaguarda_db_pool_max_conns", "Maximum size of the pool", func(s PoolStats) int32 { return s.Max })
}
