package echoapi

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	registerMetricsOnce sync.Once
)

// registerMetrics adds the HTTP collectors to the default registry; safe to
// call once per process regardless of how many servers are created.
func registerMetrics() {
	registerMetricsOnce.Do(func() {
		prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration)
	})
}

func metricsHandler() http.Handler {
	return promhttp.Handler()
}

// metricsMiddleware measures RPS, latency and in-flight requests per route.
// The route pattern is used as the path label to keep cardinality bounded.
func metricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			httpInFlight.Inc()
			start := time.Now()

			err := next(ctx)
			if err != nil {
				ctx.Error(err) // commit the response so the status is known
			}

			duration := time.Since(start).Seconds()
			method := ctx.Request().Method
			path := ctx.Path()
			status := strconv.Itoa(ctx.Response().Status)

			httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
			httpRequestsTotal.WithLabelValues(method, path, status).Inc()
			httpInFlight.Dec()
			return nil
		}
	}
}
