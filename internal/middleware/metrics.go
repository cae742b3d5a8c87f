package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// ThreadOperations counts thread store operations by name and outcome.
	ThreadOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_thread_operations_total",
		Help: "Thread store operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// ThreadFetchDepth records how many reply levels were loaded per thread fetch.
	ThreadFetchDepth = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "campus_thread_fetch_depth",
		Help:    "Reply levels loaded when assembling a thread",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})

	// CounterRepairs counts denormalized counters rewritten by reconciliation.
	CounterRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_counter_repairs_total",
		Help: "Denormalized counters corrected by reconciliation",
	}, []string{"counter"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the HTTP metrics collector; it registers with the default registry once.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request counts and latencies.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}

// ObserveOperation records the outcome of a thread store operation.
func ObserveOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ThreadOperations.WithLabelValues(operation, outcome).Inc()
}
