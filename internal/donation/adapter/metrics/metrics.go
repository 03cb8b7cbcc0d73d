// Package metrics records Prometheus metrics for data-layer operations.
package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder is the metrics surface used by the instrumented adapter.
type Recorder interface {
	RecordOperation(provider, operation string, success bool, elapsed time.Duration)
}

// Collector holds the data-layer metrics.
type Collector struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitamend_db_operations_total",
			Help: "Data adapter operations by provider, operation and outcome",
		}, []string{"provider", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vitamend_db_operation_duration_seconds",
			Help:    "Data adapter operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
	}

	reg.MustRegister(c.operations, c.duration)
	return c
}

func (c *Collector) RecordOperation(provider, operation string, success bool, elapsed time.Duration) {
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeFailure
	}
	c.operations.WithLabelValues(provider, operation, outcome).Inc()
	c.duration.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

// Handler serves gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
