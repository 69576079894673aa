// Package metrics exposes prometheus collectors for the event store.
//
// A nil *Registry is valid and records nothing, so storage code can run
// without metrics wired (tests, the import command).
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aevon-lab/relaystore/internal/core/storage"
)

const namespace = "relaystore"

// Registry owns the relaystore collectors.
type Registry struct {
	registry *prometheus.Registry

	opDuration    *prometheus.HistogramVec
	saveOutcomes  *prometheus.CounterVec
	poolExhausted prometheus.Counter

	poolMaxOpen  prometheus.Gauge
	poolOpen     prometheus.Gauge
	poolInUse    prometheus.Gauge
	poolIdle     prometheus.Gauge
	poolAcquired prometheus.Gauge
	poolWaits    prometheus.Gauge
}

// PoolStats is a snapshot of connection pool usage.
type PoolStats struct {
	MaxOpen int
	Open    int
	InUse   int
	Idle    int
	// Acquired counts connections checked out through the bounded pool.
	Acquired  int
	WaitCount int64
}

// NewRegistry creates a registry with the store collectors plus the process
// and Go runtime collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		opDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "operation_duration_seconds",
				Help:      "Event store operation duration in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation", "status"},
		),
		saveOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "saves_total",
				Help:      "Save attempts by outcome",
			},
			[]string{"outcome"},
		),
		poolExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "exhausted_total",
			Help:      "Connection acquisitions that timed out",
		}),
		poolMaxOpen:  newPoolGauge("connections_max", "Maximum number of open connections"),
		poolOpen:     newPoolGauge("connections_open", "Number of established connections"),
		poolInUse:    newPoolGauge("connections_in_use", "Number of connections currently in use"),
		poolIdle:     newPoolGauge("connections_idle", "Number of idle connections"),
		poolAcquired: newPoolGauge("connections_acquired", "Connections checked out by store operations"),
		poolWaits:    newPoolGauge("wait_count", "Total number of connections waited for"),
	}

	reg.MustRegister(
		r.opDuration,
		r.saveOutcomes,
		r.poolExhausted,
		r.poolMaxOpen,
		r.poolOpen,
		r.poolInUse,
		r.poolIdle,
		r.poolAcquired,
		r.poolWaits,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return r
}

func newPoolGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pool",
		Name:      name,
		Help:      help,
	})
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(
		r.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	)
}

// ObserveOperation records the duration of one store operation.
func (r *Registry) ObserveOperation(op string, started time.Time, err error) {
	if r == nil {
		return
	}
	r.opDuration.WithLabelValues(op, statusLabel(err)).Observe(time.Since(started).Seconds())
}

// RecordSave counts one save outcome.
func (r *Registry) RecordSave(status storage.SaveStatus, err error) {
	if r == nil {
		return
	}
	outcome := status.String()
	if err != nil {
		outcome = "error"
	}
	r.saveOutcomes.WithLabelValues(outcome).Inc()
}

// RecordPoolExhausted counts one acquire timeout.
func (r *Registry) RecordPoolExhausted() {
	if r == nil {
		return
	}
	r.poolExhausted.Inc()
}

// SetPoolStats publishes a pool snapshot.
func (r *Registry) SetPoolStats(s PoolStats) {
	if r == nil {
		return
	}
	r.poolMaxOpen.Set(float64(s.MaxOpen))
	r.poolOpen.Set(float64(s.Open))
	r.poolInUse.Set(float64(s.InUse))
	r.poolIdle.Set(float64(s.Idle))
	r.poolAcquired.Set(float64(s.Acquired))
	r.poolWaits.Set(float64(s.WaitCount))
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, storage.ErrPoolExhausted):
		return "pool_exhausted"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
