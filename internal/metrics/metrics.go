// Package metrics records command outcomes and latencies in Prometheus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives one observation per dispatched command.
type Recorder interface {
	Observe(ctx context.Context, op string, success bool, duration time.Duration)
}

// Noop discards observations.
type Noop struct{}

func (Noop) Observe(context.Context, string, bool, time.Duration) {}

// Prometheus implements Recorder on its own registry.
type Prometheus struct {
	registry *prometheus.Registry
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	groups   prometheus.Gauge
}

// NewPrometheus builds a recorder with process and Go runtime collectors.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{
		registry: reg,
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewlist",
			Name:      "commands_total",
			Help:      "Dispatched commands by action and outcome.",
		}, []string{"action", "success"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "brewlist",
			Name:      "command_duration_seconds",
			Help:      "Command latency by action.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brewlist",
			Name:      "substitution_groups",
			Help:      "Pending substitution groups after the last recomputation.",
		}),
	}
	reg.MustRegister(
		p.total, p.duration, p.groups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	p.total.WithLabelValues(op, strconv.FormatBool(success)).Inc()
	p.duration.WithLabelValues(op).Observe(duration.Seconds())
}

// SetGroups records the size of the stored substitution set.
func (p *Prometheus) SetGroups(n int) {
	p.groups.Set(float64(n))
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
