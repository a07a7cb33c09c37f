// Package metrics exports signal activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coreman2200/trafficsignal/internal/traffic"
)

const namespace = "trafficsignal"

type Metrics struct {
	reg *prometheus.Registry

	cycles      prometheus.Counter
	activations *prometheus.CounterVec
	lit         *prometheus.GaugeVec
	holdSeconds *prometheus.CounterVec
	faults      prometheus.Counter
}

// New registers the signal collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed pattern cycles",
		}),
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lamp_activations_total",
			Help:      "Times each lamp was switched on",
		}, []string{"color"}),
		lit: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lamp_lit",
			Help:      "1 for the lamp currently lit, 0 otherwise",
		}, []string{"color"}),
		holdSeconds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lamp_hold_seconds_total",
			Help:      "Requested hold time per lamp",
		}, []string{"color"}),
		faults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_total",
			Help:      "Lamp output faults",
		}),
	}
	m.reg.MustRegister(m.cycles, m.activations, m.lit, m.holdSeconds, m.faults)
	for _, c := range traffic.Colors() {
		m.lit.WithLabelValues(c.String()).Set(0)
	}
	return m
}

func (m *Metrics) ObserveLight(l traffic.Light) {
	for _, c := range traffic.Colors() {
		v := 0.0
		if c == l.Color {
			v = 1
		}
		m.lit.WithLabelValues(c.String()).Set(v)
	}
	m.activations.WithLabelValues(l.Color.String()).Inc()
	m.holdSeconds.WithLabelValues(l.Color.String()).Add(float64(l.Sec))
}

func (m *Metrics) ObserveCycle() { m.cycles.Inc() }

func (m *Metrics) ObserveFault() { m.faults.Inc() }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
