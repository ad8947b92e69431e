package currency

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "currency"

// Metrics counts engine events. A nil *Metrics records nothing.
type Metrics struct {
	detections      *prometheus.CounterVec
	resolutions     *prometheus.CounterVec
	storageErrors   *prometheus.CounterVec
	unknownCurrency *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		detections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "country",
				Name:      "detections_total",
				Help:      "Country detections by the signal that decided (geolocation, timezone, language, default)",
			},
			[]string{"source"},
		),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "resolver",
				Name:      "resolutions_total",
				Help:      "User currency resolutions by outcome (stored, detected, explicit)",
			},
			[]string{"outcome"},
		),
		storageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "resolver",
				Name:      "storage_errors_total",
				Help:      "Preference store failures by operation",
			},
			[]string{"op"},
		),
		unknownCurrency: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "unknown_codes_total",
				Help:      "Currency codes missing from the registry by call site",
			},
			[]string{"site"},
		),
	}

	if reg != nil {
		for _, collector := range m.collectors() {
			if err := reg.Register(collector); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.detections, m.resolutions, m.storageErrors, m.unknownCurrency}
}

func (m *Metrics) detection(source SignalSource) {
	if m == nil {
		return
	}
	m.detections.WithLabelValues(string(source)).Inc()
}

func (m *Metrics) resolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) storageError(op string) {
	if m == nil {
		return
	}
	m.storageErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) unknown(site string) {
	if m == nil {
		return
	}
	m.unknownCurrency.WithLabelValues(site).Inc()
}
