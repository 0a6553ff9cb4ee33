package decode

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK        = "ok"
	OutcomeCacheHit  = "cache_hit"
	OutcomeTransport = "transport_error"
	OutcomeStatus    = "status_error"
	OutcomeMalformed = "malformed"
)

// Metrics counts decode requests by outcome. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
}

// NewMetrics creates decode counters and registers them when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "decodedtx",
			Subsystem: "decode",
			Name:      "requests_total",
			Help:      "Decode requests by outcome. Failures are served to consumers as empty results.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests)
	}
	return m
}

// Requests exposes the underlying counter vector.
func (m *Metrics) Requests() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.requests
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeErr(err error) {
	switch {
	case err == nil:
		m.observe(OutcomeOK)
	case errors.Is(err, ErrTransport):
		m.observe(OutcomeTransport)
	case errors.Is(err, ErrStatus):
		m.observe(OutcomeStatus)
	default:
		m.observe(OutcomeMalformed)
	}
}
