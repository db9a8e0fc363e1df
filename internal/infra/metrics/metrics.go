// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "storefront"

// Auth event names.
const (
	EventRegister     = "register"
	EventLogin        = "login"
	EventRefresh      = "refresh"
	EventLogout       = "logout"
	EventLogoutAll    = "logout_all"
	EventAuthenticate = "authenticate"
)

// Outcomes used alongside the events.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	AuthEvents        *prometheus.CounterVec
	RateLimitAllowed  *prometheus.CounterVec
	RateLimitRejected *prometheus.CounterVec
}

// New builds unregistered collectors.
func New() *Metrics {
	return &Metrics{
		AuthEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "auth_events_total", Help: "Number of auth operations by event and outcome."},
			[]string{"event", "outcome"},
		),
		RateLimitAllowed: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by route."},
			[]string{"route"},
		),
		RateLimitRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by route."},
			[]string{"route"},
		),
	}
}

// NewRegistry returns a registry carrying the storefront collectors plus the
// Go runtime and process collectors.
func NewRegistry(m *Metrics) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := m.RegisterCollectors(reg); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}

	return reg, nil
}

func (m *Metrics) RegisterCollectors(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.AuthEvents, m.RateLimitAllowed, m.RateLimitRejected} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// AuthEvent counts one auth operation.
func (m *Metrics) AuthEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.AuthEvents.WithLabelValues(event, outcome).Inc()
}

// RateLimit counts one limiter decision for route.
func (m *Metrics) RateLimit(route string, allowed bool) {
	if m == nil {
		return
	}
	if allowed {
		m.RateLimitAllowed.WithLabelValues(route).Inc()

		return
	}
	m.RateLimitRejected.WithLabelValues(route).Inc()
}
