package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	// Outbound API call duration by operation and status ("200", "transport", ...)
	APIRequestDuration *prometheus.HistogramVec
	// Login attempts by result
	LoginAttempts *prometheus.CounterVec
	// Registration submissions by result
	Registrations *prometheus.CounterVec
	// Schedules created by result
	Schedules *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		APIRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ecolink_api_request_duration_seconds",
			Help:    "Duration of requests to the remote API in seconds.",
			Buckets: prometheus.DefBuckets,
		},
			[]string{"operation", "status"},
		),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecolink_login_attempts_total",
			Help: "Total number of login attempts.",
		},
			[]string{"result"},
		),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecolink_registrations_total",
			Help: "Total number of registration submissions.",
		},
			[]string{"result"},
		),
		Schedules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecolink_schedules_total",
			Help: "Total number of pickup schedules submitted.",
		},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(m.APIRequestDuration, m.LoginAttempts, m.Registrations, m.Schedules)
	return m
}

// ObserveAPICall records one outbound call. status is the HTTP status code, or 0 for a transport failure.
func (m *Metrics) ObserveAPICall(operation string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "transport"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.APIRequestDuration.WithLabelValues(operation, label).Observe(elapsed.Seconds())
}

func (m *Metrics) LoginResult(err error) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) RegistrationResult(err error) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) ScheduleResult(err error) {
	if m == nil {
		return
	}
	m.Schedules.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the private registry to tests
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
