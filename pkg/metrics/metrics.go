// Package metrics holds the Prometheus collectors for wallet auth flows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wallet"

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	otpDispatch   *prometheus.CounterVec
	authOutcomes  *prometheus.CounterVec
	walletCreated *prometheus.CounterVec
	otpExpired    prometheus.Counter
	httpDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		otpDispatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_dispatch_total",
			Help:      "OTP deliveries by channel and result.",
		}, []string{"channel", "result"}),
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_outcomes_total",
			Help:      "Login, verify and resend outcomes.",
		}, []string{"channel", "operation", "outcome"}),
		walletCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "created_total",
			Help:      "Custodial wallets created.",
		}, []string{"channel"}),
		otpExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_challenges_expired_total",
			Help:      "Pending OTP challenges cleared after expiry.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.otpDispatch,
		m.authOutcomes,
		m.walletCreated,
		m.otpExpired,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) OTPDispatched(channel string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.otpDispatch.WithLabelValues(channel, result).Inc()
}

func (m *Metrics) AuthOutcome(channel, operation, outcome string) {
	if m == nil {
		return
	}
	m.authOutcomes.WithLabelValues(channel, operation, outcome).Inc()
}

func (m *Metrics) WalletCreated(channel string) {
	if m == nil {
		return
	}
	m.walletCreated.WithLabelValues(channel).Inc()
}

func (m *Metrics) ChallengesExpired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.otpExpired.Add(float64(n))
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
