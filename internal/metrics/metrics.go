// Package metrics exposes Prometheus counters for the registration, verification
// and session flows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the flow counters.
const (
	ResultSuccess      = "success"
	ResultInvalid      = "invalid"
	ResultExpired      = "expired_or_invalid_code"
	ResultConflict     = "conflict"
	ResultUnauthorized = "unauthorized"
	ResultError        = "error"
)

// Recorder is what the services report to.
type Recorder interface {
	RecordRegistration(result string)
	RecordVerification(result string)
	RecordLogin(result string)
	RecordLogout(result string)
	RecordNotificationFailure(channel string)
	RecordHTTPRequest(method, route string, status int, took time.Duration)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	registrations  *prometheus.CounterVec
	verifications  *prometheus.CounterVec
	logins         *prometheus.CounterVec
	logouts        *prometheus.CounterVec
	notifyFailures *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	gatherer       prometheus.Gatherer
}

// NewCollector registers the auth metrics on reg. reg should also be a
// Gatherer (a *prometheus.Registry) for Handler to serve them.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regauth_registrations_total",
			Help: "Registration attempts by result.",
		}, []string{"result"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regauth_verifications_total",
			Help: "Verification code redemptions by result.",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regauth_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		logouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regauth_logouts_total",
			Help: "Logout attempts by result.",
		}, []string{"result"}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regauth_notification_failures_total",
			Help: "Verification code deliveries that failed, by channel.",
		}, []string{"channel"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regauth_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regauth_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.registrations,
		c.verifications,
		c.logins,
		c.logouts,
		c.notifyFailures,
		c.httpRequests,
		c.httpLatency,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	}
	return c
}

func (c *Collector) RecordRegistration(result string) {
	c.registrations.WithLabelValues(result).Inc()
}

func (c *Collector) RecordVerification(result string) {
	c.verifications.WithLabelValues(result).Inc()
}

func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordLogout(result string) {
	c.logouts.WithLabelValues(result).Inc()
}

func (c *Collector) RecordNotificationFailure(channel string) {
	c.notifyFailures.WithLabelValues(channel).Inc()
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, took time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(took.Seconds())
}

// Handler serves the registry the collector was registered on.
func (c *Collector) Handler() http.Handler {
	if c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used where metrics are not wired.
type Nop struct{}

func (Nop) RecordRegistration(string)                            {}
func (Nop) RecordVerification(string)                            {}
func (Nop) RecordLogin(string)                                   {}
func (Nop) RecordLogout(string)                                  {}
func (Nop) RecordNotificationFailure(string)                     {}
func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
