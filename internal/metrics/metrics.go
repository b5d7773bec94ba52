package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "outreach"

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	emailsTotal        *prometheus.CounterVec
	fallbacksTotal     *prometheus.CounterVec
	submissionsTotal   *prometheus.CounterVec
	campaignRecipients *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	rateLimitedTotal   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg.
// A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		emailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_total",
			Help:      "Email delivery attempts by provider, kind and outcome",
		}, []string{"provider", "kind", "outcome"}),

		fallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_fallbacks_total",
			Help:      "Deliveries retried through the fallback provider",
		}, []string{"primary", "fallback", "outcome"}),

		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_submissions_total",
			Help:      "Form submissions by form type and result",
		}, []string{"form", "result"}), // result: delivered|failed|invalid

		campaignRecipients: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaign_recipients_total",
			Help:      "Campaign recipients by outcome",
		}, []string{"outcome"}),

		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests processed",
		}, []string{"method", "route", "status"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		rateLimitedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"scope"}),

		gatherer: reg,
	}

	collectors := []prometheus.Collector{
		m.emailsTotal,
		m.fallbacksTotal,
		m.submissionsTotal,
		m.campaignRecipients,
		m.httpRequestsTotal,
		m.httpDuration,
		m.rateLimitedTotal,
	}
	for _, c := range collectors {
		if err := register(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return err
		}
	}
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// EmailSent records one delivery attempt. kind is e.g. notification, autoreply, campaign.
func (m *Metrics) EmailSent(provider, kind string, ok bool) {
	if m == nil {
		return
	}
	m.emailsTotal.WithLabelValues(provider, kind, outcome(ok)).Inc()
}

// Fallback records a retry through the fallback provider.
func (m *Metrics) Fallback(primary, fallback string, ok bool) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(primary, fallback, outcome(ok)).Inc()
}

// FormSubmitted records a form submission result.
func (m *Metrics) FormSubmitted(form, result string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(form, result).Inc()
}

// CampaignRecipient records the outcome for one campaign recipient.
func (m *Metrics) CampaignRecipient(ok bool) {
	if m == nil {
		return
	}
	m.campaignRecipients.WithLabelValues(outcome(ok)).Inc()
}

// RateLimited records a rejected request.
func (m *Metrics) RateLimited(scope string) {
	if m == nil {
		return
	}
	m.rateLimitedTotal.WithLabelValues(scope).Inc()
}

// ObserveHTTP records a completed request. route should be the mux pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
