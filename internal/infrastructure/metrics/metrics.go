package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the marketplace counters. A nil *Metrics records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	submissions  *prometheus.CounterVec
	pollOutcomes *prometheus.CounterVec
	pollAttempts *prometheus.HistogramVec
	access       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ppv",
			Name:      "submissions_total",
			Help:      "State-changing calls handed to a wallet, by outcome.",
		}, []string{"backend", "kind", "outcome"}),
		pollOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ppv",
			Name:      "poll_outcomes_total",
			Help:      "Terminal confirmation poll results.",
		}, []string{"backend", "kind", "status"}),
		pollAttempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ppv",
			Name:      "poll_attempts",
			Help:      "Observations needed before a poll resolved.",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 40, 60},
		}, []string{"backend", "kind"}),
		access: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ppv",
			Name:      "access_decisions_total",
			Help:      "View authorization decisions by source.",
		}, []string{"backend", "source", "allowed"}),
	}
	reg.MustRegister(m.submissions, m.pollOutcomes, m.pollAttempts, m.access)
	return m
}

func (m *Metrics) Submission(backend, kind, outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(backend, kind, outcome).Inc()
}

func (m *Metrics) PollResult(backend, kind, status string, attempts int) {
	if m == nil {
		return
	}
	m.pollOutcomes.WithLabelValues(backend, kind, status).Inc()
	if attempts > 0 {
		m.pollAttempts.WithLabelValues(backend, kind).Observe(float64(attempts))
	}
}

// Access records a CanView decision; source is uploader, cache, store or chain.
func (m *Metrics) Access(backend, source string, allowed bool) {
	if m == nil {
		return
	}
	a := "false"
	if allowed {
		a = "true"
	}
	m.access.WithLabelValues(backend, source, a).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler exposes the registry on a fiber route.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
