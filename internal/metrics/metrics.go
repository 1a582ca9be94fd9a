package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sync"
)

const (
	namespace = "shoutout"
)

// Request results
const (
	ResultCacheHit = "cache_hit"
	ResultComputed = "computed"
	ResultFallback = "fallback"
	ResultError    = "error"
)

// Rejection reasons
const (
	RejectNoBatch      = "no_batch"
	RejectDetailsError = "details_error"
	RejectNoWikidata   = "no_wikidata"
	RejectEntityError  = "entity_error"
	RejectNotHuman     = "not_human"
	RejectQuality      = "quality"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Requests           *prometheus.CounterVec
	SelectionAttempts  prometheus.Counter
	CandidatesRejected *prometheus.CounterVec
	SelectionDuration  prometheus.Histogram
	UpstreamRequests   *prometheus.CounterVec
	CircuitBreaker     *prometheus.GaugeVec
	Announcements      prometheus.Counter
	Mutex              sync.Mutex
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "The total number of daily shoutout requests by result",
			},
			[]string{"result"},
		),
		SelectionAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_attempts_total",
			Help:      "The total number of candidate batches tried",
		}),
		CandidatesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "candidates_rejected_total",
				Help:      "Rejected candidates by reason",
			},
			[]string{"reason"},
		),
		SelectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "selection_duration_seconds",
			Help:      "Time spent selecting a new shoutout",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Requests sent to the encyclopedia APIs",
			},
			[]string{"endpoint", "outcome"},
		),
		CircuitBreaker: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
		Announcements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "announcements_total",
			Help:      "The total number of shoutouts posted to Telegram",
		}),
	}

	reg.MustRegister(
		m.Requests,
		m.SelectionAttempts,
		m.CandidatesRejected,
		m.SelectionDuration,
		m.UpstreamRequests,
		m.CircuitBreaker,
		m.Announcements,
	)

	return m
}

func (m *Metrics) ObserveRequest(result string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAttempt() {
	if m == nil {
		return
	}
	m.SelectionAttempts.Inc()
}

func (m *Metrics) ObserveRejection(reason string) {
	if m == nil {
		return
	}
	m.CandidatesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveSelection(seconds float64) {
	if m == nil {
		return
	}
	m.SelectionDuration.Observe(seconds)
}

func (m *Metrics) ObserveUpstream(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.CircuitBreaker.WithLabelValues(name).Set(state)
}

func (m *Metrics) ObserveAnnouncement() {
	if m == nil {
		return
	}
	m.Announcements.Inc()
}
