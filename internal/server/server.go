package server

import (
	"context"
	"daily-shoutout/internal/metrics"
	"daily-shoutout/internal/shoutout"
	"daily-shoutout/internal/types"
	"daily-shoutout/lib/helpers"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// ErrorShoutout is returned by the endpoint when the selector itself fails
var ErrorShoutout = types.Shoutout{
	Name:        "Unknown",
	Description: "Failed to fetch data",
	Image:       nil,
}

// Provider supplies today's shoutout
type Provider interface {
	DailyShoutout(ctx context.Context) types.Shoutout
}

// Config of the HTTP layer
type Config struct {
	// RateLimit is the number of API requests allowed per IP per minute; 0 disables it
	RateLimit int
	Gatherer  prometheus.Gatherer
}

// Server serves the shoutout API and the page that displays it
type Server struct {
	provider Provider
	cache    *shoutout.Cache
	config   Config
	metrics  *metrics.Metrics
}

// New creates a server. cache is only read for health reporting and may be nil.
func New(provider Provider, cache *shoutout.Cache, c Config, m *metrics.Metrics) *Server {
	return &Server{
		provider: provider,
		cache:    cache,
		config:   c,
		metrics:  m,
	}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/health", s.handleHealth)

	gatherer := s.config.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		if s.config.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.config.RateLimit, time.Minute))
		}
		r.Get("/api/dailyShoutout", s.handleDailyShoutout)
	})

	return r
}

func (s *Server) handleDailyShoutout(w http.ResponseWriter, r *http.Request) {
	record := s.dailyShoutout(r.Context())

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, record)
}

// dailyShoutout shields the endpoint from panics in the selector
func (s *Server) dailyShoutout(ctx context.Context) (record types.Shoutout) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			log.Errorf("API error: %v\nStack trace: %s", r, stackBuf[:stackSize])
			s.metrics.ObserveRequest(metrics.ResultError)
			record = ErrorShoutout
		}
	}()

	return s.provider.DailyShoutout(ctx)
}

type healthResponse struct {
	Status      string `json:"status"`
	CachedDate  string `json:"cached_date,omitempty"`
	CachedName  string `json:"cached_name,omitempty"`
	CachedSince string `json:"cached_since,omitempty"`

	SelectionAttempts string `json:"selection_attempts,omitempty"`
	Announcements     string `json:"announcements,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "OK"}
	if s.cache != nil {
		record, date, computedAt := s.cache.Snapshot()
		if record != nil {
			resp.CachedDate = date
			resp.CachedName = record.Name
			resp.CachedSince = helpers.FormatAge(computedAt)
		}
	}
	if s.metrics != nil {
		resp.SelectionAttempts = helpers.FormatCount(int64(metrics.GetMetricValue(s.metrics.SelectionAttempts)))
		resp.Announcements = helpers.FormatCount(int64(metrics.GetMetricValue(s.metrics.Announcements)))
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Errorf("Failed to encode response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
