// Package diagnostics serves a read-only HTTP view of a running runtime.
package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/synapse/internal/logging"
	"github.com/aretw0/synapse/pkg/cognitive"
	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/events"
	"github.com/aretw0/synapse/pkg/plugin"
	"github.com/aretw0/synapse/pkg/store"
)

// Runtime is what the diagnostics routes read from.
type Runtime interface {
	Bus() *events.Bus
	Store() *store.Store
	Plugins() *plugin.Orchestrator
	Cognitive() cognitive.Snapshot
}

// Server holds the routes.
type Server struct {
	runtime Runtime
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the diagnostics router for rt.
func NewHandler(rt Runtime, opts ...Option) http.Handler {
	s := &Server{runtime: rt, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.Health)
	r.Get("/state", s.State)
	r.Get("/plugins", s.Plugins)
	r.Get("/events", s.Events)
	r.Get("/events/stream", s.Stream)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Health handles GET /healthz. It answers 503 until the plugins are initialized.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	plugins := s.runtime.Plugins()
	body := map[string]any{
		"initialized": plugins.IsInitialized(),
		"started":     plugins.IsStarted(),
		"cognitive":   s.runtime.Cognitive().State,
	}
	status := http.StatusOK
	if !plugins.IsInitialized() {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, body)
}

// State handles GET /state.
func (s *Server) State(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.runtime.Store().GetState())
}

// Plugins handles GET /plugins.
func (s *Server) Plugins(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.runtime.Plugins().Status())
}

// Events handles GET /events?pattern=<p>&limit=<n> from the bus history.
func (s *Server) Events(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	evts := s.runtime.Bus().History(r.URL.Query().Get("pattern"), limit)
	if evts == nil {
		evts = []domain.Event{}
	}
	s.writeJSON(w, http.StatusOK, evts)
}

// Stream handles GET /events/stream (SSE). Slow clients miss events rather than block emitters.
func (s *Server) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = domain.Wildcard
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	feed := make(chan domain.Event, 64)
	unsubscribe := s.runtime.Bus().Subscribe(pattern, func(_ context.Context, evt domain.Event) error {
		select {
		case feed <- evt:
		default:
		}
		return nil
	}, events.WithPriority(-1000))
	defer unsubscribe()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-feed:
			data, err := json.Marshal(evt)
			if err != nil {
				data, _ = json.Marshal(domain.Event{ID: evt.ID, Name: evt.Name, Source: evt.Source, Timestamp: evt.Timestamp})
			}
			fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", evt.ID, evt.Name, data)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("diagnostics encode failed", "error", err)
	}
}
