package devtools

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bernotieno/mini-framework/pkg/promexport"
	"github.com/bernotieno/mini-framework/pkg/state"
)

// Server is the inspection server for one engine.
type Server struct {
	eng    *state.Engine
	logger *slog.Logger
	reg    *prometheus.Registry
	hub    *hub
	mux    chi.Router
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an inspection server for eng. The server owns a private
// Prometheus registry with the engine exporter pre-registered and starts
// the change feed by subscribing to every mutation.
func New(eng *state.Engine, opts ...Option) *Server {
	s := &Server{
		eng:    eng,
		logger: slog.Default(),
		reg:    prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.reg.MustRegister(promexport.New(eng))
	s.hub = newHub(s.logger)
	eng.SubscribeAll(s.feedChange)

	s.mux = chi.NewRouter()
	s.routes()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.Get("/state", s.handleGetTree)
	s.mux.Post("/state", s.handleMerge)
	s.mux.Get("/state/{path}", s.handleGetPath)
	s.mux.Put("/state/{path}", s.handleSetPath)
	s.mux.Post("/reset", s.handleReset)
	s.mux.Get("/stats", s.handleStats)
	s.mux.Get("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}).ServeHTTP)
	s.mux.Get("/ws", s.handleFeed)
}

// handleGetTree returns a snapshot of the whole tree.
func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.eng.Snapshot())
}

// handleGetPath returns the value at the path named in the URL.
// Missing or invalid paths serve JSON null, mirroring the engine's
// never-throw read contract.
func (s *Server) handleGetPath(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.eng.Get(chi.URLParam(r, "path")))
}

// handleSetPath stores the JSON request body at the path named in the URL.
func (s *Server) handleSetPath(w http.ResponseWriter, r *http.Request) {
	var value any
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	s.eng.Set(chi.URLParam(r, "path"), value)
	s.writeJSON(w, s.eng.Get(chi.URLParam(r, "path")))
}

// handleMerge shallow-merges the JSON request body into the tree root.
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var partial map[string]any
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		http.Error(w, "invalid JSON object body", http.StatusBadRequest)
		return
	}
	s.eng.Merge(partial)
	w.WriteHeader(http.StatusNoContent)
}

// handleReset replaces the tree with the JSON request body, or empties it
// when the body is empty.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var tree map[string]any
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&tree); err != nil {
			http.Error(w, "invalid JSON object body", http.StatusBadRequest)
			return
		}
	}
	s.eng.Reset(tree)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.eng.Stats())
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
