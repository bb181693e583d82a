package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/config"
	"github.com/dgallion1/rescalc/internal/pipeline"
)

// Server is the HTTP API server for rescalc.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	sessions     *pipeline.SessionStore
	stats        *pipeline.LatencyStats
	parser       *component.Parser
	presets      config.Presets
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. Searches that reach
// cfg.SyncThreshold components go through orch; a nil orch runs every
// search inline.
func NewServer(
	orch *pipeline.Orchestrator,
	sessions *pipeline.SessionStore,
	stats *pipeline.LatencyStats,
	parser *component.Parser,
	presets config.Presets,
	log *slog.Logger,
	cfg config.Config,
) *Server {
	s := &Server{
		orchestrator: orch,
		sessions:     sessions,
		stats:        stats,
		parser:       parser,
		presets:      presets,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/search", s.handleSearch)
		r.Get("/api/search/{jobID}/status", s.handleSearchStatus)
		r.Get("/api/search/{jobID}/result", s.handleSearchResult)
		r.Post("/api/divider", s.handleDivider)
		r.Post("/api/inventory", s.handleInventory)
		r.Get("/api/series", s.handleSeries)
		r.Get("/api/stats/search", s.handleSearchStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
