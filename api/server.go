// Package api exposes the engine over HTTP for embedding applications that
// prefer a service boundary to a library call. The engine stays synchronous;
// the server owns one built explainer and interpreter and serializes access
// to them.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"golens/adapters/report"
	"golens/app"
	"golens/domain/explain"
	"golens/internal"
	"golens/internal/errors"
	"golens/ports"
)

// Server wires the explainer and interpreter behind a chi router.
type Server struct {
	router      chi.Router
	explainer   ports.ExplainerPort
	interpreter *app.ModelInterpreter
	samples     [][]float64
	renderer    *report.Renderer
	log         *internal.Logger

	// Engine calls are synchronous and the aggregation buffer is shared, so
	// requests take the lock rather than racing on it.
	mu        sync.Mutex
	lastStats *explain.AggregationStats
}

// NewServer builds the HTTP surface around a built explainer, its batch
// interpreter, and the sample pool interpret runs draw from.
func NewServer(explainer ports.ExplainerPort, interpreter *app.ModelInterpreter, samples [][]float64, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		explainer:   explainer,
		interpreter: interpreter,
		samples:     samples,
		renderer:    report.NewRenderer(25),
		log:         logger.Named("api"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/explain", s.handleExplain)
		r.Post("/interpret", s.handleInterpret)
		r.Get("/report", s.handleReport)
	})
	s.router = r
	return s
}

// Handler returns the http handler for mounting or serving.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "built": s.explainer.IsBuilt()})
}

// explainRequest is the POST /api/explain body.
type explainRequest struct {
	Instance []float64       `json:"instance"`
	Options  explain.Options `json:"options"`
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	s.mu.Lock()
	explanation, err := s.explainer.ExplainInstance(r.Context(), req.Instance, req.Options)
	s.mu.Unlock()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, explanation)
}

// interpretRequest is the POST /api/interpret body. SampleLimit trims the
// server's sample pool for quicker runs; 0 means all.
type interpretRequest struct {
	StatsType   string `json:"stats_type"`
	NumFeatures int    `json:"num_features"`
	SampleLimit int    `json:"sample_limit"`
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	statsType := explain.StatsType(req.StatsType)
	if statsType == "" {
		statsType = explain.StatsAverageRanking
	}
	samples := s.samples
	if req.SampleLimit > 0 && req.SampleLimit < len(samples) {
		samples = samples[:req.SampleLimit]
	}

	s.mu.Lock()
	stats, processed, err := s.interpreter.Interpret(r.Context(), samples, statsType, req.NumFeatures)
	if err == nil {
		s.lastStats = stats
	}
	s.mu.Unlock()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":     stats,
		"processed": processed,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := s.lastStats
	s.mu.Unlock()
	if stats == nil {
		writeError(w, http.StatusNotFound, "no interpret run has completed yet")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(s.renderer.HTML(stats))
}

// statusFor maps engine error codes onto HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeConfigInvalid, errors.CodeInsufficientData:
		return http.StatusBadRequest
	case errors.CodeStateError:
		return http.StatusConflict
	case errors.CodeUnsupportedAlgorithm:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
