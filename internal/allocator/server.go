package allocator

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/specialistvlad/wfplan/internal/ctxlog"
)

// JobRequest is the body of allocate and release calls.
type JobRequest struct {
	Job string `json:"job"`
}

// AllocateResponse is returned by a successful allocation.
type AllocateResponse struct {
	Resource string `json:"resource"`
}

// ReleaseResponse is returned by a successful release.
type ReleaseResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server exposes a Registry over HTTP.
type Server struct {
	registry *Registry
	metrics  *Metrics
	logger   *slog.Logger
	router   *chi.Mux
}

// NewServer builds the router. The logger is taken from ctx.
func NewServer(ctx context.Context, reg *Registry, metrics *Metrics) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	s := &Server{
		registry: reg,
		metrics:  metrics,
		logger:   ctxlog.FromContext(ctx),
	}
	s.metrics.setStatus(reg.Status())
	s.initRouter()
	return s
}

func (s *Server) initRouter() {
	s.router = chi.NewRouter()
	s.router.Post("/allocate", s.allocateHandler)
	s.router.Post("/release", s.releaseHandler)
	s.router.Get("/status", s.statusHandler)
	s.router.Get("/health", s.healthHandler)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Warn("Request to unknown endpoint.", "path", r.URL.Path)
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Endpoint not found"})
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) allocateHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeJob(w, r, "allocate")
	if !ok {
		return
	}

	id, ok := s.registry.Allocate(req.Job)
	if !ok {
		s.logger.Info("No resources available.", "job", req.Job)
		s.finish("allocate", "unavailable")
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "No resources available"})
		return
	}
	s.logger.Info("Resource allocated.", "resource", id, "job", req.Job)
	s.finish("allocate", "ok")
	writeJSON(w, http.StatusOK, AllocateResponse{Resource: id})
}

func (s *Server) releaseHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeJob(w, r, "release")
	if !ok {
		return
	}

	id, ok := s.registry.Release(req.Job)
	if !ok {
		s.logger.Warn("Attempt to release a job that holds nothing.", "job", req.Job)
		s.finish("release", "not_found")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "No resource found for the specified job"})
		return
	}
	s.logger.Info("Resource released.", "resource", id, "job", req.Job)
	s.finish("release", "ok")
	writeJSON(w, http.StatusOK, ReleaseResponse{Status: "released"})
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	s.metrics.observe("status", "ok")
	writeJSON(w, http.StatusOK, s.registry.Status())
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK\n"))
}

// decodeJob reads the request body and rejects it when no job is named.
func (s *Server) decodeJob(w http.ResponseWriter, r *http.Request, op string) (JobRequest, bool) {
	var req JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Error("Invalid request body.", "op", op, "error", err)
		s.metrics.observe(op, "bad_request")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return req, false
	}
	if req.Job == "" {
		s.logger.Error("Request received without job specified.", "op", op)
		s.metrics.observe(op, "bad_request")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Job not specified"})
		return req, false
	}
	return req, true
}

func (s *Server) finish(op, result string) {
	s.metrics.observe(op, result)
	st := s.registry.Status()
	s.metrics.setStatus(st)
	s.logger.Debug("Current resource status.", "total", st.Total, "used", st.Used, "available", st.Available)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
