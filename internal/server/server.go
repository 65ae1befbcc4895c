// Package server exposes the label pipeline over HTTP.
//
// Routes:
//
//	POST /v1/labels    render a label and print or view it
//	GET  /v1/printers  list print queues
//	GET  /healthz      liveness
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	errs "github.com/matzehuels/labelprint/pkg/errors"
	"github.com/matzehuels/labelprint/pkg/label"
	"github.com/matzehuels/labelprint/pkg/observability"
	"github.com/matzehuels/labelprint/pkg/pipeline"
)

// MaxBodyBytes limits request bodies. Base64 raster labels are the
// largest payloads.
const MaxBodyBytes = 10 << 20

const shutdownTimeout = 10 * time.Second

// Service is the part of [pipeline.Runner] the server uses.
type Service interface {
	Generate(ctx context.Context, spec label.Spec) (*pipeline.Result, error)
	Printers(ctx context.Context) ([]string, error)
}

// Server handles label requests.
type Server struct {
	service Service
	logger  *log.Logger
	router  chi.Router
}

// New builds a Server around service.
func New(service Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{service: service, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/labels", s.handleLabel)
		r.Get("/printers", s.handlePrinters)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		took := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), took)
		s.logger.Info("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", took)
	})
}

// =============================================================================
// Handlers
// =============================================================================

type labelResponse struct {
	Result  string `json:"result"`
	PDFPath string `json:"pdf_path"`
	Engine  string `json:"engine"`
	JobID   string `json:"job_id"`
}

type printersResponse struct {
	Printers []string `json:"printers"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLabel(w http.ResponseWriter, r *http.Request) {
	var req label.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	spec, err := req.Spec()
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.service.Generate(r.Context(), spec)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, labelResponse{
		Result:  res.Message,
		PDFPath: res.PDFPath,
		Engine:  res.Engine,
		JobID:   res.JobID,
	})
}

func (s *Server) handlePrinters(w http.ResponseWriter, r *http.Request) {
	printers, err := s.service.Printers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, printersResponse{Printers: printers})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code errs.Code) int {
	switch {
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(string(code), "ENGINE_"):
		return http.StatusUnprocessableEntity
	case code == errs.ErrCodeDispatchFailed:
		return http.StatusBadGateway
	case code == errs.ErrCodePrintersUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errs.UserMessage(err), Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
