// Package server provides the HTTP boundary for gamescribe. It is the only
// layer that classifies errors into response categories; everything beneath
// it surfaces typed failures.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/entrhq/gamescribe/pkg/browser"
	"github.com/entrhq/gamescribe/pkg/logging"
	"github.com/entrhq/gamescribe/pkg/scrape"
)

// Transcriber is the scrape service surface the server depends on.
type Transcriber interface {
	Transcript(ctx context.Context, url string) (string, error)
	Status() scrape.Status
}

// Config configures the HTTP server.
type Config struct {
	// Addr to listen on (default :8080).
	Addr string
}

// Server is the gamescribe HTTP server.
type Server struct {
	svc        Transcriber
	log        *logging.Logger
	httpServer *http.Server
}

// New creates the server and its routes.
func New(svc Transcriber, cfg Config, log *logging.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	s := &Server{svc: svc, log: log}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/v1/transcript", s.handleTranscript)
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Router returns the HTTP handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.httpServer.Handler
}

// Start listens and serves until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.Infof("listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type transcriptRequest struct {
	URL string `json:"url"`
}

type transcriptResponse struct {
	Status   string `json:"status"`
	Notation string `json:"notation"`
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Status string    `json:"status"`
	Error  errorBody `json:"error"`
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	start := time.Now()

	var req transcriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		metricRequests.WithLabelValues("bad_request").Inc()
		s.respondError(w, http.StatusBadRequest, "bad_request", "a url field is required", reqID)
		return
	}

	metricInFlight.Inc()
	notation, err := s.svc.Transcript(r.Context(), req.URL)
	metricInFlight.Dec()
	metricDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		status, code, message := classify(err)
		metricRequests.WithLabelValues(code).Inc()
		s.log.Errorf("request %s url=%s failed: %v", reqID, req.URL, err)
		s.respondError(w, status, code, message, reqID)
		return
	}

	metricRequests.WithLabelValues("ok").Inc()
	s.log.Infof("request %s url=%s ok in %v", reqID, req.URL, time.Since(start))
	respondJSON(w, http.StatusOK, transcriptResponse{Status: "ok", Notation: notation})
}

// classify maps typed failures from the lower layers onto the response
// taxonomy. Internal detail never reaches the caller beyond a safe message.
func classify(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, scrape.ErrInvalidURL):
		return http.StatusBadRequest, "bad_request", "target url is missing or malformed"
	case errors.Is(err, scrape.ErrNoMoves):
		return http.StatusNotFound, "not_found", "no move list found on the target page"
	case errors.Is(err, browser.ErrBusy):
		return http.StatusServiceUnavailable, "busy", "too many requests in flight, try again later"
	case errors.Is(err, browser.ErrConnect), errors.Is(err, browser.ErrNavigate):
		return http.StatusBadGateway, "upstream_failure", "the target page could not be rendered"
	default:
		return http.StatusInternalServerError, "server_error", "internal error"
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	st := s.svc.Status()
	respondJSON(w, http.StatusOK, struct {
		OK        bool `json:"ok"`
		Connected bool `json:"connected"`
		InFlight  int  `json:"in_flight"`
	}{OK: true, Connected: st.Connected, InFlight: st.InFlight})
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message, reqID string) {
	respondJSON(w, status, errorResponse{
		Status: "error",
		Error:  errorBody{Code: code, Message: message, RequestID: reqID},
	})
}
