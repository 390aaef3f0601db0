// Package server exposes chat sessions over HTTP and websockets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hammamikhairi/ottohome/internal/domain"
	"github.com/hammamikhairi/ottohome/internal/logger"
	"github.com/hammamikhairi/ottohome/internal/metrics"
	"github.com/hammamikhairi/ottohome/internal/session"
)

// maxTextLen caps a single utterance.
const maxTextLen = 4096

// Server routes HTTP requests to the session manager.
type Server struct {
	sessions *session.Manager
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// New creates a server. metrics may be nil.
func New(sessions *session.Manager, m *metrics.Metrics, log *logger.Logger) *Server {
	return &Server{sessions: sessions, metrics: m, log: log}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Get("/", s.listSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.closeSession)
			r.Post("/messages", s.postMessage)
			r.Get("/history", s.getHistory)
			r.Delete("/history", s.clearHistory)
			r.Get("/devices", s.getDevices)
			r.Get("/ws", s.serveWS)
		})
	})
	return r
}

// ListenAndServe runs the HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	}
}

// unmatchedRoute labels requests no route pattern claimed, so random paths
// share one series.
const unmatchedRoute = "unmatched"

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.log.Debug("%s %s -> %d (%s)", r.Method, r.URL.Path, status, time.Since(start))
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, status, time.Since(start))
		}
	})
}

// Wire types.

type messageRequest struct {
	Text string `json:"text"`
}

type replyResponse struct {
	Text   string   `json:"text"`
	Videos []string `json:"videos,omitempty"`
	Intent string   `json:"intent"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Turns     int       `json:"turns"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type turnResponse struct {
	Role   string    `json:"role"`
	Text   string    `json:"text"`
	Videos []string  `json:"videos,omitempty"`
	At     time.Time `json:"at"`
}

type deviceResponse struct {
	Name        string `json:"name"`
	State       string `json:"state"`
	Location    string `json:"location,omitempty"`
	Temperature *int   `json:"temperature,omitempty"`
	Level       *int   `json:"level,omitempty"`
	Playing     string `json:"playing,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toReply(r domain.Reply) replyResponse {
	return replyResponse{Text: r.Text, Videos: r.VideoURLs, Intent: r.Intent.String()}
}

func toSession(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:        s.ID,
		Status:    s.Status.String(),
		Turns:     len(s.Transcript),
		StartedAt: s.StartedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toDevice(d domain.Device) deviceResponse {
	out := deviceResponse{Name: string(d.Name), State: string(d.State), Location: d.Location, Playing: d.Playing}
	switch d.Name {
	case domain.Thermostat, domain.Oven:
		t := d.Temperature
		out.Temperature = &t
	case domain.Humidifier:
		l := d.Level
		out.Level = &l
	}
	return out
}

// Handlers.

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSession(sess))
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]sessionResponse, 0, len(list))
	for _, sess := range list {
		out = append(out, toSession(sess))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 2*maxTextLen)).Decode(&body); err != nil {
		s.log.Warn("postMessage: invalid body: %v", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if msg := validateText(body.Text); msg != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return
	}

	reply, err := s.sessions.Send(r.Context(), chi.URLParam(r, "id"), body.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReply(reply))
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	turns, err := s.sessions.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]turnResponse, 0, len(turns))
	for _, t := range turns {
		out = append(out, turnResponse{Role: string(t.Role), Text: t.Text, Videos: t.VideoURLs, At: t.At})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.ClearHistory(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.sessions.Devices(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]deviceResponse, 0, len(devices))
	for _, d := range devices {
		out = append(out, toDevice(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func validateText(text string) string {
	switch {
	case strings.TrimSpace(text) == "":
		return "text must not be empty"
	case len(text) > maxTextLen:
		return "text too long"
	}
	return ""
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrTooManySessions):
		status = http.StatusServiceUnavailable
	default:
		s.log.Error("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
