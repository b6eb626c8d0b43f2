package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"calgrid/internal/config"
	appLog "calgrid/internal/log"
	"calgrid/internal/render"
	"calgrid/internal/view"
)

// Server exposes the current layout snapshot over HTTP.
type Server struct {
	cfg       *config.Config
	refresher *view.Refresher
	router    chi.Router
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, refresher *view.Refresher) *Server {
	s := &Server{
		cfg:       cfg,
		refresher: refresher,
		router:    chi.NewRouter(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	// /health 는 항상 무인증으로 노출한다.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.basicAuthEnabled() {
			appLog.Info("HTTP basic auth enabled")
			r.Use(s.basicAuthMiddleware)
		}
		r.Get("/api/layout", s.handleLayout)
		r.Post("/api/refresh", s.handleRefresh)
		r.Get("/grid", s.handleGrid)
	})
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// 빈 사용자명 또는 비밀번호가 설정된 경우에는 비활성화로 취급한다.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="calgrid", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start).Round(time.Microsecond),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// snapshotFor returns the published snapshot, or builds one for ?date=.
// On failure it writes the error response and returns nil.
func (s *Server) snapshotFor(w http.ResponseWriter, r *http.Request) *view.Snapshot {
	date := r.URL.Query().Get("date")
	if date == "" {
		snap := s.refresher.Current()
		if snap == nil {
			writeError(w, http.StatusServiceUnavailable, "layout not ready")
		}
		return snap
	}

	b := s.refresher.Builder()
	anchor, err := time.ParseInLocation(time.DateOnly, date, b.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return nil
	}
	snap, err := b.Build(r.Context(), anchor)
	if err != nil {
		appLog.Error("ad hoc layout failed", err, "date", date)
		writeError(w, http.StatusBadGateway, "failed to build layout")
		return nil
	}
	return snap
}

// handleLayout returns the laid-out snapshot as JSON.
//
// GET /api/layout[?date=YYYY-MM-DD]
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshotFor(w, r)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, render.NewSnapshotJSON(snap))
}

// handleRefresh schedules a rebuild. ?active=true|false switches the
// debounce window.
//
// POST /api/refresh[?active=bool]
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if v := r.URL.Query().Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "active must be a boolean")
			return
		}
		s.refresher.SetActive(active)
	}
	scheduled := s.refresher.Notify()
	writeJSON(w, http.StatusAccepted, refreshResponse{
		Scheduled: scheduled,
		Pending:   s.refresher.Pending(),
	})
}

// handleGrid renders the snapshot as an HTML page for browsers and the
// screenshot capture.
//
// GET /grid[?date=YYYY-MM-DD]
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshotFor(w, r)
	if snap == nil {
		return
	}
	var buf bytes.Buffer
	if err := render.HTML(&buf, snap); err != nil {
		appLog.Error("grid render failed", err)
		writeError(w, http.StatusInternalServerError, "failed to render grid")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// refreshResponse is the JSON response shape for /api/refresh.
type refreshResponse struct {
	Scheduled bool `json:"scheduled"`
	Pending   bool `json:"pending"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
