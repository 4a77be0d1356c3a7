// Package server exposes the CMS over HTTP: the rendered site with an
// injected admin toolbar, the admin API, and monitoring endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"git.home.luguber.info/inful/hugocms/internal/config"
	"git.home.luguber.info/inful/hugocms/internal/metrics"
	"git.home.luguber.info/inful/hugocms/internal/version"
)

// Options carries the server's collaborators.
type Options struct {
	Manager  SiteManager
	Auditor  AuditLog
	Recorder metrics.Recorder
	// MetricsHandler serves /metrics when non-nil.
	MetricsHandler http.Handler
}

// Server is the hugocms HTTP frontend.
type Server struct {
	cfg  config.ServerConfig
	opts Options
	srv  *http.Server
}

// New wires the routes and middleware into a server ready to Run.
func New(cfg config.ServerConfig, opts Options) *Server {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NewNoopRecorder()
	}
	s := &Server{cfg: cfg, opts: opts}
	mchain := chain(slog.Default(), opts.Recorder, cfg.AllowedHosts)
	s.srv = &http.Server{
		Handler:      mchain(s.routes()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the fully wired handler, exposed for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) routes() http.Handler {
	admin := &adminHandlers{manager: s.opts.Manager, auditor: s.opts.Auditor}
	mux := http.NewServeMux()

	// Monitoring.
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReadiness)
	if s.opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", s.opts.MetricsHandler)
	}

	// Admin UI and assets.
	mux.HandleFunc("GET /admin/{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(adminIndex())
	})
	mux.Handle("GET /admin/static/", staticHandler())

	// Admin API.
	mux.HandleFunc("GET /admin/api/status", admin.handleStatus)
	mux.HandleFunc("GET /admin/api/setup", admin.handleSetupGet)
	mux.HandleFunc("POST /admin/api/setup", admin.handleSetupPost)
	mux.HandleFunc("POST /admin/api/sync", admin.handleSync)
	mux.HandleFunc("POST /admin/api/build", admin.handleBuild)
	mux.HandleFunc("POST /admin/api/publish", admin.handlePublish)
	mux.HandleFunc("POST /admin/api/clear-cache", admin.handleClearCache)
	mux.HandleFunc("GET /admin/api/content", admin.handleContentList)
	mux.HandleFunc("GET /admin/api/content/{path...}", admin.handleContentGet)
	mux.HandleFunc("PUT /admin/api/content/{path...}", admin.handleContentSave)
	mux.HandleFunc("POST /admin/api/content/{path...}", admin.handleContentCreate)
	mux.HandleFunc("GET /admin/api/resolve", admin.handleResolve)
	mux.HandleFunc("POST /admin/api/preview", admin.handlePreview)
	mux.HandleFunc("GET /admin/api/audit", admin.handleAudit)

	// Everything else is the rendered site.
	mux.Handle("/", &siteHandler{manager: s.opts.Manager, fragment: adminControlsFragment()})

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Version,
	})
}

func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	public := s.opts.Manager.PublicDir()
	if public != "" {
		if info, err := os.Stat(public); err == nil && info.IsDir() {
			writeOK(w, "ready")
			return
		}
	}
	writeError(w, http.StatusServiceUnavailable, "not ready: site not built")
}

// Run binds the configured address and serves until ctx is cancelled.
// The listener is bound before serving starts so address conflicts surface
// as a returned error instead of a log line from a goroutine.
func (s *Server) Run(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.Listen, err)
	}
	slog.Info("HTTP server started", slog.String("listen", s.cfg.Listen))

	errc := make(chan error, 1)
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("HTTP server stopped")
	return nil
}
