package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.home.luguber.info/inful/hugocms/internal/audit"
	"git.home.luguber.info/inful/hugocms/internal/config"
	"git.home.luguber.info/inful/hugocms/internal/logfields"
	"git.home.luguber.info/inful/hugocms/internal/metrics"
	"git.home.luguber.info/inful/hugocms/internal/scheduler"
	"git.home.luguber.info/inful/hugocms/internal/server"
	"git.home.luguber.info/inful/hugocms/internal/site"
	"git.home.luguber.info/inful/hugocms/internal/version"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Listen    string `short:"l" help:"Listen address override (e.g. :5000)"`
	NoMetrics bool   `name:"no-metrics" help:"Disable the Prometheus /metrics endpoint"`
	NoAudit   bool   `name:"no-audit" help:"Disable the audit log"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)
	if s.Listen != "" {
		cfg.Server.Listen = s.Listen
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.serve(ctx, cfg)
}

func (s *ServeCmd) serve(ctx context.Context, cfg *config.Config) error {
	slog.Info("Starting hugocms",
		slog.String("version", version.String()),
		logfields.URL(cfg.Repository.URL),
		logfields.Branch(cfg.Repository.Branch))

	var recorder metrics.Recorder = metrics.NewNoopRecorder()
	var metricsHandler *metrics.PrometheusRecorder
	if !s.NoMetrics {
		metricsHandler = metrics.NewPrometheusRecorder()
		recorder = metricsHandler
	}

	var auditor server.AuditLog
	if !s.NoAudit {
		store, err := openAuditStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		auditor = store
	}

	manager := site.NewManager(cfg, recorder)
	defer manager.Close()
	if err := manager.Setup(ctx); err != nil {
		// Keep serving so the operator can repair the repository settings
		// through POST /admin/api/setup; readiness reports 503 until then.
		slog.Error("Site setup failed, starting in not-ready state", logfields.Error(err))
	}

	if interval := cfg.Sync.Interval.Std(); interval > 0 {
		sched, err := scheduler.New()
		if err != nil {
			return err
		}
		err = sched.SchedulePeriodicSync(interval, func() {
			syncCtx, cancel := context.WithTimeout(ctx, interval)
			defer cancel()
			if err := manager.Sync(syncCtx); err != nil {
				slog.Error("Scheduled sync failed", logfields.Error(err))
				return
			}
			if _, err := manager.Build(syncCtx); err != nil {
				slog.Error("Rebuild after scheduled sync failed", logfields.Error(err))
			}
		})
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Error("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	opts := server.Options{Manager: manager, Auditor: auditor, Recorder: recorder}
	if metricsHandler != nil {
		opts.MetricsHandler = metricsHandler.Handler()
	}
	return server.New(cfg.Server, opts).Run(ctx)
}

func openAuditStore(cfg *config.Config) (*audit.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.AuditDB), 0o750); err != nil {
		return nil, fmt.Errorf("create audit log directory: %w", err)
	}
	store, err := audit.Open(cfg.AuditDB)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	slog.Info("Audit log opened", logfields.Path(cfg.AuditDB))
	return store, nil
}
