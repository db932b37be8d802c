package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "communityhub/internal/adapters/email"
	web "communityhub/internal/adapters/http"
	"communityhub/internal/adapters/http/perf"
	"communityhub/internal/adapters/storage"
	"communityhub/internal/application/orchestrators"
	"communityhub/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// shutdownTimeout bounds how long in-flight requests may run after a stop signal.
const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server_exit", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(cfg.NewLogger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := perf.NewCollector(perf.DefaultRingSize)
	db, err := storage.Open(ctx, storage.ConnectOptions{
		DSN:            cfg.DSN(),
		MaxOpenConns:   cfg.Database.MaxOpenConns,
		Attempts:       cfg.Database.ConnectAttempts,
		Backoff:        cfg.Database.ConnectBackoff,
		ConnectTimeout: 5 * time.Second,
		SlowQueryMs:    cfg.SlowQueryMs,
		Collector:      collector,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.MigrateDB(ctx, db); err != nil {
		return err
	}
	slog.Info("db_ready", "path", cfg.Database.Path, "schema", storage.LatestSchemaVersion())

	stores := web.NewStores(db)
	scheduleDeps := orchestrators.ScheduleDeps{Schedules: stores.Schedules, Now: time.Now}
	if _, err := orchestrators.ExecuteEnsureSchedule(ctx, scheduleDeps); err != nil {
		return err
	}
	if !cfg.IsProduction() {
		packageDeps := orchestrators.PackageDeps{Packages: stores.Packages, Now: time.Now}
		if _, err := orchestrators.ExecuteSeedCatalogue(ctx, packageDeps); err != nil {
			return err
		}
	}

	var sender emailPkg.Sender
	if cfg.Email.ResendAPIKey != "" {
		sender = emailPkg.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.From)
		slog.Info("email_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_disabled", "reason", "RESEND_API_KEY is not set")
		}
	}

	server := web.NewServer(web.Options{
		Config:    cfg,
		Stores:    stores,
		DB:        db,
		Collector: collector,
		Notifier:  emailPkg.NewNotifier(sender),
	})
	server.RunJanitors(ctx)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start", "version", version, "addr", cfg.Addr(), "env", cfg.Env, "pricing", cfg.Pricing)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_shutdown", "reason", "signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
