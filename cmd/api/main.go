package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"journai/internal/analyzer"
	"journai/internal/config"
	"journai/internal/db"
	"journai/internal/logging"
	"journai/internal/server"
	"journai/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api.exit", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if cfg.AutoMigrate {
		applied, err := db.Migrate(ctx, pool)
		if err != nil {
			return err
		}
		logger.Info("db.migrated", slog.Int("applied", len(applied)), slog.String("files", strings.Join(applied, ",")))
	}
	if err := server.ValidateRuntimeSchema(ctx, pool); err != nil {
		return err
	}

	client, err := analyzer.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	analysis := analyzer.NewService(client, logger)
	if client != nil {
		logger.Info("analyzer.ready", slog.String("provider", client.Name()))
	}

	app := server.New(cfg, store.New(pool, cfg.Location()), analysis, logger)
	defer app.Close()

	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("api.listening",
			slog.String("addr", "http://localhost:"+cfg.AppPort),
			slog.String("prefix", cfg.APIPrefix),
			slog.String("timezone", cfg.Location().String()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case sig := <-stop:
		logger.Info("api.shutdown", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api.shutdown_failed", slog.String("error", err.Error()))
	}
	return nil
}
