package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/swipequiz/internal/api"
	"github.com/vytor/swipequiz/internal/catalog"
	"github.com/vytor/swipequiz/internal/config"
	"github.com/vytor/swipequiz/internal/db"
	"github.com/vytor/swipequiz/internal/jobs"
	"github.com/vytor/swipequiz/internal/logger"
	"github.com/vytor/swipequiz/internal/repository/sqlite"
	"github.com/vytor/swipequiz/internal/services"
	"github.com/vytor/swipequiz/internal/worker"
)

const shutdownGrace = 30 * time.Second

func main() {
	cfg := config.Load()

	log := logger.New(logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	logger.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.WithFields(map[string]any{
		"addr":          cfg.Addr,
		"db":            cfg.DBPath,
		"api_url":       cfg.APIURL,
		"api_timeout":   cfg.APITimeout,
		"submit_policy": cfg.SubmitPolicy,
		"workers":       cfg.SubmitWorkerCount,
		"queue":         cfg.SubmitQueueSize,
	}).Info("swipequiz server starting")

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	// The queue and the service reference each other: the service enqueues
	// submits, the queued job calls back into the service.
	submitPool := worker.NewPool(cfg.SubmitWorkerCount, cfg.SubmitQueueSize)
	queue := jobs.NewWorkerQueue(submitPool)
	sessions := services.NewSessionService(
		sqlite.NewSessionRepository(database.DB),
		sqlite.NewSwipeResultRepository(database.DB),
		catalog.New(cfg.APIURL, cfg.APITimeout),
		queue,
		services.EngineConfig(cfg, log),
		cfg.SubmitPolicy,
	)
	queue.SetSubmitter(sessions)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if n, err := sessions.Recover(ctx); err != nil {
		log.Warn("failed to recover interrupted submits: %v", err)
	} else if n > 0 {
		log.Info("marked %d interrupted submits for retry", n)
	}

	poolCtx, cancelPool := context.WithCancel(context.Background())
	defer cancelPool()
	submitPool.Start(poolCtx)

	srv := &api.Server{
		SessionService: sessions,
		DB:             database,
		RequestTimeout: cfg.APITimeout + 5*time.Second,
	}
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: srv.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		submitPool.Stop()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown: %v", err)
	}

	// Running submits are cancelled; their sessions end up submit_failed and
	// can be retried after restart.
	cancelPool()
	submitPool.Stop()

	log.Info("swipequiz server stopped")
	return nil
}
