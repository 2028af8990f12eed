package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"stockhive/internal/app"
	"stockhive/internal/config"
	"stockhive/internal/logger"
	"stockhive/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

// run serves HTTP until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	rt, err := app.Bootstrap(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Warn("error releasing resources", zap.Error(err))
		}
	}()

	// --- Start RabbitMQ Consumer ---
	if rt.MQ != nil {
		if err := rt.MQ.ConsumeProductEvents(ctx, rabbitmq.LogProductEvent(log)); err != nil {
			log.Warn("failed to start inventory event consumer", zap.Error(err))
		}
	}

	// --- Start HTTP Server ---
	listenErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.ListenAddr()), zap.String("env", cfg.Env))
		listenErr <- rt.App.Listen(cfg.ListenAddr())
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := rt.App.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Warn("error during fiber shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
	return nil
}
