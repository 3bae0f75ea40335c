package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
	"bilancio/internal/config"
	"bilancio/internal/docstore"
	pgdoc "bilancio/internal/docstore/postgres"
	reddoc "bilancio/internal/docstore/redis"
	"bilancio/internal/storage"
	"bilancio/internal/worker"
)

// remoteStore is what the mirror worker needs from a remote backend.
type remoteStore interface {
	docstore.SnapshotWriter
	EnsureDefault(ctx context.Context) error
	Close() error
}

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting bilancio-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Local side: the SQLite document the server writes to.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Remote side: postgres when configured, redis otherwise.
	var remote remoteStore
	if cfg.PostgresURL != "" {
		remote, err = pgdoc.NewClient(ctx, cfg.PostgresURL)
	} else {
		remote, err = reddoc.NewClient(ctx, cfg.RedisURL)
	}
	if err != nil {
		logger.Error("Failed to initialize remote document store", "error", err)
		os.Exit(1)
	}
	defer remote.Close()

	if err := remote.EnsureDefault(ctx); err != nil {
		logger.Error("Failed to ensure remote default document", "error", err)
		// Don't exit - the first mirror will create it anyway
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirrorWorker(repo, remote)

	// On startup, mirror any state changed while the worker was down.
	if err := mirror.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
		// Don't exit - continue with normal operation
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeDocumentSyncWithRetry(gctx, func(msg *amqp.DocumentSyncMessage) error {
			return mirror.HandleSyncMessage(gctx, msg)
		})
	})

	g.Go(func() error {
		return mirror.RunPeriodic(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
