package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epw80/message-board/pkg/api"
	"github.com/epw80/message-board/pkg/board"
	"github.com/epw80/message-board/pkg/config"
	"github.com/epw80/message-board/pkg/hub"
	"github.com/epw80/message-board/pkg/logging"
	"github.com/epw80/message-board/pkg/metrics"
	"github.com/epw80/message-board/pkg/storage"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// A missing .env file is fine; the environment may already be set
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info("loaded configuration",
		slog.String("port", cfg.Port),
		slog.String("store_backend", cfg.StoreBackend),
		slog.String("read_failure_policy", cfg.ReadFailurePolicy),
		slog.String("log_level", cfg.LogLevel))

	ctx := context.Background()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", slog.String("error", err.Error()))
		}
	}()

	policy, err := storage.ParseReadPolicy(cfg.ReadFailurePolicy)
	if err != nil {
		return err
	}
	guarded := storage.NewGuarded(store, policy, logger)

	feed := hub.New(logger)
	go feed.Run()
	defer feed.Shutdown()

	m := metrics.New()
	svc := board.New(guarded, logger,
		board.WithNotifier(feed),
		board.WithRecorder(m))

	httpServer := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: api.NewRouter(svc, logger, api.Options{
			StaticDir: cfg.StaticDir,
			Feed:      feed,
			Metrics:   m,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", slog.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	logger.Info("server exited")
	return nil
}

// openStore opens the configured persistence backend
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendFile:
		return storage.NewFileStore(cfg.DataFile, logger)
	case config.BackendBadger:
		return storage.OpenBadgerStore(cfg.BadgerPath, logger)
	case config.BackendDynamoDB:
		client, err := storage.NewDynamoDBClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return storage.NewDynamoDBStore(ctx, client, cfg.DynamoDBTable, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
