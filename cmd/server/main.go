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

	"github.com/simonw/screenshot-worker/internal/config"
	"github.com/simonw/screenshot-worker/internal/handlers"
	"github.com/simonw/screenshot-worker/internal/router"
	"github.com/simonw/screenshot-worker/internal/signing"
	"github.com/simonw/screenshot-worker/internal/store"
	"github.com/simonw/screenshot-worker/internal/upstream"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	artifacts, err := store.NewMinioStore(&cfg.Storage)
	if err != nil {
		logger.Error("storage initialization failed", "error", err)
		os.Exit(1)
	}

	signer := signing.NewSigner(cfg.Signing.Secret)
	renderer := upstream.NewClient(&cfg.Upstream)
	stats := handlers.NewStats()
	screenshot := handlers.NewScreenshotHandler(signer, artifacts, renderer, stats, logger)

	engine := router.New(cfg, screenshot, stats, logger)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: engine,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	// Cache writes scheduled after responses are still in flight; wait
	// for them instead of dropping them with the process.
	if err := screenshot.Drain(ctx); err != nil {
		logger.Warn("pending cache writes not drained", "error", err)
	}

	logger.Info("shutdown complete")
}
