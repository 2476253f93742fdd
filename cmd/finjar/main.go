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

	"github.com/joho/godotenv"

	"finjar/internal/amqp"
	"finjar/internal/backend"
	"finjar/internal/cache"
	"finjar/internal/config"
	"finjar/internal/core"
	apphttp "finjar/internal/http"
	"finjar/internal/services"
	"finjar/internal/settings"
	"finjar/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting finjar")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := settings.NewStore(cfg.SettingsDBPath)
	if err != nil {
		logger.Error("Failed to initialize settings store", "error", err, "path", cfg.SettingsDBPath)
		os.Exit(1)
	}
	defer store.Close()

	// An explicit token from the environment wins over the stored one.
	var tokens backend.TokenSource = store
	if cfg.BackendToken != "" {
		tokens = backend.StaticToken(cfg.BackendToken)
	}

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, tokens)

	reportCache := cache.NewLRUCache[*core.ReportData](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(reportCache)
	cacheManager.StartCleanup(10 * time.Minute)

	svc := services.NewReportService(client, reportCache)
	eventWorker := worker.NewEventWorker(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventWorker.StartupRefresh(ctx)
	go eventWorker.RunPeriodicRefresh(ctx, cfg.RefreshInterval)

	// Consume jar events when a broker is configured; without one the
	// snapshot still converges through the periodic refresh.
	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			if err := amqpClient.ConsumeJarEvents(ctx, eventWorker.HandleJarEvent); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Error("Jar event consumption failed", "error", err)
				}
				cancel()
			}
		}()
		logger.Info("Consuming jar events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - relying on periodic refresh only")
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, store, cacheManager)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting finjar server", "port", cfg.Port, "backend_url", cfg.BackendURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
