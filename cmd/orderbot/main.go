// Package main provides the entry point for the ShopEase order bot.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shopease/orderbot/internal/catalog"
	"github.com/shopease/orderbot/internal/config"
	"github.com/shopease/orderbot/internal/engine"
	"github.com/shopease/orderbot/internal/export"
	"github.com/shopease/orderbot/internal/queue"
	"github.com/shopease/orderbot/internal/session"
	"github.com/shopease/orderbot/internal/whatsapp"
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") == "1" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down gracefully")
		cancel()
	}()

	if err := run(ctx, logger); err != nil {
		logger.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

// components holds everything that needs coordinated startup and shutdown.
type components struct {
	server  *http.Server
	pool    *queue.Pool
	manager *queue.Manager
	store   *session.Store
	cfg     config.Config
	wg      sync.WaitGroup
}

func run(ctx context.Context, logger *slog.Logger) error {
	logger.Info("orderbot starting")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}

	startComponents(ctx, c, logger)
	logger.Info("orderbot started", "addr", cfg.ListenAddr, "workers", c.pool.Size())

	<-ctx.Done()

	// The parent context is already canceled; shutdown gets its own.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	//nolint:contextcheck // new context needed after parent cancellation
	shutdown(shutdownCtx, c, logger)
	return nil
}

func initializeComponents(ctx context.Context, cfg config.Config, logger *slog.Logger) (*components, error) {
	// Catalog: configured file or the built-in product set.
	var cat *catalog.Catalog
	if cfg.CatalogFile != "" {
		loaded, err := catalog.Load(cfg.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		cat = loaded
		logger.Info("catalog loaded", "file", cfg.CatalogFile, "products", cat.Len())
	} else {
		cat = catalog.Default()
		logger.Info("using built-in catalog", "products", cat.Len())
	}

	// Session store with JSON file persistence.
	store := session.NewStore(
		session.NewFilePersistence(cfg.DataFile),
		session.WithLogger(logger),
	)
	logger.Info("sessions loaded", "count", store.Len())

	// Order export sink.
	var exporter export.Exporter = export.Noop{}
	if cfg.ExportWebhookURL != "" {
		client, err := export.NewClient(cfg.ExportWebhookURL, export.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create export client: %w", err)
		}
		exporter = client
	} else {
		logger.Warn("EXPORT_WEBHOOK_URL not set, orders will not be exported")
	}

	// Outbound WhatsApp client and messenger.
	waClient, err := whatsapp.NewClient(
		cfg.APIVersion, cfg.PhoneNumberID, cfg.AccessToken,
		whatsapp.WithClientLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create WhatsApp client: %w", err)
	}
	messenger := whatsapp.NewMessenger(waClient)

	// Conversation engine.
	eng, err := engine.New(messenger, exporter, cat, store,
		engine.WithLogger(logger),
		engine.WithSessionTimeout(cfg.SessionTimeout),
		engine.WithInteractiveMenus(cfg.InteractiveMenus),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	// Per-user serialization pipeline.
	manager := queue.NewManager(ctx)
	limiter := queue.NewRateLimiter(cfg.RateLimitBurst, cfg.RateLimitRefill, cfg.RateLimitPeriod)
	pool, err := queue.NewPool(queue.PoolConfig{
		Handler: eng,
		Manager: manager,
		Limiter: limiter,
		Logger:  logger,
		Size:    cfg.WorkerCount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	// Webhook HTTP server.
	webhook, err := whatsapp.NewWebhookHandler(cfg.VerifyToken, manager,
		whatsapp.WithHandlerLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook handler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/webhook", webhook)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &components{
		server:  server,
		pool:    pool,
		manager: manager,
		store:   store,
		cfg:     cfg,
	}, nil
}

func startComponents(ctx context.Context, c *components, logger *slog.Logger) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.manager.Start()
		logger.Info("queue manager stopped")
	}()
	c.manager.WaitForReady()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.pool.Start(ctx); err != nil {
			logger.Error("worker pool error", "error", err)
		}
		logger.Info("worker pool stopped")
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
}

func shutdown(ctx context.Context, c *components, logger *slog.Logger) {
	logger.Info("shutting down components")

	if err := c.server.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	if err := c.manager.Shutdown(c.cfg.ShutdownTimeout); err != nil {
		logger.Error("queue manager shutdown error", "error", err)
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("all components stopped")
	case <-ctx.Done():
		logger.Warn("shutdown timeout exceeded")
	}

	// Final durable write; per-transition saves make this best effort.
	if err := c.store.Save(); err != nil {
		logger.Error("failed to save sessions at shutdown", "error", err)
	}

	logger.Info("shutdown complete")
}
