package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"saaraam-storefront/internal/config"
	"saaraam-storefront/internal/middleware"
	"saaraam-storefront/internal/observability"
	"saaraam-storefront/internal/server"
	"saaraam-storefront/internal/services"
	"saaraam-storefront/internal/storage"
)

const stateLoadTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting storefront",
		"version", "1.0.0",
		"db_file", cfg.Storage.SQLitePath,
		"shipping_fee", cfg.Store.ShippingFee,
	)

	kv, err := storage.OpenSQLite(cfg.Storage.SQLitePath)
	if err != nil {
		logger.Error("failed to open store database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), stateLoadTimeout)
	defer cancel()

	store, err := services.NewStore(ctx, kv, logger, cfg.Store.ShippingFee)
	if err != nil {
		logger.Error("failed to load storefront state", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(store, logger, cfg.Store)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("closing store database")
		return kv.Close()
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("storefront stopped gracefully")
}
