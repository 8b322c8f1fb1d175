package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/postmint-ai/postmint/internal/api"
	"github.com/postmint-ai/postmint/internal/auth"
	"github.com/postmint-ai/postmint/internal/config"
	"github.com/postmint-ai/postmint/internal/database"
	"github.com/postmint-ai/postmint/internal/generation"
	"github.com/postmint-ai/postmint/internal/generator"
	"github.com/postmint-ai/postmint/internal/generator/openrouter"
	"github.com/postmint-ai/postmint/internal/middleware"
	"github.com/postmint-ai/postmint/internal/payments"
	"github.com/postmint-ai/postmint/internal/purchases"
	"github.com/postmint-ai/postmint/internal/quota"
	iredis "github.com/postmint-ai/postmint/internal/redis"
	"github.com/postmint-ai/postmint/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), "migrations"); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Auth
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	// Quota ledger
	quotaStore := quota.NewStore(pool)
	quotaHandler := quota.NewHandler(quotaStore)

	// Generation
	genClient, err := openrouter.New(openrouter.Config{
		APIKey:  cfg.Generator.APIKey,
		Model:   cfg.Generator.Model,
		BaseURL: cfg.Generator.BaseURL,
		Referer: cfg.Generator.Referer,
		Title:   cfg.Generator.Title,
		Timeout: cfg.Generator.Timeout,
	})
	if err != nil {
		slog.Error("creating generator client", "error", err)
		os.Exit(1)
	}
	parser := generator.NewBatchParser(generator.BatchSize)
	genService := generation.NewService(quotaStore, genClient, parser, cfg.Generator.Timeout)
	genHandler := generation.NewHandler(genService)

	// Purchases
	purchaseRepo := purchases.NewRepository()
	reconciler := purchases.NewReconciler(pool, purchaseRepo, quotaStore)
	webhookHandler := purchases.NewWebhookHandler(cfg.Payments.WebhookSecret, reconciler)
	purchaseHandler := purchases.NewHandler(pool, purchaseRepo)

	// Checkout
	checkoutClient := payments.NewClient(payments.Config{
		StoreURL:         cfg.Payments.StoreURL,
		PostsVariantID:   cfg.Payments.PostsVariantID,
		SubmitsVariantID: cfg.Payments.SubmitsVariantID,
	})
	checkoutHandler := payments.NewHandler(checkoutClient, quotaStore)

	// Webhook rate limiter
	webhookLimiter := middleware.NewRateLimiter(redisClient, "webhook",
		cfg.Payments.WebhookRateMax, cfg.Payments.WebhookRateWindow)

	// Router
	router := api.NewRouter(pool, api.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		WebhookRateLimiter: webhookLimiter.Middleware,
	}, api.HandlerSet{
		GeneratePosts:  genHandler.Generate,
		GetQuota:       quotaHandler.GetStatus,
		CreateCheckout: checkoutHandler.CreateCheckout,
		ListPurchases:  purchaseHandler.List,
		PaymentWebhook: webhookHandler.Handle,

		AuthMiddleware: auth.Middleware(verifier),
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
