package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"experience-gift-fulfillment/config"
	"experience-gift-fulfillment/internal/adapter/catalog"
	httpHandler "experience-gift-fulfillment/internal/adapter/http/handler"
	kafkaAdapter "experience-gift-fulfillment/internal/adapter/kafka"
	"experience-gift-fulfillment/internal/adapter/notify"
	pgStorage "experience-gift-fulfillment/internal/adapter/storage/postgres"
	redisStorage "experience-gift-fulfillment/internal/adapter/storage/redis"
	"experience-gift-fulfillment/internal/core/ports"
	"experience-gift-fulfillment/internal/service"
	"experience-gift-fulfillment/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Experience Gift Fulfillment")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	customerRepo := pgStorage.NewCustomerRepo(pool)
	orderRepo := pgStorage.NewOrderRepo(pool)
	voucherRepo := pgStorage.NewVoucherRepo(pool)
	eventLogRepo := pgStorage.NewEventLogRepo(pool)

	// Initialize Redis stores
	eventCache := redisStorage.NewEventCache(rdb)

	// Initialize collaborator clients
	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, &http.Client{Timeout: cfg.Catalog.Timeout})
	notifyClient := notify.NewClient(cfg.Notify.BaseURL, &http.Client{Timeout: cfg.Notify.Timeout}, log)

	// Optional Kafka publisher
	var publisher ports.FulfilledPublisher
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := kafkaAdapter.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka publisher enabled")
	}

	// Initialize core services
	verifier := service.NewHMACSignatureService(cfg.Gateway.WebhookSecret, cfg.Gateway.SignatureSkew)
	decoder := service.NewJSONEventDecoder()
	hashSvc := service.NewArgon2HashService()
	codeGen := service.NewSecureCodeGenerator()

	// Initialize business services
	resolver := service.NewCustomerResolver(customerRepo, hashSvc, log)
	fulfillmentSvc := service.NewFulfillmentService(
		orderRepo,
		voucherRepo,
		customerRepo,
		resolver,
		catalogClient,
		notifyClient,
		codeGen,
		eventCache,
		publisher,
		log,
	)
	eventLogSvc := service.NewEventLogService(eventLogRepo, log)

	// Ops API is enabled only when a secret is configured
	var tokenSvc ports.TokenService
	if cfg.Ops.JWTSecret != "" {
		tokenSvc = service.NewJWTTokenService(cfg.Ops.JWTSecret)
	} else {
		log.Warn().Msg("ops JWT secret not configured, ops endpoints disabled")
	}

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Verifier:       verifier,
		Decoder:        decoder,
		FulfillmentSvc: fulfillmentSvc,
		EventLogSvc:    eventLogSvc,
		TokenSvc:       tokenSvc,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
