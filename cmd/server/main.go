package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"dispatch/internal/app"
	"dispatch/internal/broker"
	"dispatch/internal/config"
	"dispatch/internal/handler"
	internalRedis "dispatch/internal/redis"
	"dispatch/internal/repository"
	"dispatch/internal/repository/memory"
	"dispatch/internal/repository/postgres"
	"dispatch/internal/service"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the database driver can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	// Repositories: in-memory by default, PostgreSQL when configured.
	var (
		orderRepo  repository.OrderRepository
		driverRepo repository.DriverRepository
		auditRepo  repository.AuditLogRepository
	)
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("Connected to PostgreSQL")

		orderRepo = postgres.NewOrderRepository(db)
		driverRepo = postgres.NewDriverRepository(db)
		auditRepo = postgres.NewAuditLogRepository(db)
	case config.StorageMemory:
		orderRepo = memory.NewOrderRepository()
		driverRepo = memory.NewDriverRepository()
		auditRepo = memory.NewAuditLogRepository()
		log.Println("Using in-memory storage")
	default:
		log.Fatalf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	// Redis backs response idempotency; the engine runs fine without it.
	var idempotencyStore *internalRedis.IdempotencyStore
	if cfg.Redis.Enabled {
		redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Connected to Redis")

		idempotencyStore = internalRedis.NewIdempotencyStore(redisClient)
	}

	// Optional audit event stream.
	var publisher service.EventPublisher
	if cfg.Broker.Enabled {
		rabbit, err := broker.NewRabbitMQPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer rabbit.Close()
		log.Println("Connected to RabbitMQ")

		publisher = rabbit
	}

	// Services.
	fareService := service.NewFareService()
	auditService := service.NewAuditService(auditRepo, publisher)
	driverService := service.NewDriverService(driverRepo)
	orderService := service.NewOrderService(orderRepo, driverService, fareService, auditService, cfg.Dispatch.OrderTTL)
	matchingService := service.NewMatchingService(orderRepo, driverRepo, cfg.Dispatch.SearchRadius)

	// Handlers.
	orderHandler := handler.NewOrderHandler(orderService, fareService)
	driverHandler := handler.NewDriverHandler(driverService, matchingService)
	adminHandler := handler.NewAdminHandler(auditService, fareService, matchingService, orderService, driverService)

	router := app.NewRouter(app.RouterDeps{
		OrderHandler:     orderHandler,
		DriverHandler:    driverHandler,
		AdminHandler:     adminHandler,
		IdempotencyStore: idempotencyStore,
		NewRelicApp:      nrApp,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
