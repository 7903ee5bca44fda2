package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kouden-gift-ledger/internal/api_server"
	"github.com/kouden-gift-ledger/internal/api_server/service"
	"github.com/kouden-gift-ledger/internal/config"
	"github.com/kouden-gift-ledger/internal/data/mongo"
	"github.com/kouden-gift-ledger/internal/data/postgres"
	"github.com/kouden-gift-ledger/internal/logger"
	"github.com/kouden-gift-ledger/internal/platform/cache"
	"github.com/kouden-gift-ledger/internal/platform/calendar"
	"github.com/kouden-gift-ledger/internal/platform/messaging/producers"
	"github.com/kouden-gift-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	redisCache, err := cache.NewRedisCache(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for audit events
	auditProducer, err := producers.NewAuditEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize audit event producer", "error", err)
		os.Exit(1)
	}

	// Initialize Google Calendar client for consultation scheduling
	staffCalendar, err := calendar.NewGoogleCalendar(appCtx, log, &cfg.Calendar)
	if err != nil {
		log.Error("Failed to initialize Google Calendar client", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	entryRepo := postgres.NewEntryRepository(log, postgresDB)
	offeringRepo := postgres.NewOfferingRepository(log, postgresDB)
	archiveRepo := mongo.NewReportRepository(log, mongoDB.Database())

	// Initialize services
	entryService := service.NewEntryService(log, entryRepo, offeringRepo, redisCache, auditProducer)
	reportService, err := service.NewReportService(
		log,
		entryRepo,
		offeringRepo,
		archiveRepo,
		redisCache,
		auditProducer,
		cfg.WorkerPool.Size,
		cfg.WorkerPool.LookupTimeout,
		cfg.Redis.SummaryTTL,
	)
	if err != nil {
		log.Error("Failed to initialize report service", "error", err)
		os.Exit(1)
	}
	duplicateService := service.NewDuplicateService(log, postgresDB, entryRepo, redisCache, auditProducer)
	scheduleService := service.NewScheduleService(log, staffCalendar)

	// Initialize REST server
	server := api_server.NewServer(log, cfg, entryService, reportService, duplicateService, scheduleService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so no new work arrives
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Release the offering-lookup worker pool
	reportService.Shutdown()

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = auditProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	if err = redisCache.Close(); err != nil {
		log.Error("Error closing Redis connection", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
