package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solosphere/cache"
	"solosphere/config"
	"solosphere/db"
	"solosphere/handlers"
	"solosphere/logging"
	"solosphere/metrics"
	"solosphere/services"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "console logging and unredacted emails")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Document store ----
	var (
		jobStore db.JobStore
		bidStore db.BidStore
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		mem := db.NewMemoryStore()
		jobStore, bidStore = mem.Jobs(), mem.Bids()
		logger.Warn().Msg("using in-memory store; data is lost on exit")
	default:
		mongoClient, err := db.ConnectMongoDB(cfg.Database.URI)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
		}
		defer func() {
			if err := db.DisconnectMongoDB(mongoClient); err != nil {
				logger.Error().Err(err).Msg("mongo disconnect")
			}
		}()
		logger.Info().Str("database", cfg.Database.Name).Msg("connected to MongoDB")

		jobStore = db.NewMongoJobStore(db.GetJobsCollection(mongoClient, cfg.Database.Name))
		bidStore = db.NewMongoBidStore(db.GetBidsCollection(mongoClient, cfg.Database.Name))
	}

	// ---- Redis job cache (optional) ----
	if cfg.Redis.URL != "" {
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		redisClient, err := cache.NewRedisClient(pingCtx, cfg.Redis.URL)
		pingCancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		jobStore = cache.NewJobStore(jobStore, redisClient, cfg.Redis.TTL, logger)
		logger.Info().Dur("ttl", cfg.Redis.TTL).Msg("job cache enabled")
	}

	// ---- Services ----
	jobSvc := services.NewJobService(jobStore, logger)
	bidSvc := services.NewBidService(bidStore, jobStore, logger, cfg.Runtime.Dev)

	// ---- bid_count reconciliation (optional) ----
	var scheduler *services.ReconcileScheduler
	worker := services.NewBidCountWorker(jobStore, bidStore, cfg.Reconcile.QueueSize, cfg.Reconcile.Workers, logger)
	if cfg.Reconcile.Cron != "" {
		worker.Start()
		scheduler = services.NewReconcileScheduler(cfg.Reconcile.Cron, worker, logger)
		if err := scheduler.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("reconcile scheduler")
		}
	}

	// ---- HTTP ----
	router := handlers.NewRouter(
		handlers.NewJobHandler(jobSvc, logger),
		handlers.NewBidHandler(bidSvc, logger),
		logger,
		cfg.Server.RequestTimeout,
	)
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutdown signal received")
	cancel()

	if scheduler != nil {
		scheduler.Stop()
		worker.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}

	logger.Info().Msg("server stopped")
}
