package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smukkama/vitalcheck/internal/alarming"
	"github.com/smukkama/vitalcheck/internal/bootstrap"
	"github.com/smukkama/vitalcheck/internal/database"
	"github.com/smukkama/vitalcheck/internal/httpapi"
	"github.com/smukkama/vitalcheck/internal/logger"
	"github.com/smukkama/vitalcheck/internal/metrics"
	"github.com/smukkama/vitalcheck/internal/queue"
	"github.com/smukkama/vitalcheck/internal/validation"
	"github.com/smukkama/vitalcheck/pkg/config"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "vitalcheck-apiserver")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting API server")

	ctx := context.Background()

	var profiles bootstrap.ProfileSource
	var db *database.DB
	if cfg.Engine.ThresholdProfile != "" {
		db, err = database.Connect(cfg.Database.ConnectionString(), log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		profiles = db
	}

	limits, err := bootstrap.LoadThresholds(ctx, cfg.Engine, profiles, log)
	if err != nil {
		log.Fatal("failed to load thresholds", zap.Error(err))
	}

	redisClient, err := bootstrap.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("redis unavailable", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

	if err := queue.CreateTopic(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts, 3, 1); err != nil {
		log.Warn("could not ensure alerts topic", zap.String("topic", cfg.Kafka.TopicAlerts), zap.Error(err))
	}
	producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts)
	defer producer.Close()

	collector, err := metrics.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}

	store := alarming.NewReportStore(redisClient, cfg.Report.TTL)
	dispatcher := alarming.NewDispatcher(producer, store, log)
	orchestrator := validation.New(
		validation.WithWorkers(cfg.Engine.Workers),
		validation.WithLogger(log),
		validation.WithRecorder(collector),
	)

	server := httpapi.NewServer(log, cfg.HTTP.Addr, orchestrator, limits,
		httpapi.WithReports(store),
		httpapi.WithDispatcher(dispatcher),
		httpapi.WithMetricsHandler(promhttp.Handler()),
		httpapi.WithMedicalDefault(cfg.Engine.MedicalMode),
		httpapi.WithTimeouts(cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout),
	)
	server.AddChecker(httpapi.NewPingChecker("redis", false, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}))
	if db != nil {
		server.AddChecker(httpapi.NewPingChecker("postgres", false, db.PingContext))
	}

	if err := server.Start(); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
