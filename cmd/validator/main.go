package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smukkama/vitalcheck/internal/alarming"
	"github.com/smukkama/vitalcheck/internal/bootstrap"
	"github.com/smukkama/vitalcheck/internal/database"
	"github.com/smukkama/vitalcheck/internal/logger"
	"github.com/smukkama/vitalcheck/internal/metrics"
	"github.com/smukkama/vitalcheck/internal/queue"
	"github.com/smukkama/vitalcheck/internal/records"
	"github.com/smukkama/vitalcheck/internal/validation"
	"github.com/smukkama/vitalcheck/pkg/config"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type options struct {
	input    string
	from     string
	to       string
	medical  bool
	workers  int
	dispatch bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var opts options
	flag.StringVar(&opts.input, "input", "", "JSON file with patient records (default: read from Postgres)")
	flag.StringVar(&opts.from, "from", "", "first record date to load from Postgres (YYYY-MM-DD)")
	flag.StringVar(&opts.to, "to", "", "last record date to load from Postgres (YYYY-MM-DD)")
	flag.BoolVar(&opts.medical, "medical", cfg.Engine.MedicalMode, "enable blood pressure and blood sugar rules")
	flag.IntVar(&opts.workers, "workers", cfg.Engine.Workers, "worker goroutines (0 = number of CPUs)")
	flag.BoolVar(&opts.dispatch, "dispatch", false, "publish alerts to Kafka and store the report in Redis")
	flag.Parse()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "vitalcheck-validator")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := run(ctx, cfg, opts, log)
	if err != nil {
		log.Fatal("validation run failed", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal("failed to write report", zap.Error(err))
	}

	fmt.Fprintln(os.Stderr, report.Summary())
	if report.HasCritical() {
		os.Exit(2)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, log *zap.Logger) (*validation.Report, error) {
	needDB := opts.input == "" || cfg.Engine.ThresholdProfile != ""

	var db *database.DB
	if needDB {
		var err error
		db, err = database.Connect(cfg.Database.ConnectionString(), log)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		log.Info("connected to database")
	}

	var profiles bootstrap.ProfileSource
	if db != nil {
		profiles = db
	}
	limits, err := bootstrap.LoadThresholds(ctx, cfg.Engine, profiles, log)
	if err != nil {
		return nil, err
	}

	batch, err := loadBatch(ctx, db, opts)
	if err != nil {
		return nil, err
	}

	collector, err := metrics.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}

	orchestrator := validation.New(
		validation.WithWorkers(opts.workers),
		validation.WithLogger(log),
		validation.WithRecorder(collector),
	)
	report := orchestrator.Validate(batch, opts.medical, limits)

	if opts.dispatch {
		if err := dispatch(ctx, cfg, report, log); err != nil {
			log.Warn("report dispatch incomplete", zap.Error(err))
		}
	}

	return report, nil
}

func loadBatch(ctx context.Context, db *database.DB, opts options) ([]records.PatientRecord, error) {
	if opts.input != "" {
		f, err := os.Open(opts.input)
		if err != nil {
			return nil, fmt.Errorf("failed to open records file: %w", err)
		}
		defer f.Close()
		return records.DecodeJSON(f)
	}

	if opts.from == "" || opts.to == "" {
		return nil, fmt.Errorf("either -input or both -from and -to are required")
	}
	from, err := time.Parse(dateLayout, opts.from)
	if err != nil {
		return nil, fmt.Errorf("invalid -from date: %w", err)
	}
	to, err := time.Parse(dateLayout, opts.to)
	if err != nil {
		return nil, fmt.Errorf("invalid -to date: %w", err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("-to %s is before -from %s", opts.to, opts.from)
	}

	return db.ListRecords(ctx, from, to)
}

func dispatch(ctx context.Context, cfg *config.Config, report *validation.Report, log *zap.Logger) error {
	redisClient, err := bootstrap.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts)
	defer producer.Close()

	store := alarming.NewReportStore(redisClient, cfg.Report.TTL)
	return alarming.NewDispatcher(producer, store, log).Dispatch(ctx, report)
}
