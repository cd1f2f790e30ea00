package validation

import (
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smukkama/vitalcheck/internal/records"
	"github.com/smukkama/vitalcheck/internal/rules"
	"github.com/smukkama/vitalcheck/internal/thresholds"
	"go.uber.org/zap"
)

// Recorder receives every completed report (metrics sink)
type Recorder interface {
	RecordReport(r *Report)
}

// Orchestrator evaluates batches of records with a pool of workers
type Orchestrator struct {
	workers  int
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
	newID    func() string
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithWorkers sets the number of worker goroutines.
// Values <= 0 select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		o.workers = n
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecorder attaches a metrics recorder
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// New creates an orchestrator
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		workers: runtime.NumCPU(),
		logger:  zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Workers returns the configured worker count
func (o *Orchestrator) Workers() int {
	return o.workers
}

// Validate evaluates batch with a single worker
func Validate(batch []records.PatientRecord, medical bool, t thresholds.Thresholds) *Report {
	return New(WithWorkers(1)).Validate(batch, medical, t)
}

// Validate evaluates every record in batch and returns the aggregated
// report. Counts and the set of alerts do not depend on the worker count.
func (o *Orchestrator) Validate(batch []records.PatientRecord, medical bool, t thresholds.Thresholds) *Report {
	agg := &aggregator{report: newReport(o.newID(), medical, o.now())}

	workers := o.workers
	if workers > len(batch) {
		workers = len(batch)
	}

	o.logger.Debug("validation started",
		zap.String("report_id", agg.report.ID),
		zap.Int("records", len(batch)),
		zap.Int("workers", workers),
		zap.Bool("medical_mode", medical),
	)

	switch {
	case workers == 0:
		// empty batch
	case workers == 1:
		for _, rec := range batch {
			agg.fold(rec, rules.Detect(rec, t, medical))
		}
	default:
		o.runPool(batch, medical, t, workers, agg)
	}

	report := agg.report
	report.CompletedAt = o.now()

	o.logger.Info("validation complete",
		zap.String("report_id", report.ID),
		zap.Int("records", report.RecordCount),
		zap.Int("issues", report.IssuesFound),
		zap.Int("critical", report.CriticalCount()),
		zap.Int("warnings", report.WarningCount()),
		zap.Duration("elapsed", report.Duration()),
	)

	if o.recorder != nil {
		o.recorder.RecordReport(report)
	}

	return report
}

// runPool fans the batch out over a job queue. Detect runs without any
// lock; only the fold step is serialized.
func (o *Orchestrator) runPool(batch []records.PatientRecord, medical bool, t thresholds.Thresholds, workers int, agg *aggregator) {
	jobQueue := make(chan int, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		w := &worker{
			jobQueue: jobQueue,
			batch:    batch,
			medical:  medical,
			limits:   t,
			agg:      agg,
		}
		wg.Add(1)
		go w.start(&wg)
	}

	for i := range batch {
		jobQueue <- i
	}
	close(jobQueue)

	wg.Wait()
}

// worker evaluates records by index from the job queue
type worker struct {
	jobQueue <-chan int
	batch    []records.PatientRecord
	medical  bool
	limits   thresholds.Thresholds
	agg      *aggregator
}

func (w *worker) start(wg *sync.WaitGroup) {
	defer wg.Done()

	for idx := range w.jobQueue {
		rec := w.batch[idx]
		findings := rules.Detect(rec, w.limits, w.medical)
		w.agg.fold(rec, findings)
	}
}
