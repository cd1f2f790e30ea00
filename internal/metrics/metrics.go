package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smukkama/vitalcheck/internal/validation"
)

var durationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// Collector exports validation run statistics to Prometheus
type Collector struct {
	runs     *prometheus.CounterVec
	records  prometheus.Counter
	findings *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewCollector creates the collectors and registers them with reg.
// Collectors already registered under the same name are reused.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalcheck",
			Subsystem: "validation",
			Name:      "runs_total",
			Help:      "Number of completed validation runs",
		}, []string{"mode"}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vitalcheck",
			Subsystem: "validation",
			Name:      "records_evaluated_total",
			Help:      "Number of patient records evaluated",
		}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalcheck",
			Subsystem: "validation",
			Name:      "findings_total",
			Help:      "Findings produced, by severity and kind",
		}, []string{"severity", "kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vitalcheck",
			Subsystem: "validation",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a validation run",
			Buckets:   durationBuckets,
		}),
	}

	if err := register(reg, c.runs, func(existing prometheus.Collector) {
		c.runs = existing.(*prometheus.CounterVec)
	}); err != nil {
		return nil, err
	}
	if err := register(reg, c.records, func(existing prometheus.Collector) {
		c.records = existing.(prometheus.Counter)
	}); err != nil {
		return nil, err
	}
	if err := register(reg, c.findings, func(existing prometheus.Collector) {
		c.findings = existing.(*prometheus.CounterVec)
	}); err != nil {
		return nil, err
	}
	if err := register(reg, c.duration, func(existing prometheus.Collector) {
		c.duration = existing.(prometheus.Histogram)
	}); err != nil {
		return nil, err
	}

	return c, nil
}

func register(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) error {
	err := reg.Register(collector)
	if err == nil {
		return nil
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		reuse(already.ExistingCollector)
		return nil
	}
	return err
}

// RecordReport implements validation.Recorder
func (c *Collector) RecordReport(r *validation.Report) {
	c.runs.WithLabelValues(modeLabel(r.MedicalMode)).Inc()
	c.records.Add(float64(r.RecordCount))
	for _, a := range r.Alerts {
		c.findings.WithLabelValues(a.Severity.String(), string(a.Kind)).Inc()
	}
	c.duration.Observe(r.Duration().Seconds())
}

func modeLabel(medical bool) string {
	if medical {
		return "medical"
	}
	return "basic"
}
