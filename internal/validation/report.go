package validation

import (
	"fmt"
	"sync"
	"time"

	"github.com/smukkama/vitalcheck/internal/records"
	"github.com/smukkama/vitalcheck/internal/rules"
)

// Alert is a finding tied to the record that produced it
type Alert struct {
	PatientID uint32 `json:"patient_id"`
	Date      string `json:"date"`
	Message   string `json:"message"`
	rules.Finding
}

// Report aggregates the findings for one evaluated batch.
// CriticalAlerts and Warnings hold the messages of Alerts split by
// severity. Ordering across records is only stable for single-worker runs.
type Report struct {
	ID             string    `json:"id"`
	MedicalMode    bool      `json:"medical_mode"`
	RecordCount    int       `json:"record_count"`
	IssuesFound    int       `json:"issues_found"`
	CriticalAlerts []string  `json:"critical_alerts"`
	Warnings       []string  `json:"warnings"`
	Alerts         []Alert   `json:"alerts"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// CriticalCount returns the number of critical alerts
func (r *Report) CriticalCount() int {
	return len(r.CriticalAlerts)
}

// WarningCount returns the number of warnings
func (r *Report) WarningCount() int {
	return len(r.Warnings)
}

// HasCritical reports whether any record produced a critical finding
func (r *Report) HasCritical() bool {
	return len(r.CriticalAlerts) > 0
}

// Duration returns how long the evaluation took
func (r *Report) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Summary is the one-line outcome of the run
func (r *Report) Summary() string {
	return fmt.Sprintf("Validation complete: %d records checked, %d issue(s) found (%d critical, %d warning).",
		r.RecordCount, r.IssuesFound, r.CriticalCount(), r.WarningCount())
}

func newReport(id string, medical bool, startedAt time.Time) *Report {
	return &Report{
		ID:             id,
		MedicalMode:    medical,
		CriticalAlerts: []string{},
		Warnings:       []string{},
		Alerts:         []Alert{},
		StartedAt:      startedAt,
	}
}

// aggregator is the only shared mutable state during a run
type aggregator struct {
	mu     sync.Mutex
	report *Report
}

// fold merges one record's findings into the report
func (a *aggregator) fold(rec records.PatientRecord, findings []rules.Finding) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.report.RecordCount++
	a.report.IssuesFound += len(findings)

	for _, f := range findings {
		alert := Alert{
			PatientID: rec.PatientID,
			Date:      rec.Date,
			Message:   fmt.Sprintf("Patient %d on %s: %s", rec.PatientID, rec.Date, f.Message()),
			Finding:   f,
		}
		a.report.Alerts = append(a.report.Alerts, alert)

		switch f.Severity {
		case rules.Critical:
			a.report.CriticalAlerts = append(a.report.CriticalAlerts, alert.Message)
		case rules.Warning:
			a.report.Warnings = append(a.report.Warnings, alert.Message)
		}
	}
}
