package alarming

import (
	"context"
	"fmt"
	"time"

	"github.com/smukkama/vitalcheck/internal/protocol"
	"github.com/smukkama/vitalcheck/internal/validation"
	"go.uber.org/zap"
)

// Publisher sends an encoded message under a partition key.
// queue.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// ReportSaver persists a completed report. ReportStore implements it.
type ReportSaver interface {
	Save(ctx context.Context, report *validation.Report) error
}

// Dispatcher fans a report out as alert notifications
type Dispatcher struct {
	publisher Publisher
	store     ReportSaver
	logger    *zap.Logger
	now       func() time.Time
}

// NewDispatcher creates a dispatcher. store may be nil.
func NewDispatcher(publisher Publisher, store ReportSaver, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		publisher: publisher,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Dispatch publishes one notification per alert, then the report summary,
// then saves the report. Every step is attempted; the first error is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, report *validation.Report) error {
	var firstErr error
	record := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	raisedAt := d.now()
	failed := 0
	for _, alert := range report.Alerts {
		notification := &protocol.AlertNotification{
			Type:      protocol.TypeAlertRaised,
			ReportID:  report.ID,
			PatientID: alert.PatientID,
			Date:      alert.Date,
			Kind:      string(alert.Kind),
			Severity:  alert.Severity.String(),
			Message:   alert.Message,
			Value:     alert.Value,
			Limit:     alert.Limit,
			RaisedAt:  raisedAt,
		}
		if err := d.sendAlert(ctx, notification); err != nil {
			failed++
			d.logger.Warn("failed to publish alert",
				zap.String("report_id", report.ID),
				zap.Uint32("patient_id", alert.PatientID),
				zap.String("kind", notification.Kind),
				zap.Error(err))
			record(err)
		}
	}

	summary := &protocol.ReportSummary{
		Type:          protocol.TypeReportCompleted,
		ReportID:      report.ID,
		MedicalMode:   report.MedicalMode,
		RecordCount:   report.RecordCount,
		IssuesFound:   report.IssuesFound,
		CriticalCount: report.CriticalCount(),
		WarningCount:  report.WarningCount(),
		CompletedAt:   report.CompletedAt,
	}
	if err := d.sendSummary(ctx, summary); err != nil {
		d.logger.Warn("failed to publish report summary", zap.String("report_id", report.ID), zap.Error(err))
		record(err)
	}

	if d.store != nil {
		if err := d.store.Save(ctx, report); err != nil {
			d.logger.Warn("failed to save report", zap.String("report_id", report.ID), zap.Error(err))
			record(err)
		}
	}

	d.logger.Info("report dispatched",
		zap.String("report_id", report.ID),
		zap.Int("alerts", len(report.Alerts)),
		zap.Int("failed", failed))

	return firstErr
}

func (d *Dispatcher) sendAlert(ctx context.Context, notification *protocol.AlertNotification) error {
	data, err := protocol.EncodeAlertNotification(notification)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}
	return d.publisher.Publish(ctx, notification.Key(), data)
}

func (d *Dispatcher) sendSummary(ctx context.Context, summary *protocol.ReportSummary) error {
	data, err := protocol.EncodeReportSummary(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return d.publisher.Publish(ctx, summary.Key(), data)
}
