package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	TypeAlertRaised     = "ALERT_RAISED"
	TypeReportCompleted = "REPORT_COMPLETED"
)

// AlertNotification is published once per finding in a validation report.
type AlertNotification struct {
	Type      string    `json:"type"` // ALERT_RAISED
	ReportID  string    `json:"report_id"`
	PatientID uint32    `json:"patient_id"`
	Date      string    `json:"date"`
	Kind      string    `json:"kind"`
	Severity  string    `json:"severity"` // critical, warning
	Message   string    `json:"message"`
	Value     float64   `json:"value"`
	Limit     float64   `json:"limit"`
	RaisedAt  time.Time `json:"raised_at"`
}

// Key partitions alerts by patient so one patient's alerts stay ordered.
func (a *AlertNotification) Key() string {
	return fmt.Sprintf("patient-%d", a.PatientID)
}

// ReportSummary is published after the alerts of a report.
type ReportSummary struct {
	Type          string    `json:"type"` // REPORT_COMPLETED
	ReportID      string    `json:"report_id"`
	MedicalMode   bool      `json:"medical_mode"`
	RecordCount   int       `json:"record_count"`
	IssuesFound   int       `json:"issues_found"`
	CriticalCount int       `json:"critical_count"`
	WarningCount  int       `json:"warning_count"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Key partitions summaries by report ID.
func (s *ReportSummary) Key() string {
	return "report-" + s.ReportID
}

// EncodeAlertNotification encodes an AlertNotification to JSON
func EncodeAlertNotification(alert *AlertNotification) ([]byte, error) {
	return json.Marshal(alert)
}

// DecodeAlertNotification decodes JSON to AlertNotification
func DecodeAlertNotification(data []byte) (*AlertNotification, error) {
	var alert AlertNotification
	if err := json.Unmarshal(data, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// EncodeReportSummary encodes a ReportSummary to JSON
func EncodeReportSummary(summary *ReportSummary) ([]byte, error) {
	return json.Marshal(summary)
}

// DecodeReportSummary decodes JSON to ReportSummary
func DecodeReportSummary(data []byte) (*ReportSummary, error) {
	var summary ReportSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// DecodeMessage inspects the type field and returns either an
// *AlertNotification or a *ReportSummary.
func DecodeMessage(data []byte) (any, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	switch envelope.Type {
	case TypeAlertRaised:
		return DecodeAlertNotification(data)
	case TypeReportCompleted:
		return DecodeReportSummary(data)
	default:
		return nil, fmt.Errorf("unknown message type %q", envelope.Type)
	}
}
