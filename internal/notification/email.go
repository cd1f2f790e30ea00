package notification

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"
	"time"

	"github.com/smukkama/vitalcheck/internal/protocol"
	"github.com/smukkama/vitalcheck/pkg/config"
	"go.uber.org/zap"
)

var (
	alertTemplate = template.Must(template.New("alert").Parse(`
Patient Alert ({{.Severity}})
=============================

Patient: {{.PatientID}}
Record Date: {{.Date}}
Finding: {{.Kind}}
Measured Value: {{.Value}}
Limit: {{.Limit}}
Report ID: {{.ReportID}}
Raised At: {{.RaisedAt.Format "2006-01-02 15:04:05 MST"}}

{{.Message}}
{{if eq .Severity "critical"}}
This finding implies immediate clinical concern. Please review the patient now.
{{else}}
Please keep the patient under observation.
{{end}}
---
VitalCheck Notification System
`))

	summaryTemplate = template.Must(template.New("summary").Parse(`
Validation Report Completed
===========================

Report ID: {{.ReportID}}
Mode: {{if .MedicalMode}}medical{{else}}basic{{end}}
Records Checked: {{.RecordCount}}
Issues Found: {{.IssuesFound}}
Critical: {{.CriticalCount}}
Warnings: {{.WarningCount}}
Completed At: {{.CompletedAt.Format "2006-01-02 15:04:05 MST"}}

---
VitalCheck Notification System
`))
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier sends email notifications
type EmailNotifier struct {
	config *config.SMTPConfig
	logger *zap.Logger
	send   sendFunc
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg *config.SMTPConfig, logger *zap.Logger) *EmailNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailNotifier{config: cfg, logger: logger, send: smtp.SendMail}
}

// Notify emails a decoded message (see protocol.DecodeMessage)
func (e *EmailNotifier) Notify(msg any) error {
	switch m := msg.(type) {
	case *protocol.AlertNotification:
		return e.SendAlert(m)
	case *protocol.ReportSummary:
		return e.SendSummary(m)
	default:
		return fmt.Errorf("unsupported notification %T", msg)
	}
}

// SendAlert sends an email for a single alert
func (e *EmailNotifier) SendAlert(alert *protocol.AlertNotification) error {
	var subject string
	switch alert.Severity {
	case "critical":
		subject = fmt.Sprintf("CRITICAL: %s - patient %d (%s)", alert.Kind, alert.PatientID, alert.Date)
	case "warning":
		subject = fmt.Sprintf("Warning: %s - patient %d (%s)", alert.Kind, alert.PatientID, alert.Date)
	default:
		return fmt.Errorf("unknown alert severity: %s", alert.Severity)
	}

	body, err := render(alertTemplate, alert)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return e.sendEmail(subject, body)
}

// SendSummary sends the report digest email
func (e *EmailNotifier) SendSummary(summary *protocol.ReportSummary) error {
	subject := fmt.Sprintf("Validation report %s: %d issue(s), %d critical",
		summary.ReportID, summary.IssuesFound, summary.CriticalCount)

	body, err := render(summaryTemplate, summary)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return e.sendEmail(subject, body)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Configured reports whether SMTP credentials are present
func (e *EmailNotifier) Configured() bool {
	return e.config.Username != "" && e.config.Password != ""
}

func (e *EmailNotifier) sendEmail(subject, body string) error {
	if !e.Configured() {
		e.logger.Info("SMTP not configured, skipping email",
			zap.String("subject", subject),
			zap.String("body", body))
		return nil
	}

	var message strings.Builder
	fmt.Fprintf(&message, "From: %s\r\n", e.config.From)
	fmt.Fprintf(&message, "To: %s\r\n", e.config.To)
	fmt.Fprintf(&message, "Subject: %s\r\n", subject)
	fmt.Fprintf(&message, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("\r\n")
	message.WriteString(body)

	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	if err := e.send(addr, auth, e.config.From, []string{e.config.To}, []byte(message.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	e.logger.Info("email sent", zap.String("subject", subject))
	return nil
}

// TestConnection tests the SMTP connection
func (e *EmailNotifier) TestConnection() error {
	if e.config.Username == "" {
		return fmt.Errorf("SMTP not configured")
	}

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	return nil
}
