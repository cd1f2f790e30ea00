package notification

import (
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/smukkama/vitalcheck/internal/protocol"
	"github.com/smukkama/vitalcheck/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestNotifier(cfg config.SMTPConfig) (*EmailNotifier, *[]sentMail) {
	var sent []sentMail
	n := NewEmailNotifier(&cfg, nil)
	n.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return n, &sent
}

var configured = config.SMTPConfig{
	Host: "smtp.test", Port: 2525, Username: "u", Password: "p",
	From: "vitalcheck@test", To: "ward@test",
}

func criticalAlert() *protocol.AlertNotification {
	return &protocol.AlertNotification{
		Type:      protocol.TypeAlertRaised,
		ReportID:  "r-1",
		PatientID: 12,
		Date:      "2024-03-01",
		Kind:      "hypertensive crisis",
		Severity:  "critical",
		Message:   "Patient 12 on 2024-03-01: hypertensive crisis (185/95 mmHg >= 180/120)",
		Value:     185,
		Limit:     180,
		RaisedAt:  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestSendAlert_Critical(t *testing.T) {
	n, sent := newTestNotifier(configured)

	require.NoError(t, n.SendAlert(criticalAlert()))
	require.Len(t, *sent, 1)

	mail := (*sent)[0]
	assert.Equal(t, "smtp.test:2525", mail.addr)
	assert.Equal(t, []string{"ward@test"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: CRITICAL: hypertensive crisis - patient 12 (2024-03-01)\r\n")
	assert.Contains(t, mail.msg, "185/95 mmHg >= 180/120")
	assert.Contains(t, mail.msg, "immediate clinical concern")
	assert.Contains(t, mail.msg, "Raised At: 2024-03-01 09:00:00 UTC")
}

func TestSendAlert_Warning(t *testing.T) {
	n, sent := newTestNotifier(configured)

	alert := criticalAlert()
	alert.Severity = "warning"
	alert.Kind = "stage 1/2 hypertension"

	require.NoError(t, n.SendAlert(alert))
	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].msg, "Subject: Warning: stage 1/2 hypertension")
	assert.Contains(t, (*sent)[0].msg, "under observation")
}

func TestSendAlert_UnknownSeverity(t *testing.T) {
	n, sent := newTestNotifier(configured)

	alert := criticalAlert()
	alert.Severity = "info"

	assert.Error(t, n.SendAlert(alert))
	assert.Empty(t, *sent)
}

func TestNotify_Summary(t *testing.T) {
	n, sent := newTestNotifier(configured)

	err := n.Notify(&protocol.ReportSummary{
		Type:          protocol.TypeReportCompleted,
		ReportID:      "r-9",
		MedicalMode:   true,
		RecordCount:   40,
		IssuesFound:   3,
		CriticalCount: 2,
		WarningCount:  1,
		CompletedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].msg, "Subject: Validation report r-9: 3 issue(s), 2 critical")
	assert.Contains(t, (*sent)[0].msg, "Mode: medical")
	assert.Contains(t, (*sent)[0].msg, "Records Checked: 40")

	assert.Error(t, n.Notify("not a message"))
}

func TestSend_Unconfigured(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cfg := config.SMTPConfig{Host: "smtp.test", Port: 25}
	n := NewEmailNotifier(&cfg, zap.New(core))
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called without credentials")
		return nil
	}

	assert.False(t, n.Configured())
	require.NoError(t, n.SendAlert(criticalAlert()))
	assert.Equal(t, 1, logs.FilterMessage("SMTP not configured, skipping email").Len())
	assert.EqualError(t, n.TestConnection(), "SMTP not configured")
}

func TestSend_Failure(t *testing.T) {
	n, _ := newTestNotifier(configured)
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("421 service not available")
	}

	err := n.SendAlert(criticalAlert())
	assert.ErrorContains(t, err, "failed to send email")
}
