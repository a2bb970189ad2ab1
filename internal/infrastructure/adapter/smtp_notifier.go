package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
)

// ---------------------------------------------------------------------------
// SMTP notification dispatcher
// ---------------------------------------------------------------------------

// SMTPConfig holds configuration for the SMTP dispatcher.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier implements port.NotificationDispatcher over plain SMTP. Each
// template id maps to a subject and a text body rendered from the data map.
type SMTPNotifier struct {
	config SMTPConfig
	logger *slog.Logger
}

// NewSMTPNotifier creates an SMTP-backed dispatcher.
func NewSMTPNotifier(config SMTPConfig, logger *slog.Logger) *SMTPNotifier {
	return &SMTPNotifier{config: config, logger: logger}
}

// Send renders and delivers one notification email.
func (n *SMTPNotifier) Send(_ context.Context, to, templateID string, data map[string]any) error {
	if to == "" {
		return fmt.Errorf("notification recipient is empty")
	}

	e := email.NewEmail()
	e.From = n.config.From
	e.To = []string{to}
	e.Subject = subjectFor(templateID)
	e.Text = []byte(renderBody(templateID, data))

	addr := fmt.Sprintf("%s:%d", n.config.Host, n.config.Port)
	auth := smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}

	n.logger.Debug("email sent", "to", to, "subject", e.Subject)
	return nil
}

func subjectFor(templateID string) string {
	switch templateID {
	case "loan.application_received":
		return "Loan Application Received"
	case "loan.approved":
		return "Loan Application Approved"
	case "loan.rejected":
		return "Loan Application Update"
	case "invoice.payment_reminder":
		return "Upcoming Payment Reminder"
	case "payment.receipt":
		return "Payment Received"
	default:
		return "Loan Service Notification"
	}
}

func renderBody(templateID string, data map[string]any) string {
	var b strings.Builder

	name, _ := data["name"].(string)
	if name != "" {
		fmt.Fprintf(&b, "Dear %s,\n\n", name)
	}

	switch templateID {
	case "loan.application_received":
		fmt.Fprintf(&b, "We have received your loan application (%v) for %v %v.\n", data["loan_id"], data["amount"], data["currency"])
		b.WriteString("You will be notified once it has been reviewed.\n")
	case "loan.approved":
		fmt.Fprintf(&b, "Your loan application (%v) has been approved.\n", data["loan_id"])
		if due, ok := data["due_date"]; ok {
			fmt.Fprintf(&b, "The final repayment is due by %v.\n", due)
		}
	case "loan.rejected":
		fmt.Fprintf(&b, "Your loan application (%v) was not approved.\n", data["loan_id"])
		if reason, ok := data["reason"].(string); ok && reason != "" {
			fmt.Fprintf(&b, "Reason: %s\n", reason)
		}
	case "invoice.payment_reminder":
		fmt.Fprintf(&b, "Invoice %v for %v %v is due by %v.\n", data["invoice_number"], data["total"], data["currency"], data["due_date"])
		if code, ok := data["payment_code"]; ok {
			fmt.Fprintf(&b, "Payment code: %v\n", code)
		}
	case "payment.receipt":
		fmt.Fprintf(&b, "We received your payment of %v %v against invoice %v.\n", data["amount"], data["currency"], data["invoice_number"])
		if balance, ok := data["outstanding_balance"]; ok {
			fmt.Fprintf(&b, "Remaining balance: %v\n", balance)
		}
	default:
		for k, v := range data {
			if k == "name" {
				continue
			}
			fmt.Fprintf(&b, "%s: %v\n", k, v)
		}
	}

	b.WriteString("\nBest regards,\nUHI Cooperative\n")
	return b.String()
}

// LogNotifier is a development/test dispatcher that logs instead of sending.
// It implements port.NotificationDispatcher.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a logging dispatcher.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the notification instead of delivering it.
func (n *LogNotifier) Send(_ context.Context, to, templateID string, data map[string]any) error {
	n.logger.Info("notification",
		"to", to,
		"template_id", templateID,
		"data", data,
		"at", time.Now().UTC(),
	)
	return nil
}
