package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/uhicoop/loan-service/internal/domain/port"
)

// Template identifiers for lifecycle notifications.
const (
	TemplateApplicationReceived = "loan.application_received"
	TemplateLoanApproved        = "loan.approved"
	TemplateLoanRejected        = "loan.rejected"
	TemplatePaymentReminder     = "invoice.payment_reminder"
	TemplatePaymentReceipt      = "payment.receipt"
)

const notifyTimeout = 10 * time.Second

// Notifier resolves a staff member's email and dispatches a lifecycle
// notification. Delivery is best-effort with a no-throw contract: failures
// are logged, never returned, because the financial transition they follow
// has already committed.
type Notifier struct {
	staff      port.StaffDirectory
	dispatcher port.NotificationDispatcher
	logger     *slog.Logger
}

// NewNotifier wires dependencies.
func NewNotifier(staff port.StaffDirectory, dispatcher port.NotificationDispatcher, logger *slog.Logger) *Notifier {
	return &Notifier{staff: staff, dispatcher: dispatcher, logger: logger}
}

// NotifyStaff sends templateID to the staff member's email. Callers invoke
// it after commit, typically on a detached context so that request
// cancellation does not abort an in-flight send.
func (n *Notifier) NotifyStaff(ctx context.Context, staffID, templateID string, data map[string]any) {
	if n == nil || n.dispatcher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	member, err := n.staff.Get(ctx, staffID)
	if err != nil {
		n.logger.WarnContext(ctx, "notification skipped: staff lookup failed",
			"staff_id", staffID,
			"template_id", templateID,
			"error", err,
		)
		return
	}

	if data == nil {
		data = map[string]any{}
	}
	data["name"] = member.FullName()

	if err := n.dispatcher.Send(ctx, member.Email, templateID, data); err != nil {
		n.logger.WarnContext(ctx, "notification dispatch failed",
			"staff_id", staffID,
			"template_id", templateID,
			"error", err,
		)
		return
	}

	n.logger.DebugContext(ctx, "notification dispatched",
		"staff_id", staffID,
		"template_id", templateID,
	)
}
