package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uhicoop/loan-service/internal/domain/port"
)

// RemindPaymentsUseCase sweeps pending invoices approaching their due date
// and dispatches a payment reminder to the staff member who issued each one.
// The sweep is read-only and idempotent per run: it never mutates invoices,
// so running it twice only sends the reminder twice.
type RemindPaymentsUseCase struct {
	invoiceRepo port.InvoiceRepository
	notifier    *Notifier
	logger      *slog.Logger
	horizon     time.Duration
}

// NewRemindPaymentsUseCase wires dependencies. horizon is how far ahead of
// the due date a reminder fires.
func NewRemindPaymentsUseCase(invoiceRepo port.InvoiceRepository, notifier *Notifier, logger *slog.Logger, horizon time.Duration) *RemindPaymentsUseCase {
	return &RemindPaymentsUseCase{invoiceRepo: invoiceRepo, notifier: notifier, logger: logger, horizon: horizon}
}

// Execute runs one sweep and returns the number of reminders dispatched.
func (uc *RemindPaymentsUseCase) Execute(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	invoices, err := uc.invoiceRepo.FindPendingDueWithin(ctx, now, now.Add(uc.horizon))
	if err != nil {
		return 0, fmt.Errorf("find pending invoices: %w", err)
	}

	for _, inv := range invoices {
		uc.notifier.NotifyStaff(ctx, inv.GeneratedBy(), TemplatePaymentReminder, map[string]any{
			"invoice_number": inv.Number(),
			"loan_id":        inv.LoanID(),
			"total":          inv.Total().StringFixed(2),
			"currency":       inv.Currency(),
			"payment_code":   inv.PaymentCode(),
			"due_date":       inv.DueDate().Format(time.RFC3339),
		})
	}

	uc.logger.InfoContext(ctx, "payment reminder sweep finished",
		"reminders", len(invoices),
		"horizon", uc.horizon.String(),
	)
	return len(invoices), nil
}
