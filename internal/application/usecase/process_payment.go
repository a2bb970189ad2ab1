package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/uhicoop/loan-service/internal/application/dto"
	"github.com/uhicoop/loan-service/internal/domain/model"
	"github.com/uhicoop/loan-service/internal/domain/port"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
)

// paymentMethodGateway tags ledger rows created from gateway confirmations.
const paymentMethodGateway = "GATEWAY"

// ProcessPaymentUseCase reconciles an externally confirmed payment against
// its invoice and loan. The invoice update, the balance reduction and the
// ledger append commit in one transaction, and the idempotency gate runs
// inside that same transaction, so a webhook retry can never apply a payment
// twice or observe a half-applied one.
type ProcessPaymentUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	notifier  *Notifier
	logger    *slog.Logger
}

// NewProcessPaymentUseCase wires dependencies.
func NewProcessPaymentUseCase(uow port.UnitOfWork, publisher port.EventPublisher, notifier *Notifier, logger *slog.Logger) *ProcessPaymentUseCase {
	return &ProcessPaymentUseCase{uow: uow, publisher: publisher, notifier: notifier, logger: logger}
}

// Execute applies one payment confirmation. Re-delivery of an already
// applied event returns nil without reapplying; the caller's retry logic
// stays simple.
func (uc *ProcessPaymentUseCase) Execute(ctx context.Context, evt dto.PaymentEvent) error {
	if evt.InvoiceNumber == "" {
		return valueobject.NewValidationError("invoice_number", "is required")
	}
	if evt.Amount.LessThanOrEqual(decimal.Zero) {
		return valueobject.NewValidationError("amount", "must be positive")
	}

	now := evt.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var (
		applied bool
		loan    model.Loan
	)
	err := uc.uow.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		invoice, err := repos.Invoices.FindByNumber(ctx, evt.InvoiceNumber)
		if err != nil {
			return fmt.Errorf("find invoice: %w", err)
		}

		// Idempotency gate, inside the transaction: a duplicate delivery is
		// a successful no-op, not an error.
		if invoice.IsPaid() {
			uc.logger.InfoContext(ctx, "duplicate payment delivery ignored",
				"invoice_number", evt.InvoiceNumber,
				"transaction_ref", evt.TransactionRef,
			)
			return nil
		}

		invoice, err = invoice.MarkPaid(evt.TransactionRef, now)
		if err != nil {
			return fmt.Errorf("mark invoice paid: %w", err)
		}

		loan, err = repos.Loans.FindByID(ctx, invoice.LoanID())
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}
		loan, err = loan.ApplyPayment(evt.Amount, invoice.Number(), evt.TransactionRef, now)
		if err != nil {
			return fmt.Errorf("apply payment: %w", err)
		}

		if err := repos.Invoices.Save(ctx, invoice); err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}
		if err := repos.Loans.Save(ctx, loan); err != nil {
			return fmt.Errorf("save loan: %w", err)
		}
		if err := repos.Payments.Append(ctx, model.NewVerifiedPayment(
			loan.ID(), invoice.ID(), evt.Amount, evt.TransactionRef, paymentMethodGateway, now,
		)); err != nil {
			return fmt.Errorf("append payment: %w", err)
		}

		applied = true
		return nil
	})
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	// Post-commit side effects only; a failure here cannot unwind the
	// committed payment.
	publishEvents(ctx, uc.logger, uc.publisher, loan.DomainEvents()...)
	go uc.notifier.NotifyStaff(context.WithoutCancel(ctx), loan.BorrowerID(), TemplatePaymentReceipt, map[string]any{
		"loan_id":         loan.ID(),
		"invoice_number":  evt.InvoiceNumber,
		"amount":          evt.Amount,
		"currency":        loan.Currency(),
		"transaction_ref": evt.TransactionRef,
		"balance":         loan.OutstandingBalance(),
	})

	return nil
}
