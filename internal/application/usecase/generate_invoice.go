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
	"github.com/uhicoop/loan-service/internal/domain/service"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
)

// GenerateInvoiceUseCase creates a pending repayment invoice against an
// active loan. The balance check and the insert run inside one transaction,
// and the check counts the loan's other pending invoices, so concurrent
// generation cannot jointly exceed the outstanding balance.
type GenerateInvoiceUseCase struct {
	uow          port.UnitOfWork
	staff        port.StaffDirectory
	pricing      *service.PricingPolicy
	publisher    port.EventPublisher
	logger       *slog.Logger
	bankTransfer dto.BankTransferDetails
}

// NewGenerateInvoiceUseCase wires dependencies.
func NewGenerateInvoiceUseCase(
	uow port.UnitOfWork,
	staff port.StaffDirectory,
	pricing *service.PricingPolicy,
	publisher port.EventPublisher,
	logger *slog.Logger,
	bankTransfer dto.BankTransferDetails,
) *GenerateInvoiceUseCase {
	return &GenerateInvoiceUseCase{
		uow:          uow,
		staff:        staff,
		pricing:      pricing,
		publisher:    publisher,
		logger:       logger,
		bankTransfer: bankTransfer,
	}
}

// Execute generates an invoice and returns the payer-facing projection.
func (uc *GenerateInvoiceUseCase) Execute(ctx context.Context, req dto.GenerateInvoiceRequest) (dto.InvoiceProjection, error) {
	now := time.Now().UTC()

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return dto.InvoiceProjection{}, valueobject.NewValidationError("amount", "must be positive")
	}

	// Resolve borrower identity up front; no state has changed yet.
	member, err := uc.staff.Get(ctx, req.BorrowerID)
	if err != nil {
		return dto.InvoiceProjection{}, fmt.Errorf("resolve borrower: %w", err)
	}

	var invoice model.Invoice
	err = uc.uow.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		loan, err := repos.Loans.FindByIDForBorrower(ctx, req.BorrowerID, req.LoanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}
		if !loan.Status().Equal(valueobject.LoanStatusActive) {
			return valueobject.NewStatusConflictError(loan.Status().String(), valueobject.LoanStatusActive.String())
		}
		if req.Amount.GreaterThan(loan.OutstandingBalance()) {
			return valueobject.NewValidationError("amount", "exceeds outstanding balance")
		}

		// Re-validate against the sum of other pending invoices inside the
		// same transaction: this is the multi-invoice cap. Settlement reduces
		// the balance by the invoice total, so totals are what each pending
		// invoice reserves.
		price := uc.pricing.Price(req.Amount)
		pending, err := repos.Invoices.SumPendingByLoanID(ctx, loan.ID())
		if err != nil {
			return fmt.Errorf("sum pending invoices: %w", err)
		}
		if pending.Add(price.Total).GreaterThan(loan.OutstandingBalance()) {
			return valueobject.NewValidationError("amount", "exceeds balance not covered by pending invoices")
		}
		invoice, err = model.NewInvoice(
			loan.ID(), member.StaffID,
			price.Principal, price.Tax, price.Fee,
			loan.Currency(), req.BorrowerID, now,
		)
		if err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if err := repos.Invoices.Save(ctx, invoice); err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.InvoiceProjection{}, err
	}

	publishEvents(ctx, uc.logger, uc.publisher, invoice.DomainEvents()...)

	return dto.InvoiceProjection{
		ID:            invoice.ID(),
		LoanID:        invoice.LoanID(),
		InvoiceNumber: invoice.Number(),
		PaymentPIN:    invoice.PaymentPIN(),
		Principal:     invoice.Principal(),
		Tax:           invoice.Tax(),
		Fee:           invoice.Fee(),
		Total:         invoice.Total(),
		Currency:      invoice.Currency(),
		PaymentCode:   invoice.PaymentCode(),
		DueDate:       invoice.DueDate(),
		Status:        invoice.Status().String(),
		StaffID:       member.StaffID,
		BorrowerName:  member.FullName(),
		BorrowerEmail: member.Email,
		BankTransfer:  uc.bankTransfer,
		GeneratedAt:   invoice.CreatedAt(),
	}, nil
}
