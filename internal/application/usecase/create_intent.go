package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/uhicoop/loan-service/internal/application/dto"
	"github.com/uhicoop/loan-service/internal/domain/port"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
)

// CreateRepaymentIntentUseCase starts an online repayment with the payment
// gateway. The gateway call happens before any state mutation and carries
// an explicit timeout, so a gateway failure or timeout leaves no loan or
// invoice row half-updated. Gateway errors propagate to the caller as-is.
type CreateRepaymentIntentUseCase struct {
	loanRepo port.LoanRepository
	gateway  port.PaymentGatewayClient
	timeout  time.Duration
}

// NewCreateRepaymentIntentUseCase wires dependencies.
func NewCreateRepaymentIntentUseCase(loanRepo port.LoanRepository, gateway port.PaymentGatewayClient, timeout time.Duration) *CreateRepaymentIntentUseCase {
	return &CreateRepaymentIntentUseCase{loanRepo: loanRepo, gateway: gateway, timeout: timeout}
}

// Execute validates the request against the loan and creates the intent.
func (uc *CreateRepaymentIntentUseCase) Execute(ctx context.Context, req dto.CreateIntentRequest) (dto.PaymentIntentResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return dto.PaymentIntentResponse{}, valueobject.NewValidationError("amount", "must be positive")
	}

	loan, err := uc.loanRepo.FindByIDForBorrower(ctx, req.BorrowerID, req.LoanID)
	if err != nil {
		return dto.PaymentIntentResponse{}, fmt.Errorf("find loan: %w", err)
	}
	if !loan.Status().Equal(valueobject.LoanStatusActive) {
		return dto.PaymentIntentResponse{}, valueobject.NewStatusConflictError(loan.Status().String(), valueobject.LoanStatusActive.String())
	}
	if req.Amount.GreaterThan(loan.OutstandingBalance()) {
		return dto.PaymentIntentResponse{}, valueobject.NewValidationError("amount", "exceeds outstanding balance")
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	intent, err := uc.gateway.CreateIntent(ctx, req.Amount, loan.Currency(), map[string]string{
		"loan_id":     loan.ID(),
		"borrower_id": loan.BorrowerID(),
	})
	if err != nil {
		return dto.PaymentIntentResponse{}, fmt.Errorf("create payment intent: %w", err)
	}

	return dto.PaymentIntentResponse{
		IntentID:     intent.IntentID,
		ClientSecret: intent.ClientSecret,
	}, nil
}
