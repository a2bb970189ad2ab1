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
)

// ApplyLoanUseCase creates a new loan application in PENDING status.
type ApplyLoanUseCase struct {
	loanRepo  port.LoanRepository
	staff     port.StaffDirectory
	publisher port.EventPublisher
	notifier  *Notifier
	logger    *slog.Logger

	// interestRate is the fixed simple annual rate (percent) applied to
	// every staff loan under the current policy.
	interestRate decimal.Decimal
	currency     string
}

// NewApplyLoanUseCase wires dependencies.
func NewApplyLoanUseCase(
	loanRepo port.LoanRepository,
	staff port.StaffDirectory,
	publisher port.EventPublisher,
	notifier *Notifier,
	logger *slog.Logger,
	interestRate decimal.Decimal,
	currency string,
) *ApplyLoanUseCase {
	return &ApplyLoanUseCase{
		loanRepo:     loanRepo,
		staff:        staff,
		publisher:    publisher,
		notifier:     notifier,
		logger:       logger,
		interestRate: interestRate,
		currency:     currency,
	}
}

// Execute validates and persists a new application, then emits the
// application-received notification.
func (uc *ApplyLoanUseCase) Execute(ctx context.Context, req dto.ApplyLoanRequest) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	// 1. Resolve the applicant so the loan carries a name snapshot for
	// admin search.
	member, err := uc.staff.Get(ctx, req.BorrowerID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("resolve borrower: %w", err)
	}

	// 2. Create the aggregate; all input validation happens here.
	loan, err := model.NewLoan(
		req.BorrowerID, member.FullName(),
		req.Amount, uc.currency, uc.interestRate,
		req.TermMonths, req.Purpose, now,
	)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("create loan: %w", err)
	}

	// 3. Persist.
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	// 4. Post-commit side effects, best-effort.
	publishEvents(ctx, uc.logger, uc.publisher, loan.DomainEvents()...)
	go uc.notifier.NotifyStaff(context.WithoutCancel(ctx), loan.BorrowerID(), TemplateApplicationReceived, map[string]any{
		"loan_id":         loan.ID(),
		"amount":          loan.Principal(),
		"currency":        loan.Currency(),
		"term_months":     loan.TermMonths(),
		"monthly_payment": loan.MonthlyPayment(),
	})

	return toLoanResponse(loan), nil
}
