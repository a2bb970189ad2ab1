package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uhicoop/loan-service/internal/application/dto"
	"github.com/uhicoop/loan-service/internal/domain/port"
)

// CancelApplicationUseCase discards a pending application on the
// applicant's request. This is the only path on which a loan record is
// removed rather than transitioned.
type CancelApplicationUseCase struct {
	uow    port.UnitOfWork
	logger *slog.Logger
}

// NewCancelApplicationUseCase wires dependencies.
func NewCancelApplicationUseCase(uow port.UnitOfWork, logger *slog.Logger) *CancelApplicationUseCase {
	return &CancelApplicationUseCase{uow: uow, logger: logger}
}

// Execute removes the pending application if, and only if, the caller is
// the original applicant and the loan is still PENDING.
func (uc *CancelApplicationUseCase) Execute(ctx context.Context, req dto.CancelApplicationRequest) error {
	return uc.uow.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		loan, err := repos.Loans.FindByID(ctx, req.LoanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}
		if err := loan.CancellableBy(req.BorrowerID); err != nil {
			return err
		}
		if err := repos.Loans.Delete(ctx, loan.ID()); err != nil {
			return fmt.Errorf("delete loan: %w", err)
		}
		uc.logger.InfoContext(ctx, "pending application cancelled",
			"loan_id", loan.ID(),
			"borrower_id", req.BorrowerID,
		)
		return nil
	})
}
