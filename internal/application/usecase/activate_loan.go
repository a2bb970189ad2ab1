package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uhicoop/loan-service/internal/application/dto"
	"github.com/uhicoop/loan-service/internal/domain/model"
	"github.com/uhicoop/loan-service/internal/domain/port"
)

// ActivateLoanUseCase transitions an approved loan to ACTIVE, recording the
// start date. Only active loans accept invoices and payments.
type ActivateLoanUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewActivateLoanUseCase wires dependencies.
func NewActivateLoanUseCase(uow port.UnitOfWork, publisher port.EventPublisher, logger *slog.Logger) *ActivateLoanUseCase {
	return &ActivateLoanUseCase{uow: uow, publisher: publisher, logger: logger}
}

// Execute activates an approved loan.
func (uc *ActivateLoanUseCase) Execute(ctx context.Context, req dto.ActivateLoanRequest) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	var activated model.Loan
	err := uc.uow.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		loan, err := repos.Loans.FindByID(ctx, req.LoanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}
		loan, err = loan.Activate(now)
		if err != nil {
			return fmt.Errorf("activate loan: %w", err)
		}
		if err := repos.Loans.Save(ctx, loan); err != nil {
			return fmt.Errorf("save loan: %w", err)
		}
		activated = loan
		return nil
	})
	if err != nil {
		return dto.LoanResponse{}, err
	}

	publishEvents(ctx, uc.logger, uc.publisher, activated.DomainEvents()...)
	return toLoanResponse(activated), nil
}
