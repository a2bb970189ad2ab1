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

// ApproveLoanUseCase transitions a pending loan to APPROVED. The read and
// the guarded write happen inside one transaction so that two concurrent
// reviews of the same loan cannot both succeed.
type ApproveLoanUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	notifier  *Notifier
	logger    *slog.Logger
}

// NewApproveLoanUseCase wires dependencies.
func NewApproveLoanUseCase(uow port.UnitOfWork, publisher port.EventPublisher, notifier *Notifier, logger *slog.Logger) *ApproveLoanUseCase {
	return &ApproveLoanUseCase{uow: uow, publisher: publisher, notifier: notifier, logger: logger}
}

// Execute approves a pending loan.
func (uc *ApproveLoanUseCase) Execute(ctx context.Context, req dto.ApproveLoanRequest) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	var approved model.Loan
	err := uc.uow.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		loan, err := repos.Loans.FindByID(ctx, req.LoanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}
		loan, err = loan.Approve(req.ApproverID, now)
		if err != nil {
			return fmt.Errorf("approve loan: %w", err)
		}
		if err := repos.Loans.Save(ctx, loan); err != nil {
			return fmt.Errorf("save loan: %w", err)
		}
		approved = loan
		return nil
	})
	if err != nil {
		return dto.LoanResponse{}, err
	}

	publishEvents(ctx, uc.logger, uc.publisher, approved.DomainEvents()...)
	go uc.notifier.NotifyStaff(context.WithoutCancel(ctx), approved.BorrowerID(), TemplateLoanApproved, map[string]any{
		"loan_id":  approved.ID(),
		"amount":   approved.Principal(),
		"currency": approved.Currency(),
		"due_date": approved.DueDate(),
	})

	return toLoanResponse(approved), nil
}

// ExecuteBulk applies Execute per loan id independently, returning a per-id
// result set instead of failing the whole batch on one error.
func (uc *ApproveLoanUseCase) ExecuteBulk(ctx context.Context, req dto.BulkApproveRequest) []dto.BulkApproveResult {
	results := make([]dto.BulkApproveResult, 0, len(req.LoanIDs))
	for _, id := range req.LoanIDs {
		resp, err := uc.Execute(ctx, dto.ApproveLoanRequest{LoanID: id, ApproverID: req.ApproverID})
		if err != nil {
			results = append(results, dto.BulkApproveResult{LoanID: id, Error: err.Error()})
			continue
		}
		results = append(results, dto.BulkApproveResult{LoanID: id, Status: resp.Status})
	}
	return results
}

// RejectLoanUseCase transitions a pending loan to REJECTED. Terminal.
type RejectLoanUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	notifier  *Notifier
	logger    *slog.Logger
}

// NewRejectLoanUseCase wires dependencies.
func NewRejectLoanUseCase(uow port.UnitOfWork, publisher port.EventPublisher, notifier *Notifier, logger *slog.Logger) *RejectLoanUseCase {
	return &RejectLoanUseCase{uow: uow, publisher: publisher, notifier: notifier, logger: logger}
}

// Execute rejects a pending loan.
func (uc *RejectLoanUseCase) Execute(ctx context.Context, req dto.RejectLoanRequest) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	var rejected model.Loan
	err := uc.uow.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		loan, err := repos.Loans.FindByID(ctx, req.LoanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}
		loan, err = loan.Reject(req.ApproverID, req.Reason, now)
		if err != nil {
			return fmt.Errorf("reject loan: %w", err)
		}
		if err := repos.Loans.Save(ctx, loan); err != nil {
			return fmt.Errorf("save loan: %w", err)
		}
		rejected = loan
		return nil
	})
	if err != nil {
		return dto.LoanResponse{}, err
	}

	publishEvents(ctx, uc.logger, uc.publisher, rejected.DomainEvents()...)
	go uc.notifier.NotifyStaff(context.WithoutCancel(ctx), rejected.BorrowerID(), TemplateLoanRejected, map[string]any{
		"loan_id": rejected.ID(),
		"reason":  rejected.RejectionReason(),
	})

	return toLoanResponse(rejected), nil
}
