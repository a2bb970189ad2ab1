package usecase

import (
	"context"
	"fmt"

	"github.com/uhicoop/loan-service/internal/application/dto"
	"github.com/uhicoop/loan-service/internal/domain/port"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
)

// GetLoanUseCase retrieves a single loan.
type GetLoanUseCase struct {
	loanRepo port.LoanRepository
}

// NewGetLoanUseCase wires dependencies.
func NewGetLoanUseCase(loanRepo port.LoanRepository) *GetLoanUseCase {
	return &GetLoanUseCase{loanRepo: loanRepo}
}

// Execute returns the loan with the given id.
func (uc *GetLoanUseCase) Execute(ctx context.Context, loanID string) (dto.LoanResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}
	return toLoanResponse(loan), nil
}

// ExecuteForBorrower returns the loan only when it belongs to the borrower.
func (uc *GetLoanUseCase) ExecuteForBorrower(ctx context.Context, borrowerID, loanID string) (dto.LoanResponse, error) {
	loan, err := uc.loanRepo.FindByIDForBorrower(ctx, borrowerID, loanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}
	return toLoanResponse(loan), nil
}

// ListLoansUseCase lists loans for borrowers and administrators.
type ListLoansUseCase struct {
	loanRepo port.LoanRepository
}

// NewListLoansUseCase wires dependencies.
func NewListLoansUseCase(loanRepo port.LoanRepository) *ListLoansUseCase {
	return &ListLoansUseCase{loanRepo: loanRepo}
}

// ExecuteForBorrower returns the borrower's own loans.
func (uc *ListLoansUseCase) ExecuteForBorrower(ctx context.Context, borrowerID string) ([]dto.LoanResponse, error) {
	loans, err := uc.loanRepo.FindByBorrowerID(ctx, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return toLoanResponses(loans), nil
}

// ExecuteAdmin returns loans matching the admin filter: an optional status
// and a free-text search over borrower name and staff id.
func (uc *ListLoansUseCase) ExecuteAdmin(ctx context.Context, req dto.ListLoansRequest) ([]dto.LoanResponse, error) {
	filter := port.LoanFilter{Search: req.Search}
	if req.Status != "" {
		status, err := valueobject.NewLoanStatus(req.Status)
		if err != nil {
			return nil, valueobject.NewValidationError("status", "is not a valid loan status")
		}
		filter.Status = &status
	}

	loans, err := uc.loanRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return toLoanResponses(loans), nil
}

// LoanStatsUseCase summarises the portfolio for the admin dashboard.
type LoanStatsUseCase struct {
	loanRepo port.LoanRepository
}

// NewLoanStatsUseCase wires dependencies.
func NewLoanStatsUseCase(loanRepo port.LoanRepository) *LoanStatsUseCase {
	return &LoanStatsUseCase{loanRepo: loanRepo}
}

// Execute returns counts per status plus outstanding and disbursed sums.
func (uc *LoanStatsUseCase) Execute(ctx context.Context) (dto.LoanStatsResponse, error) {
	stats, err := uc.loanRepo.Stats(ctx)
	if err != nil {
		return dto.LoanStatsResponse{}, fmt.Errorf("loan stats: %w", err)
	}
	return dto.LoanStatsResponse{
		CountByStatus:    stats.CountByStatus,
		TotalOutstanding: stats.TotalOutstanding,
		TotalDisbursed:   stats.TotalDisbursed,
	}, nil
}
