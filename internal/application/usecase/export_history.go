package usecase

import (
	"context"
	"fmt"

	"github.com/uhicoop/loan-service/internal/domain/model"
	"github.com/uhicoop/loan-service/internal/domain/port"
)

// ExportLoanHistoryUseCase renders a loan's payment history as a
// downloadable statement. Read-only; never touches loan state.
type ExportLoanHistoryUseCase struct {
	loanRepo    port.LoanRepository
	paymentRepo port.PaymentRepository
	exporter    port.ReportExporter
}

// NewExportLoanHistoryUseCase wires dependencies.
func NewExportLoanHistoryUseCase(loanRepo port.LoanRepository, paymentRepo port.PaymentRepository, exporter port.ReportExporter) *ExportLoanHistoryUseCase {
	return &ExportLoanHistoryUseCase{loanRepo: loanRepo, paymentRepo: paymentRepo, exporter: exporter}
}

// Execute renders the statement for the admin surface.
func (uc *ExportLoanHistoryUseCase) Execute(ctx context.Context, loanID string) ([]byte, error) {
	loan, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("find loan: %w", err)
	}
	return uc.render(ctx, loan)
}

// ExecuteForBorrower renders the statement for the borrower's own loan.
func (uc *ExportLoanHistoryUseCase) ExecuteForBorrower(ctx context.Context, borrowerID, loanID string) ([]byte, error) {
	loan, err := uc.loanRepo.FindByIDForBorrower(ctx, borrowerID, loanID)
	if err != nil {
		return nil, fmt.Errorf("find loan: %w", err)
	}
	return uc.render(ctx, loan)
}

func (uc *ExportLoanHistoryUseCase) render(ctx context.Context, loan model.Loan) ([]byte, error) {
	payments, err := uc.paymentRepo.FindByLoanID(ctx, loan.ID())
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}
	doc, err := uc.exporter.RenderLoanHistory(ctx, loan, payments)
	if err != nil {
		return nil, fmt.Errorf("render loan history: %w", err)
	}
	return doc, nil
}
