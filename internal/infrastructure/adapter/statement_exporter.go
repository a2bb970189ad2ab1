package adapter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/uhicoop/loan-service/internal/domain/model"
)

// CSVStatementExporter implements port.ReportExporter by rendering the
// loan's payment history as CSV, one ledger row per line with a summary
// header block.
type CSVStatementExporter struct{}

// NewCSVStatementExporter creates a CSV exporter.
func NewCSVStatementExporter() *CSVStatementExporter {
	return &CSVStatementExporter{}
}

// RenderLoanHistory renders the statement.
func (e *CSVStatementExporter) RenderLoanHistory(_ context.Context, loan model.Loan, payments []model.Payment) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	summary := [][]string{
		{"loan_id", loan.ID()},
		{"borrower", loan.BorrowerName()},
		{"principal", loan.Principal().StringFixed(2)},
		{"outstanding_balance", loan.OutstandingBalance().StringFixed(2)},
		{"currency", loan.Currency()},
		{"status", loan.Status().String()},
		{},
		{"payment_id", "invoice_id", "amount", "reference", "method", "status", "paid_at"},
	}
	for _, row := range summary {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write statement header: %w", err)
		}
	}

	for _, p := range payments {
		row := []string{
			p.ID, p.InvoiceID,
			p.Amount.StringFixed(2),
			p.Reference, p.Method, p.Status.String(),
			p.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write statement row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush statement: %w", err)
	}
	return buf.Bytes(), nil
}
