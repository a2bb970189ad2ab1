package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/uhicoop/loan-service/internal/domain/model"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
	pgdb "github.com/uhicoop/loan-service/pkg/postgres"
)

// PaymentRepo implements port.PaymentRepository on PostgreSQL. The payments
// table is an append-only ledger; rows are never updated or deleted.
type PaymentRepo struct {
	db pgdb.Querier
}

// NewPaymentRepo creates a PostgreSQL-backed payment ledger.
func NewPaymentRepo(db pgdb.Querier) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// Append writes one verified payment row.
func (r *PaymentRepo) Append(ctx context.Context, p model.Payment) error {
	query := `
		INSERT INTO payments (id, loan_id, invoice_id, amount, reference, method, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.LoanID, p.InvoiceID, p.Amount, p.Reference, p.Method, p.Status.String(), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append payment: %w", err)
	}
	return nil
}

// FindByLoanID retrieves the loan's ledger rows, oldest first.
func (r *PaymentRepo) FindByLoanID(ctx context.Context, loanID string) ([]model.Payment, error) {
	query := `
		SELECT id, loan_id, invoice_id, amount, reference, method, status, created_at
		FROM payments
		WHERE loan_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var (
			p         model.Payment
			amount    decimal.Decimal
			statusStr string
			createdAt time.Time
		)
		if err := rows.Scan(&p.ID, &p.LoanID, &p.InvoiceID, &amount, &p.Reference, &p.Method, &statusStr, &createdAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		status, err := valueobject.NewPaymentStatus(statusStr)
		if err != nil {
			return nil, fmt.Errorf("parse payment status: %w", err)
		}
		p.Amount = amount
		p.Status = status
		p.CreatedAt = createdAt
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
