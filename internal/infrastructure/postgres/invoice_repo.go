package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/uhicoop/loan-service/internal/domain/model"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
	pgdb "github.com/uhicoop/loan-service/pkg/postgres"
)

// InvoiceRepo implements port.InvoiceRepository on PostgreSQL.
type InvoiceRepo struct {
	db pgdb.Querier
}

// NewInvoiceRepo creates a PostgreSQL-backed invoice repository.
func NewInvoiceRepo(db pgdb.Querier) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

const invoiceColumns = `
	id, loan_id, invoice_number, payment_pin,
	principal, tax, fee, total, currency, payment_code,
	due_date, status, transaction_ref, generated_by,
	paid_at, created_at, updated_at
`

// Save persists an invoice (upsert by id). Settlement fields are the only
// ones that change after creation.
func (r *InvoiceRepo) Save(ctx context.Context, inv model.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO UPDATE SET
			status          = EXCLUDED.status,
			transaction_ref = EXCLUDED.transaction_ref,
			paid_at         = EXCLUDED.paid_at,
			updated_at      = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		inv.ID(), inv.LoanID(), inv.Number(), inv.PaymentPIN(),
		inv.Principal(), inv.Tax(), inv.Fee(), inv.Total(), inv.Currency(), inv.PaymentCode(),
		inv.DueDate(), inv.Status().String(), nullStr(inv.TransactionRef()), inv.GeneratedBy(),
		nullTime(inv.PaidAt()), inv.CreatedAt(), inv.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save invoice: %w", err)
	}
	return nil
}

// FindByNumber retrieves an invoice by its external invoice number. Inside a
// unit of work the row is locked for the rest of the transaction, which
// serializes concurrent deliveries of the same payment confirmation.
func (r *InvoiceRepo) FindByNumber(ctx context.Context, number string) (model.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_number = $1 FOR UPDATE`
	inv, err := scanInvoiceRow(r.db.QueryRow(ctx, query, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Invoice{}, valueobject.NewNotFoundError("invoice", number)
	}
	return inv, err
}

// FindByLoanID retrieves all invoices for a loan, newest first.
func (r *InvoiceRepo) FindByLoanID(ctx context.Context, loanID string) ([]model.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE loan_id = $1 ORDER BY created_at DESC`
	return r.scanMany(ctx, query, loanID)
}

// SumPendingByLoanID totals the loan's unsettled invoices. Each pending
// invoice reserves its full total, since settlement reduces the balance by
// the confirmed amount including tax and fee.
func (r *InvoiceRepo) SumPendingByLoanID(ctx context.Context, loanID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(total), 0) FROM invoices WHERE loan_id = $1 AND status = $2`
	if err := r.db.QueryRow(ctx, query, loanID, valueobject.InvoiceStatusPending.String()).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum pending invoices: %w", err)
	}
	return sum, nil
}

// FindPendingDueWithin returns pending invoices due between now and horizon.
func (r *InvoiceRepo) FindPendingDueWithin(ctx context.Context, now, horizon time.Time) ([]model.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE status = $1 AND due_date >= $2 AND due_date <= $3
		ORDER BY due_date
	`
	return r.scanMany(ctx, query, valueobject.InvoiceStatusPending.String(), now, horizon)
}

func (r *InvoiceRepo) scanMany(ctx context.Context, query string, args ...any) ([]model.Invoice, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []model.Invoice
	for rows.Next() {
		inv, err := scanInvoiceRow(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanInvoiceRow(s scannable) (model.Invoice, error) {
	var (
		id, loanID, number, paymentPIN string
		principal, tax, fee, total     decimal.Decimal
		currency, paymentCode          string
		dueDate                        time.Time
		statusStr                      string
		transactionRef                 *string
		generatedBy                    string
		paidAt                         *time.Time
		createdAt, updatedAt           time.Time
	)

	err := s.Scan(
		&id, &loanID, &number, &paymentPIN,
		&principal, &tax, &fee, &total, &currency, &paymentCode,
		&dueDate, &statusStr, &transactionRef, &generatedBy,
		&paidAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Invoice{}, err
		}
		return model.Invoice{}, fmt.Errorf("scan invoice: %w", err)
	}

	status, err := valueobject.NewInvoiceStatus(statusStr)
	if err != nil {
		return model.Invoice{}, fmt.Errorf("parse invoice status: %w", err)
	}

	return model.ReconstructInvoice(
		id, loanID, number, paymentPIN,
		principal, tax, fee, total,
		currency, paymentCode,
		dueDate, status,
		derefStr(transactionRef), generatedBy,
		derefTime(paidAt), createdAt, updatedAt,
	), nil
}
