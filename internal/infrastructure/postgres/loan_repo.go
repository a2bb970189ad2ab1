package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/uhicoop/loan-service/internal/domain/model"
	"github.com/uhicoop/loan-service/internal/domain/port"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
	pgdb "github.com/uhicoop/loan-service/pkg/postgres"
)

// LoanRepo implements port.LoanRepository on PostgreSQL. It runs against a
// pool or, inside a unit of work, against a transaction.
type LoanRepo struct {
	db pgdb.Querier
}

// NewLoanRepo creates a PostgreSQL-backed loan repository.
func NewLoanRepo(db pgdb.Querier) *LoanRepo {
	return &LoanRepo{db: db}
}

const loanColumns = `
	id, borrower_id, borrower_name, principal, outstanding_balance,
	currency, interest_rate, term_months, monthly_payment, purpose,
	status, approver_id, approved_at, rejected_by, rejection_reason,
	start_date, due_date, last_payment_at,
	version, created_at, updated_at
`

// Save persists a loan (upsert by id with optimistic locking). A concurrent
// writer that committed first makes RowsAffected zero, which surfaces as a
// conflict so the caller can retry against fresh state.
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		ON CONFLICT (id) DO UPDATE SET
			status              = EXCLUDED.status,
			outstanding_balance = EXCLUDED.outstanding_balance,
			approver_id         = EXCLUDED.approver_id,
			approved_at         = EXCLUDED.approved_at,
			rejected_by         = EXCLUDED.rejected_by,
			rejection_reason    = EXCLUDED.rejection_reason,
			start_date          = EXCLUDED.start_date,
			due_date            = EXCLUDED.due_date,
			last_payment_at     = EXCLUDED.last_payment_at,
			version             = loans.version + 1,
			updated_at          = EXCLUDED.updated_at
		WHERE loans.version = $19
	`
	tag, err := r.db.Exec(ctx, query,
		loan.ID(), loan.BorrowerID(), loan.BorrowerName(),
		loan.Principal(), loan.OutstandingBalance(),
		loan.Currency(), loan.InterestRate(), loan.TermMonths(), loan.MonthlyPayment(), loan.Purpose(),
		loan.Status().String(), nullStr(loan.ApproverID()), nullTime(loan.ApprovedAt()),
		nullStr(loan.RejectedBy()), loan.RejectionReason(),
		nullTime(loan.StartDate()), nullTime(loan.DueDate()), nullTime(loan.LastPaymentAt()),
		loan.Version(), loan.CreatedAt(), loan.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan %s was modified concurrently: %w", loan.ID(), valueobject.ErrConflict)
	}
	return nil
}

// FindByID retrieves a loan by id.
func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	return r.scanOne(ctx, id, query, id)
}

// FindByIDForBorrower retrieves a loan by id, failing with not-found when it
// does not belong to the borrower. Ownership mismatch is deliberately
// indistinguishable from absence.
func (r *LoanRepo) FindByIDForBorrower(ctx context.Context, borrowerID, id string) (model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 AND borrower_id = $2`
	return r.scanOne(ctx, id, query, id, borrowerID)
}

// FindByBorrowerID retrieves all loans for a borrower, newest first.
func (r *LoanRepo) FindByBorrowerID(ctx context.Context, borrowerID string) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE borrower_id = $1 ORDER BY created_at DESC`
	return r.scanMany(ctx, query, borrowerID)
}

// List retrieves loans matching the admin filter, newest first.
func (r *LoanRepo) List(ctx context.Context, filter port.LoanFilter) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE 1=1`
	args := []any{}
	if filter.Status != nil {
		args = append(args, filter.Status.String())
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (borrower_name ILIKE $%d OR borrower_id ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY created_at DESC"
	return r.scanMany(ctx, query, args...)
}

// Stats aggregates the portfolio summary in a single round trip per metric.
func (r *LoanRepo) Stats(ctx context.Context) (model.LoanStats, error) {
	stats := model.LoanStats{
		CountByStatus:    map[string]int64{},
		TotalOutstanding: decimal.Zero,
		TotalDisbursed:   decimal.Zero,
	}

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM loans GROUP BY status`)
	if err != nil {
		return model.LoanStats{}, fmt.Errorf("query loan counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return model.LoanStats{}, fmt.Errorf("scan loan count: %w", err)
		}
		stats.CountByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return model.LoanStats{}, fmt.Errorf("iterate loan counts: %w", err)
	}

	query := `
		SELECT
			COALESCE(SUM(outstanding_balance) FILTER (WHERE status IN ('ACTIVE')), 0),
			COALESCE(SUM(principal) FILTER (WHERE status IN ('ACTIVE', 'PAID_OFF')), 0)
		FROM loans
	`
	if err := r.db.QueryRow(ctx, query).Scan(&stats.TotalOutstanding, &stats.TotalDisbursed); err != nil {
		return model.LoanStats{}, fmt.Errorf("query loan totals: %w", err)
	}

	return stats, nil
}

// Delete removes a loan row. Only the cancel-while-pending path calls this.
func (r *LoanRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return valueobject.NewNotFoundError("loan", id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// scan helpers
// ---------------------------------------------------------------------------

func (r *LoanRepo) scanOne(ctx context.Context, id, query string, args ...any) (model.Loan, error) {
	loan, err := scanLoanRow(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Loan{}, valueobject.NewNotFoundError("loan", id)
	}
	return loan, err
}

func (r *LoanRepo) scanMany(ctx context.Context, query string, args ...any) ([]model.Loan, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		loan, err := scanLoanRow(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLoanRow(s scannable) (model.Loan, error) {
	var (
		id, borrowerID, borrowerName           string
		principal, outstandingBalance          decimal.Decimal
		currency                               string
		interestRate                           decimal.Decimal
		termMonths                             int
		monthlyPayment                         decimal.Decimal
		purpose, statusStr                     string
		approverID, rejectedBy                 *string
		rejectionReason                        string
		approvedAt, startDate, dueDate, lastAt *time.Time
		version                                int
		createdAt, updatedAt                   time.Time
	)

	err := s.Scan(
		&id, &borrowerID, &borrowerName, &principal, &outstandingBalance,
		&currency, &interestRate, &termMonths, &monthlyPayment, &purpose,
		&statusStr, &approverID, &approvedAt, &rejectedBy, &rejectionReason,
		&startDate, &dueDate, &lastAt,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Loan{}, err
		}
		return model.Loan{}, fmt.Errorf("scan loan: %w", err)
	}

	status, err := valueobject.NewLoanStatus(statusStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan status: %w", err)
	}

	return model.ReconstructLoan(
		id, borrowerID, borrowerName,
		principal, outstandingBalance,
		currency, interestRate, termMonths, monthlyPayment, purpose,
		status,
		derefStr(approverID), derefTime(approvedAt),
		derefStr(rejectedBy), rejectionReason,
		derefTime(startDate), derefTime(dueDate), derefTime(lastAt),
		version, createdAt, updatedAt,
	), nil
}

// nullStr maps an empty string to SQL NULL.
func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullTime maps a zero time to SQL NULL.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
