// Package memory provides an in-process implementation of the repository
// ports and unit of work. It backs tests and local development; the
// transactional contract (all-or-nothing per WithinTx call) matches the
// PostgreSQL implementation via snapshot rollback.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/uhicoop/loan-service/internal/domain/model"
	"github.com/uhicoop/loan-service/internal/domain/port"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
)

// Store holds all aggregates behind one mutex.
type Store struct {
	mu       sync.Mutex
	loans    map[string]model.Loan
	invoices map[string]model.Invoice
	payments []model.Payment
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		loans:    map[string]model.Loan{},
		invoices: map[string]model.Invoice{},
	}
}

// Repositories returns the repository set bound to this store.
func (s *Store) Repositories() port.Repositories {
	return port.Repositories{
		Loans:    &loanRepo{s: s},
		Invoices: &invoiceRepo{s: s},
		Payments: &paymentRepo{s: s},
	}
}

// WithinTx implements port.UnitOfWork. The store lock is held for the whole
// callback, and a failing callback restores the pre-call snapshot, so the
// call is atomic and serialized like a database transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos port.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapLoans := make(map[string]model.Loan, len(s.loans))
	for k, v := range s.loans {
		snapLoans[k] = v
	}
	snapInvoices := make(map[string]model.Invoice, len(s.invoices))
	for k, v := range s.invoices {
		snapInvoices[k] = v
	}
	snapPayments := append([]model.Payment(nil), s.payments...)

	repos := port.Repositories{
		Loans:    &loanRepo{s: s, locked: true},
		Invoices: &invoiceRepo{s: s, locked: true},
		Payments: &paymentRepo{s: s, locked: true},
	}
	if err := fn(ctx, repos); err != nil {
		s.loans = snapLoans
		s.invoices = snapInvoices
		s.payments = snapPayments
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// loan repository
// ---------------------------------------------------------------------------

type loanRepo struct {
	s      *Store
	locked bool
}

func (r *loanRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *loanRepo) Save(_ context.Context, loan model.Loan) error {
	defer r.lock()()
	r.s.loans[loan.ID()] = loan.ClearEvents()
	return nil
}

func (r *loanRepo) FindByID(_ context.Context, id string) (model.Loan, error) {
	defer r.lock()()
	loan, ok := r.s.loans[id]
	if !ok {
		return model.Loan{}, valueobject.NewNotFoundError("loan", id)
	}
	return loan, nil
}

func (r *loanRepo) FindByIDForBorrower(ctx context.Context, borrowerID, id string) (model.Loan, error) {
	loan, err := r.FindByID(ctx, id)
	if err != nil {
		return model.Loan{}, err
	}
	if loan.BorrowerID() != borrowerID {
		return model.Loan{}, valueobject.NewNotFoundError("loan", id)
	}
	return loan, nil
}

func (r *loanRepo) FindByBorrowerID(_ context.Context, borrowerID string) ([]model.Loan, error) {
	defer r.lock()()
	var loans []model.Loan
	for _, loan := range r.s.loans {
		if loan.BorrowerID() == borrowerID {
			loans = append(loans, loan)
		}
	}
	sortLoans(loans)
	return loans, nil
}

func (r *loanRepo) List(_ context.Context, filter port.LoanFilter) ([]model.Loan, error) {
	defer r.lock()()
	var loans []model.Loan
	for _, loan := range r.s.loans {
		if filter.Status != nil && !loan.Status().Equal(*filter.Status) {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(loan.BorrowerName()), needle) &&
				!strings.Contains(strings.ToLower(loan.BorrowerID()), needle) {
				continue
			}
		}
		loans = append(loans, loan)
	}
	sortLoans(loans)
	return loans, nil
}

func (r *loanRepo) Stats(_ context.Context) (model.LoanStats, error) {
	defer r.lock()()
	stats := model.LoanStats{
		CountByStatus:    map[string]int64{},
		TotalOutstanding: decimal.Zero,
		TotalDisbursed:   decimal.Zero,
	}
	for _, loan := range r.s.loans {
		stats.CountByStatus[loan.Status().String()]++
		switch {
		case loan.Status().Equal(valueobject.LoanStatusActive):
			stats.TotalOutstanding = stats.TotalOutstanding.Add(loan.OutstandingBalance())
			stats.TotalDisbursed = stats.TotalDisbursed.Add(loan.Principal())
		case loan.Status().Equal(valueobject.LoanStatusPaidOff):
			stats.TotalDisbursed = stats.TotalDisbursed.Add(loan.Principal())
		}
	}
	return stats, nil
}

func (r *loanRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	if _, ok := r.s.loans[id]; !ok {
		return valueobject.NewNotFoundError("loan", id)
	}
	delete(r.s.loans, id)
	return nil
}

func sortLoans(loans []model.Loan) {
	sort.Slice(loans, func(i, j int) bool {
		return loans[i].CreatedAt().After(loans[j].CreatedAt())
	})
}

// ---------------------------------------------------------------------------
// invoice repository
// ---------------------------------------------------------------------------

type invoiceRepo struct {
	s      *Store
	locked bool
}

func (r *invoiceRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *invoiceRepo) Save(_ context.Context, inv model.Invoice) error {
	defer r.lock()()
	r.s.invoices[inv.ID()] = inv.ClearEvents()
	return nil
}

func (r *invoiceRepo) FindByNumber(_ context.Context, number string) (model.Invoice, error) {
	defer r.lock()()
	for _, inv := range r.s.invoices {
		if inv.Number() == number {
			return inv, nil
		}
	}
	return model.Invoice{}, valueobject.NewNotFoundError("invoice", number)
}

func (r *invoiceRepo) FindByLoanID(_ context.Context, loanID string) ([]model.Invoice, error) {
	defer r.lock()()
	var invoices []model.Invoice
	for _, inv := range r.s.invoices {
		if inv.LoanID() == loanID {
			invoices = append(invoices, inv)
		}
	}
	sort.Slice(invoices, func(i, j int) bool {
		return invoices[i].CreatedAt().After(invoices[j].CreatedAt())
	})
	return invoices, nil
}

func (r *invoiceRepo) SumPendingByLoanID(_ context.Context, loanID string) (decimal.Decimal, error) {
	defer r.lock()()
	sum := decimal.Zero
	for _, inv := range r.s.invoices {
		if inv.LoanID() == loanID && inv.Status().Equal(valueobject.InvoiceStatusPending) {
			sum = sum.Add(inv.Total())
		}
	}
	return sum, nil
}

func (r *invoiceRepo) FindPendingDueWithin(_ context.Context, now, horizon time.Time) ([]model.Invoice, error) {
	defer r.lock()()
	var invoices []model.Invoice
	for _, inv := range r.s.invoices {
		if !inv.Status().Equal(valueobject.InvoiceStatusPending) {
			continue
		}
		if inv.DueDate().Before(now) || inv.DueDate().After(horizon) {
			continue
		}
		invoices = append(invoices, inv)
	}
	sort.Slice(invoices, func(i, j int) bool {
		return invoices[i].DueDate().Before(invoices[j].DueDate())
	})
	return invoices, nil
}

// ---------------------------------------------------------------------------
// payment ledger
// ---------------------------------------------------------------------------

type paymentRepo struct {
	s      *Store
	locked bool
}

func (r *paymentRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *paymentRepo) Append(_ context.Context, p model.Payment) error {
	defer r.lock()()
	r.s.payments = append(r.s.payments, p)
	return nil
}

func (r *paymentRepo) FindByLoanID(_ context.Context, loanID string) ([]model.Payment, error) {
	defer r.lock()()
	var payments []model.Payment
	for _, p := range r.s.payments {
		if p.LoanID == loanID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}
