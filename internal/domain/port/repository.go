package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/uhicoop/loan-service/internal/domain/event"
	"github.com/uhicoop/loan-service/internal/domain/model"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// LoanFilter narrows admin loan listings.
type LoanFilter struct {
	// Status, when set, restricts results to loans in that status.
	Status *valueobject.LoanStatus
	// Search matches case-insensitively against borrower name and staff id.
	Search string
}

// LoanRepository persists and retrieves loans.
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, id string) (model.Loan, error)
	// FindByIDForBorrower behaves like FindByID but also fails with a
	// not-found error when the loan does not belong to the borrower.
	FindByIDForBorrower(ctx context.Context, borrowerID, id string) (model.Loan, error)
	FindByBorrowerID(ctx context.Context, borrowerID string) ([]model.Loan, error)
	List(ctx context.Context, filter LoanFilter) ([]model.Loan, error)
	Stats(ctx context.Context) (model.LoanStats, error)
	// Delete removes a loan record. Valid only for the cancel-while-pending
	// path; every other lifecycle change is a status transition.
	Delete(ctx context.Context, id string) error
}

// InvoiceRepository persists and retrieves payment invoices.
type InvoiceRepository interface {
	Save(ctx context.Context, inv model.Invoice) error
	FindByNumber(ctx context.Context, number string) (model.Invoice, error)
	FindByLoanID(ctx context.Context, loanID string) ([]model.Invoice, error)
	// SumPendingByLoanID totals the loan's unsettled invoices, used to stop
	// concurrent pending invoices from jointly exceeding the balance.
	SumPendingByLoanID(ctx context.Context, loanID string) (decimal.Decimal, error)
	// FindPendingDueWithin returns pending invoices whose due date falls
	// between now and the horizon, for the reminder sweep.
	FindPendingDueWithin(ctx context.Context, now, horizon time.Time) ([]model.Invoice, error)
}

// PaymentRepository appends and retrieves payment ledger rows.
type PaymentRepository interface {
	Append(ctx context.Context, p model.Payment) error
	FindByLoanID(ctx context.Context, loanID string) ([]model.Payment, error)
}

// ---------------------------------------------------------------------------
// Unit of work
// ---------------------------------------------------------------------------

// Repositories bundles the repository set bound to one transaction scope.
type Repositories struct {
	Loans    LoanRepository
	Invoices InvoiceRepository
	Payments PaymentRepository
}

// UnitOfWork runs a function against a transactional repository set. The
// whole function commits or rolls back as one atomic unit; every
// read-modify-write on a loan and its invoices/payments goes through here.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// External collaborator ports
// ---------------------------------------------------------------------------

// StaffMember is the identity record resolved from the staff directory.
type StaffMember struct {
	StaffID   string
	FirstName string
	LastName  string
	Email     string
}

// FullName returns the member's display name.
func (m StaffMember) FullName() string {
	return m.FirstName + " " + m.LastName
}

// StaffDirectory resolves staff identity fields for invoices and
// notification recipients.
type StaffDirectory interface {
	Get(ctx context.Context, staffID string) (StaffMember, error)
}

// NotificationDispatcher delivers lifecycle notifications. Delivery is
// best-effort: implementations may return an error for logging, but callers
// must never fail a committed transition because of one.
type NotificationDispatcher interface {
	Send(ctx context.Context, to, templateID string, data map[string]any) error
}

// PaymentIntent is the gateway handle for an online repayment.
type PaymentIntent struct {
	IntentID     string
	ClientSecret string
}

// PaymentGatewayClient creates payment intents with the external gateway.
// Calls happen before any state mutation and carry an explicit timeout.
type PaymentGatewayClient interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (PaymentIntent, error)
}

// ReportExporter renders a loan's payment history as a downloadable
// document. Read-only; no effect on loan state.
type ReportExporter interface {
	RenderLoanHistory(ctx context.Context, loan model.Loan, payments []model.Payment) ([]byte, error)
}
