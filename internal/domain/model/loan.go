package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uhicoop/loan-service/internal/domain/event"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Loan aggregate root
// ---------------------------------------------------------------------------

// Loan is an immutable aggregate. Mutations return a new copy.
//
// A loan is created by a borrower's application in PENDING status and is
// only ever mutated through the lifecycle transitions below or through
// payment application. It is never deleted once past PENDING.
type Loan struct {
	id                 string
	borrowerID         string
	borrowerName       string
	principal          decimal.Decimal
	outstandingBalance decimal.Decimal
	currency           string
	interestRate       decimal.Decimal // simple annual rate, percent
	termMonths         int
	monthlyPayment     decimal.Decimal
	purpose            string
	status             valueobject.LoanStatus
	approverID         string
	approvedAt         time.Time
	rejectedBy         string
	rejectionReason    string
	startDate          time.Time
	dueDate            time.Time
	lastPaymentAt      time.Time
	version            int
	createdAt          time.Time
	updatedAt          time.Time
	domainEvents       []event.DomainEvent
}

// MonthlyRepayment computes the fixed monthly payment for a simple-interest
// loan: amount * (1 + rate*term/12) / term, where rate is an annual
// percentage. The result is rounded to two decimal places.
func MonthlyRepayment(principal, annualRatePercent decimal.Decimal, termMonths int) decimal.Decimal {
	term := decimal.NewFromInt(int64(termMonths))
	rate := annualRatePercent.Div(decimal.NewFromInt(100))
	factor := decimal.NewFromInt(1).Add(rate.Mul(term).Div(decimal.NewFromInt(12)))
	return principal.Mul(factor).Div(term).Round(2)
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoan creates a loan application in PENDING status with the outstanding
// balance equal to the principal.
func NewLoan(
	borrowerID, borrowerName string,
	principal decimal.Decimal,
	currency string,
	annualRatePercent decimal.Decimal,
	termMonths int,
	purpose string,
	now time.Time,
) (Loan, error) {
	if borrowerID == "" {
		return Loan{}, valueobject.NewValidationError("borrower_id", "is required")
	}
	if principal.LessThanOrEqual(decimal.Zero) {
		return Loan{}, valueobject.NewValidationError("amount", "must be positive")
	}
	if currency == "" {
		return Loan{}, valueobject.NewValidationError("currency", "is required")
	}
	if termMonths <= 0 {
		return Loan{}, valueobject.NewValidationError("term_months", "must be positive")
	}
	if annualRatePercent.IsNegative() {
		return Loan{}, valueobject.NewValidationError("interest_rate", "must not be negative")
	}

	id := uuid.New().String()
	monthly := MonthlyRepayment(principal, annualRatePercent, termMonths)

	loan := Loan{
		id:                 id,
		borrowerID:         borrowerID,
		borrowerName:       borrowerName,
		principal:          principal,
		outstandingBalance: principal,
		currency:           currency,
		interestRate:       annualRatePercent,
		termMonths:         termMonths,
		monthlyPayment:     monthly,
		purpose:            purpose,
		status:             valueobject.LoanStatusPending,
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}

	loan.domainEvents = append(loan.domainEvents, event.NewLoanApplied(
		id, borrowerID, principal, currency, termMonths, monthly, purpose,
	))

	return loan, nil
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(
	id, borrowerID, borrowerName string,
	principal, outstandingBalance decimal.Decimal,
	currency string,
	interestRate decimal.Decimal,
	termMonths int,
	monthlyPayment decimal.Decimal,
	purpose string,
	status valueobject.LoanStatus,
	approverID string, approvedAt time.Time,
	rejectedBy, rejectionReason string,
	startDate, dueDate, lastPaymentAt time.Time,
	version int,
	createdAt, updatedAt time.Time,
) Loan {
	return Loan{
		id:                 id,
		borrowerID:         borrowerID,
		borrowerName:       borrowerName,
		principal:          principal,
		outstandingBalance: outstandingBalance,
		currency:           currency,
		interestRate:       interestRate,
		termMonths:         termMonths,
		monthlyPayment:     monthlyPayment,
		purpose:            purpose,
		status:             status,
		approverID:         approverID,
		approvedAt:         approvedAt,
		rejectedBy:         rejectedBy,
		rejectionReason:    rejectionReason,
		startDate:          startDate,
		dueDate:            dueDate,
		lastPaymentAt:      lastPaymentAt,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions (each returns a new copy)
// ---------------------------------------------------------------------------

// Approve transitions PENDING -> APPROVED, recording the approver and
// setting the due date to the approval time plus the term.
func (l Loan) Approve(approverID string, now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusPending) {
		return l, valueobject.NewStatusConflictError(l.status.String(), valueobject.LoanStatusApproved.String())
	}
	if approverID == "" {
		return l, valueobject.NewValidationError("approver_id", "is required")
	}
	next := l
	next.status = valueobject.LoanStatusApproved
	next.approverID = approverID
	next.approvedAt = now
	next.dueDate = now.AddDate(0, l.termMonths, 0)
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanApproved(
		l.id, l.borrowerID, approverID, next.dueDate,
	))
	return next, nil
}

// Reject transitions PENDING -> REJECTED. Terminal.
func (l Loan) Reject(approverID, reason string, now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusPending) {
		return l, valueobject.NewStatusConflictError(l.status.String(), valueobject.LoanStatusRejected.String())
	}
	next := l
	next.status = valueobject.LoanStatusRejected
	next.rejectedBy = approverID
	next.rejectionReason = reason
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanRejected(
		l.id, l.borrowerID, approverID, reason,
	))
	return next, nil
}

// Activate transitions APPROVED -> ACTIVE and records the start date.
func (l Loan) Activate(now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusApproved) {
		return l, valueobject.NewStatusConflictError(l.status.String(), valueobject.LoanStatusActive.String())
	}
	next := l
	next.status = valueobject.LoanStatusActive
	next.startDate = now
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanActivated(l.id, l.borrowerID, now))
	return next, nil
}

// CancellableBy reports whether the given borrower may discard this loan.
// Only the original applicant may cancel, and only while still PENDING.
// This is the single path on which a loan record is removed rather than
// transitioned.
func (l Loan) CancellableBy(borrowerID string) error {
	if l.borrowerID != borrowerID {
		return valueobject.NewNotFoundError("loan", l.id)
	}
	if !l.status.Equal(valueobject.LoanStatusPending) {
		return valueobject.NewStatusConflictError(l.status.String(), "CANCELLED")
	}
	return nil
}

// ApplyPayment reduces the outstanding balance by the confirmed amount.
// An overpayment is accepted and the balance clamped at zero; the ledger
// row written by the caller keeps the full confirmed amount auditable.
// When the balance reaches zero the loan transitions to PAID_OFF.
func (l Loan) ApplyPayment(amount decimal.Decimal, invoiceNumber, transactionRef string, now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusActive) {
		return l, valueobject.NewStatusConflictError(l.status.String(), valueobject.LoanStatusActive.String())
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return l, valueobject.NewValidationError("amount", "must be positive")
	}

	next := l
	next.outstandingBalance = l.outstandingBalance.Sub(amount)
	if next.outstandingBalance.IsNegative() {
		next.outstandingBalance = decimal.Zero
	}
	next.lastPaymentAt = now
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewPaymentApplied(
		l.id, l.borrowerID, invoiceNumber, amount, l.currency, transactionRef, next.outstandingBalance,
	))

	if next.outstandingBalance.Equal(decimal.Zero) {
		next.status = valueobject.LoanStatusPaidOff
		next.domainEvents = append(next.domainEvents, event.NewLoanPaidOff(l.id, l.borrowerID))
	}

	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string                             { return l.id }
func (l Loan) BorrowerID() string                     { return l.borrowerID }
func (l Loan) BorrowerName() string                   { return l.borrowerName }
func (l Loan) Principal() decimal.Decimal             { return l.principal }
func (l Loan) OutstandingBalance() decimal.Decimal    { return l.outstandingBalance }
func (l Loan) Currency() string                       { return l.currency }
func (l Loan) InterestRate() decimal.Decimal          { return l.interestRate }
func (l Loan) TermMonths() int                        { return l.termMonths }
func (l Loan) MonthlyPayment() decimal.Decimal        { return l.monthlyPayment }
func (l Loan) Purpose() string                        { return l.purpose }
func (l Loan) Status() valueobject.LoanStatus         { return l.status }
func (l Loan) ApproverID() string                     { return l.approverID }
func (l Loan) ApprovedAt() time.Time                  { return l.approvedAt }
func (l Loan) RejectedBy() string                     { return l.rejectedBy }
func (l Loan) RejectionReason() string                { return l.rejectionReason }
func (l Loan) StartDate() time.Time                   { return l.startDate }
func (l Loan) DueDate() time.Time                     { return l.dueDate }
func (l Loan) LastPaymentAt() time.Time               { return l.lastPaymentAt }
func (l Loan) Version() int                           { return l.version }
func (l Loan) CreatedAt() time.Time                   { return l.createdAt }
func (l Loan) UpdatedAt() time.Time                   { return l.updatedAt }
func (l Loan) DomainEvents() []event.DomainEvent      { return l.domainEvents }

// ClearEvents returns a copy with an empty event list (call after publishing).
func (l Loan) ClearEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if len(src) == 0 {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
