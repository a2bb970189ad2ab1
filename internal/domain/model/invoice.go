package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uhicoop/loan-service/internal/domain/event"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Invoice aggregate
// ---------------------------------------------------------------------------

// Invoice is a request for a specific payment amount against a loan's
// balance. It is immutable; the only transition is PENDING -> PAID, which
// happens exactly once.
type Invoice struct {
	id             string
	loanID         string
	number         string
	paymentPIN     string
	principal      decimal.Decimal
	tax            decimal.Decimal
	fee            decimal.Decimal
	total          decimal.Decimal
	currency       string
	paymentCode    string
	dueDate        time.Time
	status         valueobject.InvoiceStatus
	transactionRef string
	generatedBy    string
	paidAt         time.Time
	createdAt      time.Time
	updatedAt      time.Time
	domainEvents   []event.DomainEvent
}

// invoiceDueDays is the payment window granted on every generated invoice.
const invoiceDueDays = 7

// NewInvoice creates a pending invoice. The total is always computed as
// principal + tax + fee, never supplied by the caller.
func NewInvoice(
	loanID, staffID string,
	principal, tax, fee decimal.Decimal,
	currency string,
	generatedBy string,
	now time.Time,
) (Invoice, error) {
	if loanID == "" {
		return Invoice{}, valueobject.NewValidationError("loan_id", "is required")
	}
	if principal.LessThanOrEqual(decimal.Zero) {
		return Invoice{}, valueobject.NewValidationError("amount", "must be positive")
	}
	if tax.IsNegative() || fee.IsNegative() {
		return Invoice{}, valueobject.NewValidationError("charges", "must not be negative")
	}

	pin, err := valueobject.NewPaymentPIN()
	if err != nil {
		return Invoice{}, err
	}

	id := uuid.New().String()
	number := valueobject.NewInvoiceNumber(now)
	total := principal.Add(tax).Add(fee)

	inv := Invoice{
		id:          id,
		loanID:      loanID,
		number:      number,
		paymentPIN:  pin,
		principal:   principal,
		tax:         tax,
		fee:         fee,
		total:       total,
		currency:    currency,
		paymentCode: valueobject.BuildPaymentCode(staffID, loanID, now.Year()),
		dueDate:     now.AddDate(0, 0, invoiceDueDays),
		status:      valueobject.InvoiceStatusPending,
		generatedBy: generatedBy,
		createdAt:   now,
		updatedAt:   now,
	}

	inv.domainEvents = append(inv.domainEvents, event.NewInvoiceIssued(
		id, loanID, number, total, currency, inv.dueDate,
	))

	return inv, nil
}

// ReconstructInvoice rebuilds an Invoice from persistence.
func ReconstructInvoice(
	id, loanID, number, paymentPIN string,
	principal, tax, fee, total decimal.Decimal,
	currency, paymentCode string,
	dueDate time.Time,
	status valueobject.InvoiceStatus,
	transactionRef, generatedBy string,
	paidAt, createdAt, updatedAt time.Time,
) Invoice {
	return Invoice{
		id:             id,
		loanID:         loanID,
		number:         number,
		paymentPIN:     paymentPIN,
		principal:      principal,
		tax:            tax,
		fee:            fee,
		total:          total,
		currency:       currency,
		paymentCode:    paymentCode,
		dueDate:        dueDate,
		status:         status,
		transactionRef: transactionRef,
		generatedBy:    generatedBy,
		paidAt:         paidAt,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// MarkPaid transitions PENDING -> PAID, recording the external transaction
// reference. PAID is terminal; a second call is a status conflict. Callers
// that need duplicate delivery to be a no-op must check IsPaid first, inside
// the same transaction.
func (i Invoice) MarkPaid(transactionRef string, now time.Time) (Invoice, error) {
	if !i.status.Equal(valueobject.InvoiceStatusPending) {
		return i, valueobject.NewStatusConflictError(i.status.String(), valueobject.InvoiceStatusPaid.String())
	}
	next := i
	next.status = valueobject.InvoiceStatusPaid
	next.transactionRef = transactionRef
	next.paidAt = now
	next.updatedAt = now
	next.domainEvents = copyEvents(i.domainEvents)
	return next, nil
}

// IsPaid reports whether the invoice has already been settled.
func (i Invoice) IsPaid() bool {
	return i.status.Equal(valueobject.InvoiceStatusPaid)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (i Invoice) ID() string                        { return i.id }
func (i Invoice) LoanID() string                    { return i.loanID }
func (i Invoice) Number() string                    { return i.number }
func (i Invoice) PaymentPIN() string                { return i.paymentPIN }
func (i Invoice) Principal() decimal.Decimal        { return i.principal }
func (i Invoice) Tax() decimal.Decimal              { return i.tax }
func (i Invoice) Fee() decimal.Decimal              { return i.fee }
func (i Invoice) Total() decimal.Decimal            { return i.total }
func (i Invoice) Currency() string                  { return i.currency }
func (i Invoice) PaymentCode() string               { return i.paymentCode }
func (i Invoice) DueDate() time.Time                { return i.dueDate }
func (i Invoice) Status() valueobject.InvoiceStatus { return i.status }
func (i Invoice) TransactionRef() string            { return i.transactionRef }
func (i Invoice) GeneratedBy() string               { return i.generatedBy }
func (i Invoice) PaidAt() time.Time                 { return i.paidAt }
func (i Invoice) CreatedAt() time.Time              { return i.createdAt }
func (i Invoice) UpdatedAt() time.Time              { return i.updatedAt }
func (i Invoice) DomainEvents() []event.DomainEvent { return i.domainEvents }

// ClearEvents returns a copy with an empty event list.
func (i Invoice) ClearEvents() Invoice {
	next := i
	next.domainEvents = nil
	return next
}
