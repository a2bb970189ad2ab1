package valueobject

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a loan.
type LoanStatus struct {
	value string
}

const (
	loanStatusPending  = "PENDING"
	loanStatusApproved = "APPROVED"
	loanStatusRejected = "REJECTED"
	loanStatusActive   = "ACTIVE"
	loanStatusPaidOff  = "PAID_OFF"
)

var (
	LoanStatusPending  = LoanStatus{value: loanStatusPending}
	LoanStatusApproved = LoanStatus{value: loanStatusApproved}
	LoanStatusRejected = LoanStatus{value: loanStatusRejected}
	LoanStatusActive   = LoanStatus{value: loanStatusActive}
	LoanStatusPaidOff  = LoanStatus{value: loanStatusPaidOff}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusPending:  LoanStatusPending,
	loanStatusApproved: LoanStatusApproved,
	loanStatusRejected: LoanStatusRejected,
	loanStatusActive:   LoanStatusActive,
	loanStatusPaidOff:  LoanStatusPaidOff,
}

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// IsTerminal reports whether no further transition is allowed from s.
func (s LoanStatus) IsTerminal() bool {
	return s.value == loanStatusRejected || s.value == loanStatusPaidOff
}

// ---------------------------------------------------------------------------
// InvoiceStatus – immutable value object
// ---------------------------------------------------------------------------

// InvoiceStatus represents the settlement stage of a payment invoice.
type InvoiceStatus struct {
	value string
}

const (
	invoiceStatusPending = "PENDING"
	invoiceStatusPaid    = "PAID"
)

var (
	InvoiceStatusPending = InvoiceStatus{value: invoiceStatusPending}
	InvoiceStatusPaid    = InvoiceStatus{value: invoiceStatusPaid}
)

var validInvoiceStatuses = map[string]InvoiceStatus{
	invoiceStatusPending: InvoiceStatusPending,
	invoiceStatusPaid:    InvoiceStatusPaid,
}

// NewInvoiceStatus creates an InvoiceStatus from a raw string.
func NewInvoiceStatus(s string) (InvoiceStatus, error) {
	v, ok := validInvoiceStatuses[s]
	if !ok {
		return InvoiceStatus{}, fmt.Errorf("invalid invoice status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s InvoiceStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s InvoiceStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s InvoiceStatus) Equal(other InvoiceStatus) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// PaymentStatus – immutable value object
// ---------------------------------------------------------------------------

// PaymentStatus represents the review stage of a payment ledger entry.
type PaymentStatus struct {
	value string
}

const (
	paymentStatusPending  = "PENDING"
	paymentStatusVerified = "VERIFIED"
)

var (
	PaymentStatusPending  = PaymentStatus{value: paymentStatusPending}
	PaymentStatusVerified = PaymentStatus{value: paymentStatusVerified}
)

var validPaymentStatuses = map[string]PaymentStatus{
	paymentStatusPending:  PaymentStatusPending,
	paymentStatusVerified: PaymentStatusVerified,
}

// NewPaymentStatus creates a PaymentStatus from a raw string.
func NewPaymentStatus(s string) (PaymentStatus, error) {
	v, ok := validPaymentStatuses[s]
	if !ok {
		return PaymentStatus{}, fmt.Errorf("invalid payment status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s PaymentStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s PaymentStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s PaymentStatus) Equal(other PaymentStatus) bool { return s.value == other.value }
