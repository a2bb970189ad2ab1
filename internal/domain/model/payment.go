package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uhicoop/loan-service/internal/domain/valueobject"
)

// Payment is one row of the append-only payment ledger: a single confirmed
// payment application against a loan. Rows are never updated after creation
// except for status verification by a separate reviewer process.
type Payment struct {
	ID        string
	LoanID    string
	InvoiceID string
	Amount    decimal.Decimal
	Reference string
	Method    string
	Status    valueobject.PaymentStatus
	CreatedAt time.Time
}

// NewVerifiedPayment builds a ledger row for a gateway-confirmed payment.
// The recorded amount is the full confirmed amount, even when the loan
// balance was clamped at zero, so overpayments remain auditable.
func NewVerifiedPayment(loanID, invoiceID string, amount decimal.Decimal, reference, method string, now time.Time) Payment {
	return Payment{
		ID:        uuid.New().String(),
		LoanID:    loanID,
		InvoiceID: invoiceID,
		Amount:    amount,
		Reference: reference,
		Method:    method,
		Status:    valueobject.PaymentStatusVerified,
		CreatedAt: now,
	}
}
