package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/uhicoop/loan-service/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// ---------------------------------------------------------------------------
// Loan lifecycle events
// ---------------------------------------------------------------------------

// LoanApplied is raised when a new loan application enters the system.
type LoanApplied struct {
	events.BaseEvent
	BorrowerID     string          `json:"borrower_id"`
	Principal      decimal.Decimal `json:"principal"`
	Currency       string          `json:"currency"`
	TermMonths     int             `json:"term_months"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	Purpose        string          `json:"purpose"`
}

func NewLoanApplied(
	loanID, borrowerID string,
	principal decimal.Decimal, currency string,
	termMonths int, monthlyPayment decimal.Decimal, purpose string,
) LoanApplied {
	return LoanApplied{
		BaseEvent:      events.NewBaseEvent("loan.applied", loanID, "Loan"),
		BorrowerID:     borrowerID,
		Principal:      principal,
		Currency:       currency,
		TermMonths:     termMonths,
		MonthlyPayment: monthlyPayment,
		Purpose:        purpose,
	}
}

// LoanApproved is raised when a pending loan is approved.
type LoanApproved struct {
	events.BaseEvent
	BorrowerID string    `json:"borrower_id"`
	ApproverID string    `json:"approver_id"`
	DueDate    time.Time `json:"due_date"`
}

func NewLoanApproved(loanID, borrowerID, approverID string, dueDate time.Time) LoanApproved {
	return LoanApproved{
		BaseEvent:  events.NewBaseEvent("loan.approved", loanID, "Loan"),
		BorrowerID: borrowerID,
		ApproverID: approverID,
		DueDate:    dueDate,
	}
}

// LoanRejected is raised when a pending loan is rejected.
type LoanRejected struct {
	events.BaseEvent
	BorrowerID string `json:"borrower_id"`
	ApproverID string `json:"approver_id"`
	Reason     string `json:"reason"`
}

func NewLoanRejected(loanID, borrowerID, approverID, reason string) LoanRejected {
	return LoanRejected{
		BaseEvent:  events.NewBaseEvent("loan.rejected", loanID, "Loan"),
		BorrowerID: borrowerID,
		ApproverID: approverID,
		Reason:     reason,
	}
}

// LoanActivated is raised when an approved loan starts running.
type LoanActivated struct {
	events.BaseEvent
	BorrowerID string    `json:"borrower_id"`
	StartDate  time.Time `json:"start_date"`
}

func NewLoanActivated(loanID, borrowerID string, startDate time.Time) LoanActivated {
	return LoanActivated{
		BaseEvent:  events.NewBaseEvent("loan.activated", loanID, "Loan"),
		BorrowerID: borrowerID,
		StartDate:  startDate,
	}
}

// LoanPaidOff is raised when the outstanding balance reaches zero.
type LoanPaidOff struct {
	events.BaseEvent
	BorrowerID string `json:"borrower_id"`
}

func NewLoanPaidOff(loanID, borrowerID string) LoanPaidOff {
	return LoanPaidOff{
		BaseEvent:  events.NewBaseEvent("loan.paid_off", loanID, "Loan"),
		BorrowerID: borrowerID,
	}
}

// ---------------------------------------------------------------------------
// Invoice and payment events
// ---------------------------------------------------------------------------

// InvoiceIssued is raised when a pending invoice is generated against a loan.
type InvoiceIssued struct {
	events.BaseEvent
	LoanID        string          `json:"loan_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	DueDate       time.Time       `json:"due_date"`
}

func NewInvoiceIssued(
	invoiceID, loanID, invoiceNumber string,
	total decimal.Decimal, currency string, dueDate time.Time,
) InvoiceIssued {
	return InvoiceIssued{
		BaseEvent:     events.NewBaseEvent("invoice.issued", invoiceID, "Invoice"),
		LoanID:        loanID,
		InvoiceNumber: invoiceNumber,
		Total:         total,
		Currency:      currency,
		DueDate:       dueDate,
	}
}

// PaymentApplied is raised when a confirmed payment reduces a loan balance.
type PaymentApplied struct {
	events.BaseEvent
	BorrowerID         string          `json:"borrower_id"`
	InvoiceNumber      string          `json:"invoice_number"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	TransactionRef     string          `json:"transaction_ref"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}

func NewPaymentApplied(
	loanID, borrowerID, invoiceNumber string,
	amount decimal.Decimal, currency, transactionRef string,
	outstandingBalance decimal.Decimal,
) PaymentApplied {
	return PaymentApplied{
		BaseEvent:          events.NewBaseEvent("loan.payment_applied", loanID, "Loan"),
		BorrowerID:         borrowerID,
		InvoiceNumber:      invoiceNumber,
		Amount:             amount,
		Currency:           currency,
		TransactionRef:     transactionRef,
		OutstandingBalance: outstandingBalance,
	}
}
