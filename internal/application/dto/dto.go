package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// ApplyLoanRequest carries the data for a new loan application.
type ApplyLoanRequest struct {
	BorrowerID string          `json:"borrower_id"`
	Amount     decimal.Decimal `json:"amount"`
	TermMonths int             `json:"term_months"`
	Purpose    string          `json:"purpose"`
}

// ApproveLoanRequest identifies a pending loan to approve.
type ApproveLoanRequest struct {
	LoanID     string `json:"loan_id"`
	ApproverID string `json:"approver_id"`
}

// RejectLoanRequest identifies a pending loan to reject.
type RejectLoanRequest struct {
	LoanID     string `json:"loan_id"`
	ApproverID string `json:"approver_id"`
	Reason     string `json:"reason,omitempty"`
}

// BulkApproveRequest carries a set of loan ids to approve independently.
type BulkApproveRequest struct {
	LoanIDs    []string `json:"loan_ids"`
	ApproverID string   `json:"approver_id"`
}

// ActivateLoanRequest identifies an approved loan to activate.
type ActivateLoanRequest struct {
	LoanID string `json:"loan_id"`
}

// CancelApplicationRequest identifies a pending application to discard.
type CancelApplicationRequest struct {
	BorrowerID string `json:"borrower_id"`
	LoanID     string `json:"loan_id"`
}

// GenerateInvoiceRequest carries the data for a new repayment invoice.
type GenerateInvoiceRequest struct {
	BorrowerID string          `json:"borrower_id"`
	LoanID     string          `json:"loan_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// PaymentEvent is a payment confirmation delivered by the external payment
// channel (webhook or gateway poll). Deliveries may be retried.
type PaymentEvent struct {
	InvoiceNumber  string          `json:"invoice_number"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionRef string          `json:"transaction_ref"`
	Timestamp      time.Time       `json:"timestamp"`
}

// ListLoansRequest narrows the admin loan listing.
type ListLoansRequest struct {
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
}

// CreateIntentRequest starts an online repayment with the gateway.
type CreateIntentRequest struct {
	BorrowerID string          `json:"borrower_id"`
	LoanID     string          `json:"loan_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// LoanResponse is the external representation of a loan.
type LoanResponse struct {
	ID                 string          `json:"id"`
	BorrowerID         string          `json:"borrower_id"`
	BorrowerName       string          `json:"borrower_name,omitempty"`
	Principal          decimal.Decimal `json:"principal"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	Currency           string          `json:"currency"`
	InterestRate       decimal.Decimal `json:"interest_rate"`
	TermMonths         int             `json:"term_months"`
	MonthlyPayment     decimal.Decimal `json:"monthly_payment"`
	Purpose            string          `json:"purpose,omitempty"`
	Status             string          `json:"status"`
	ApproverID         string          `json:"approver_id,omitempty"`
	ApprovedAt         *time.Time      `json:"approved_at,omitempty"`
	RejectionReason    string          `json:"rejection_reason,omitempty"`
	StartDate          *time.Time      `json:"start_date,omitempty"`
	DueDate            *time.Time      `json:"due_date,omitempty"`
	LastPaymentAt      *time.Time      `json:"last_payment_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// BankTransferDetails are the institution's static settlement instructions
// printed on every invoice.
type BankTransferDetails struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

// InvoiceProjection is the payer-facing view of a generated invoice,
// combining the stored invoice with borrower identity and bank details.
type InvoiceProjection struct {
	ID            string              `json:"id"`
	LoanID        string              `json:"loan_id"`
	InvoiceNumber string              `json:"invoice_number"`
	PaymentPIN    string              `json:"payment_pin"`
	Principal     decimal.Decimal     `json:"principal"`
	Tax           decimal.Decimal     `json:"tax"`
	Fee           decimal.Decimal     `json:"fee"`
	Total         decimal.Decimal     `json:"total"`
	Currency      string              `json:"currency"`
	PaymentCode   string              `json:"payment_code"`
	DueDate       time.Time           `json:"due_date"`
	Status        string              `json:"status"`
	StaffID       string              `json:"staff_id"`
	BorrowerName  string              `json:"borrower_name"`
	BorrowerEmail string              `json:"borrower_email"`
	BankTransfer  BankTransferDetails `json:"bank_transfer"`
	GeneratedAt   time.Time           `json:"generated_at"`
}

// BulkApproveResult is the per-id outcome of a bulk approval.
type BulkApproveResult struct {
	LoanID string `json:"loan_id"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// LoanStatsResponse is the portfolio summary for the admin dashboard.
type LoanStatsResponse struct {
	CountByStatus    map[string]int64 `json:"count_by_status"`
	TotalOutstanding decimal.Decimal  `json:"total_outstanding"`
	TotalDisbursed   decimal.Decimal  `json:"total_disbursed"`
}

// PaymentIntentResponse is the gateway handle returned for an online
// repayment.
type PaymentIntentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
}
