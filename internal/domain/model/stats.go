package model

import (
	"github.com/shopspring/decimal"
)

// LoanStats is a portfolio summary for the admin dashboard.
type LoanStats struct {
	// CountByStatus maps a loan status string to the number of loans in it.
	CountByStatus map[string]int64
	// TotalOutstanding is the sum of outstanding balances across active loans.
	TotalOutstanding decimal.Decimal
	// TotalDisbursed is the sum of principals of loans that were activated.
	TotalDisbursed decimal.Decimal
}
