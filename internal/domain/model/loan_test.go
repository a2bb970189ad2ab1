package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhicoop/loan-service/internal/domain/valueobject"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newPendingLoan(t *testing.T) Loan {
	t.Helper()
	loan, err := NewLoan(
		"STAFF001", "Ada Lovelace",
		decimal.NewFromInt(5_000), "USD",
		decimal.NewFromInt(5), 12,
		"laptop", testNow,
	)
	require.NoError(t, err)
	return loan
}

func newActiveLoan(t *testing.T) Loan {
	t.Helper()
	loan, err := newPendingLoan(t).Approve("ADMIN01", testNow)
	require.NoError(t, err)
	loan, err = loan.Activate(testNow)
	require.NoError(t, err)
	return loan
}

func TestMonthlyRepayment(t *testing.T) {
	// 5000 over 12 months at 5% flat annual: 5000 * 1.05 / 12 = 437.50
	monthly := MonthlyRepayment(decimal.NewFromInt(5_000), decimal.NewFromInt(5), 12)
	assert.True(t, monthly.Equal(decimal.RequireFromString("437.50")),
		"expected 437.50, got %s", monthly)

	// 24-month term accrues two years of simple interest.
	monthly = MonthlyRepayment(decimal.NewFromInt(5_000), decimal.NewFromInt(5), 24)
	assert.True(t, monthly.Equal(decimal.RequireFromString("229.17")),
		"expected 229.17, got %s", monthly)
}

func TestLoan_Creation(t *testing.T) {
	loan := newPendingLoan(t)

	assert.NotEmpty(t, loan.ID())
	assert.Equal(t, "STAFF001", loan.BorrowerID())
	assert.Equal(t, "Ada Lovelace", loan.BorrowerName())
	assert.True(t, loan.Principal().Equal(decimal.NewFromInt(5_000)))
	assert.True(t, loan.OutstandingBalance().Equal(decimal.NewFromInt(5_000)))
	assert.True(t, loan.MonthlyPayment().Equal(decimal.RequireFromString("437.50")))
	assert.True(t, loan.Status().Equal(valueobject.LoanStatusPending))
	assert.Equal(t, 1, loan.Version())
	assert.Len(t, loan.DomainEvents(), 1)
}

func TestLoan_Creation_Errors(t *testing.T) {
	cases := []struct {
		name       string
		borrowerID string
		amount     decimal.Decimal
		currency   string
		rate       decimal.Decimal
		term       int
	}{
		{"missing borrower", "", decimal.NewFromInt(100), "USD", decimal.NewFromInt(5), 12},
		{"zero amount", "STAFF001", decimal.Zero, "USD", decimal.NewFromInt(5), 12},
		{"negative amount", "STAFF001", decimal.NewFromInt(-50), "USD", decimal.NewFromInt(5), 12},
		{"missing currency", "STAFF001", decimal.NewFromInt(100), "", decimal.NewFromInt(5), 12},
		{"zero term", "STAFF001", decimal.NewFromInt(100), "USD", decimal.NewFromInt(5), 0},
		{"negative rate", "STAFF001", decimal.NewFromInt(100), "USD", decimal.NewFromInt(-1), 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoan(tc.borrowerID, "", tc.amount, tc.currency, tc.rate, tc.term, "", testNow)
			assert.ErrorIs(t, err, valueobject.ErrValidation)
		})
	}
}

func TestLoan_Approve(t *testing.T) {
	loan := newPendingLoan(t)

	approved, err := loan.Approve("ADMIN01", testNow)
	require.NoError(t, err)

	assert.True(t, approved.Status().Equal(valueobject.LoanStatusApproved))
	assert.Equal(t, "ADMIN01", approved.ApproverID())
	assert.Equal(t, testNow, approved.ApprovedAt())
	assert.Equal(t, testNow.AddDate(0, 12, 0), approved.DueDate())

	// The original copy is untouched.
	assert.True(t, loan.Status().Equal(valueobject.LoanStatusPending))
}

func TestLoan_Approve_AlreadyDecided(t *testing.T) {
	approved, err := newPendingLoan(t).Approve("ADMIN01", testNow)
	require.NoError(t, err)

	_, err = approved.Approve("ADMIN02", testNow)
	require.ErrorIs(t, err, valueobject.ErrConflict)

	var conflict *valueobject.StatusConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "APPROVED", conflict.Current)
	assert.Equal(t, "APPROVED", conflict.Requested)
}

func TestLoan_Reject(t *testing.T) {
	rejected, err := newPendingLoan(t).Reject("ADMIN01", "insufficient tenure", testNow)
	require.NoError(t, err)

	assert.True(t, rejected.Status().Equal(valueobject.LoanStatusRejected))
	assert.Equal(t, "ADMIN01", rejected.RejectedBy())
	assert.Equal(t, "insufficient tenure", rejected.RejectionReason())
	assert.True(t, rejected.Status().IsTerminal())

	_, err = rejected.Approve("ADMIN01", testNow)
	assert.ErrorIs(t, err, valueobject.ErrConflict)
}

func TestLoan_Activate(t *testing.T) {
	loan := newPendingLoan(t)

	_, err := loan.Activate(testNow)
	assert.ErrorIs(t, err, valueobject.ErrConflict, "cannot activate a pending loan")

	approved, err := loan.Approve("ADMIN01", testNow)
	require.NoError(t, err)

	active, err := approved.Activate(testNow)
	require.NoError(t, err)
	assert.True(t, active.Status().Equal(valueobject.LoanStatusActive))
	assert.Equal(t, testNow, active.StartDate())
}

func TestLoan_CancellableBy(t *testing.T) {
	loan := newPendingLoan(t)

	require.NoError(t, loan.CancellableBy("STAFF001"))

	err := loan.CancellableBy("STAFF999")
	assert.ErrorIs(t, err, valueobject.ErrNotFound, "foreign borrower must not learn the loan exists")

	approved, err := loan.Approve("ADMIN01", testNow)
	require.NoError(t, err)
	assert.ErrorIs(t, approved.CancellableBy("STAFF001"), valueobject.ErrConflict)
}

func TestLoan_ApplyPayment(t *testing.T) {
	loan := newActiveLoan(t)

	paid, err := loan.ApplyPayment(decimal.NewFromInt(500), "INV-1", "tx-1", testNow)
	require.NoError(t, err)

	assert.True(t, paid.OutstandingBalance().Equal(decimal.NewFromInt(4_500)),
		"expected 4500, got %s", paid.OutstandingBalance())
	assert.True(t, paid.Status().Equal(valueobject.LoanStatusActive))
	assert.Equal(t, testNow, paid.LastPaymentAt())
}

func TestLoan_ApplyPayment_FullPayoff(t *testing.T) {
	loan := newActiveLoan(t)

	paid, err := loan.ApplyPayment(decimal.NewFromInt(5_000), "INV-1", "tx-1", testNow)
	require.NoError(t, err)

	assert.True(t, paid.OutstandingBalance().Equal(decimal.Zero))
	assert.True(t, paid.Status().Equal(valueobject.LoanStatusPaidOff))
	assert.True(t, paid.Status().IsTerminal())
}

func TestLoan_ApplyPayment_OverpaymentClampsAtZero(t *testing.T) {
	loan := newActiveLoan(t)

	paid, err := loan.ApplyPayment(decimal.NewFromInt(6_000), "INV-1", "tx-1", testNow)
	require.NoError(t, err)

	assert.True(t, paid.OutstandingBalance().Equal(decimal.Zero))
	assert.True(t, paid.Status().Equal(valueobject.LoanStatusPaidOff))
}

func TestLoan_ApplyPayment_Errors(t *testing.T) {
	t.Run("not active", func(t *testing.T) {
		_, err := newPendingLoan(t).ApplyPayment(decimal.NewFromInt(100), "INV-1", "tx-1", testNow)
		assert.ErrorIs(t, err, valueobject.ErrConflict)
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := newActiveLoan(t).ApplyPayment(decimal.Zero, "INV-1", "tx-1", testNow)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})
}

func TestLoan_ClearEvents(t *testing.T) {
	loan := newActiveLoan(t)
	require.NotEmpty(t, loan.DomainEvents())
	assert.Empty(t, loan.ClearEvents().DomainEvents())
}
