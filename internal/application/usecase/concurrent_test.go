package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhicoop/loan-service/internal/application/dto"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
)

// TestProcessPayment_ConcurrentDuplicateDeliveries spawns goroutines that all
// deliver the same payment event, the way a webhook channel retries under
// timeout. Every delivery must succeed, but the payment must apply exactly
// once: one balance movement, one ledger row, invoice paid once.
func TestProcessPayment_ConcurrentDuplicateDeliveries(t *testing.T) {
	f := newFixture(t)
	loan := f.seedLoan(t, "ACTIVE")
	inv := f.seedInvoice(t, loan, decimal.NewFromInt(500))
	uc := NewProcessPaymentUseCase(f.store, f.publisher, f.notifier, f.logger)

	evt := dto.PaymentEvent{
		InvoiceNumber:  inv.Number(),
		Amount:         decimal.NewFromInt(500),
		TransactionRef: "tx-1",
		Timestamp:      testNow.Add(time.Hour),
	}

	const deliveries = 50
	errs := make([]error, deliveries)
	var wg sync.WaitGroup
	wg.Add(deliveries)
	for i := 0; i < deliveries; i++ {
		go func(idx int) {
			defer wg.Done()
			errs[idx] = uc.Execute(context.Background(), evt)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoErrorf(t, err, "delivery %d must be acknowledged", i)
	}

	updated, err := f.repos.Loans.FindByID(context.Background(), loan.ID())
	require.NoError(t, err)
	assert.True(t, updated.OutstandingBalance().Equal(decimal.NewFromInt(4_500)),
		"balance must move exactly once, got %s", updated.OutstandingBalance())

	ledger, err := f.repos.Payments.FindByLoanID(context.Background(), loan.ID())
	require.NoError(t, err)
	assert.Len(t, ledger, 1, "retries must not append extra ledger rows")

	paid, err := f.repos.Invoices.FindByNumber(context.Background(), inv.Number())
	require.NoError(t, err)
	assert.True(t, paid.IsPaid())
}

// TestReviewLoan_ConcurrentApproveReject races approvals and rejections of
// one pending application. Exactly one reviewer may win; everyone else gets
// a status conflict, and the loan ends in the winner's state.
func TestReviewLoan_ConcurrentApproveReject(t *testing.T) {
	f := newFixture(t)
	loan := f.seedLoan(t, "PENDING")
	approveUC := NewApproveLoanUseCase(f.store, f.publisher, f.notifier, f.logger)
	rejectUC := NewRejectLoanUseCase(f.store, f.publisher, f.notifier, f.logger)

	const reviewers = 20
	errs := make([]error, reviewers)
	var wg sync.WaitGroup
	wg.Add(reviewers)
	for i := 0; i < reviewers; i++ {
		go func(idx int) {
			defer wg.Done()
			if idx%2 == 0 {
				_, errs[idx] = approveUC.Execute(context.Background(), dto.ApproveLoanRequest{
					LoanID: loan.ID(), ApproverID: "ADMIN01",
				})
			} else {
				_, errs[idx] = rejectUC.Execute(context.Background(), dto.RejectLoanRequest{
					LoanID: loan.ID(), ApproverID: "ADMIN01", Reason: "incomplete documents",
				})
			}
		}(i)
	}
	wg.Wait()

	successes := 0
	for i, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIsf(t, err, valueobject.ErrConflict, "reviewer %d must lose with a conflict", i)
	}
	assert.Equal(t, 1, successes, "exactly one reviewer may decide the application")

	decided, err := f.repos.Loans.FindByID(context.Background(), loan.ID())
	require.NoError(t, err)
	assert.True(t,
		decided.Status().Equal(valueobject.LoanStatusApproved) || decided.Status().Equal(valueobject.LoanStatusRejected),
		"loan must end in a decided state, got %s", decided.Status())
}
