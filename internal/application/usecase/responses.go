package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/uhicoop/loan-service/internal/application/dto"
	"github.com/uhicoop/loan-service/internal/domain/event"
	"github.com/uhicoop/loan-service/internal/domain/model"
	"github.com/uhicoop/loan-service/internal/domain/port"
)

func toLoanResponse(loan model.Loan) dto.LoanResponse {
	return dto.LoanResponse{
		ID:                 loan.ID(),
		BorrowerID:         loan.BorrowerID(),
		BorrowerName:       loan.BorrowerName(),
		Principal:          loan.Principal(),
		OutstandingBalance: loan.OutstandingBalance(),
		Currency:           loan.Currency(),
		InterestRate:       loan.InterestRate(),
		TermMonths:         loan.TermMonths(),
		MonthlyPayment:     loan.MonthlyPayment(),
		Purpose:            loan.Purpose(),
		Status:             loan.Status().String(),
		ApproverID:         loan.ApproverID(),
		ApprovedAt:         timePtr(loan.ApprovedAt()),
		RejectionReason:    loan.RejectionReason(),
		StartDate:          timePtr(loan.StartDate()),
		DueDate:            timePtr(loan.DueDate()),
		LastPaymentAt:      timePtr(loan.LastPaymentAt()),
		CreatedAt:          loan.CreatedAt(),
		UpdatedAt:          loan.UpdatedAt(),
	}
}

func toLoanResponses(loans []model.Loan) []dto.LoanResponse {
	out := make([]dto.LoanResponse, len(loans))
	for i, l := range loans {
		out[i] = toLoanResponse(l)
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// publishEvents sends domain events after the owning transaction has
// committed. Publishing is best-effort: the committed transition must not
// be reported as failed because the broker is down.
func publishEvents(ctx context.Context, logger *slog.Logger, publisher port.EventPublisher, events ...event.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.ErrorContext(ctx, "failed to publish domain events",
			"error", err,
			"event_count", len(events),
		)
	}
}
