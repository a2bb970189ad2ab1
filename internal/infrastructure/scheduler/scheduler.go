// Package scheduler runs the periodic payment reminder sweep on a cron
// schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/uhicoop/loan-service/internal/application/usecase"
)

// ReminderScheduler triggers the reminder sweep on a cron expression.
type ReminderScheduler struct {
	cron   *cron.Cron
	sweep  *usecase.RemindPaymentsUseCase
	logger *slog.Logger
}

// NewReminderScheduler creates a scheduler around the sweep usecase.
func NewReminderScheduler(sweep *usecase.RemindPaymentsUseCase, logger *slog.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		cron:   cron.New(),
		sweep:  sweep,
		logger: logger,
	}
}

// Start registers the schedule and starts the cron loop. Each run gets a
// fresh background context so a slow sweep never inherits a dead request
// context.
func (s *ReminderScheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx := context.Background()
		if _, err := s.sweep.Execute(ctx); err != nil {
			s.logger.ErrorContext(ctx, "payment reminder sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("register reminder schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	s.logger.Info("reminder scheduler started", "schedule", schedule)
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *ReminderScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
