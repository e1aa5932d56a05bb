package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
)

// ReminderJobs is the set of periodic notification jobs
type ReminderJobs interface {
	SendMedicineReminders(ctx context.Context, now time.Time) (int, error)
	SendAppointmentReminders(ctx context.Context, now time.Time) (int, error)
	CleanupOld(ctx context.Context, now time.Time) (int64, error)
}

// ReminderScheduler runs the reminder jobs on a fixed interval
type ReminderScheduler struct {
	jobs     ReminderJobs
	interval time.Duration
	clock    Clock
	logger   zerolog.Logger
}

// NewReminderScheduler creates a scheduler; interval defaults to one minute
func NewReminderScheduler(jobs ReminderJobs, interval time.Duration, clock Clock) *ReminderScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReminderScheduler{
		jobs:     jobs,
		interval: interval,
		clock:    clock,
		logger:   observability.ComponentLogger("reminders"),
	}
}

// Start runs the jobs once immediately and then on every tick until ctx is
// cancelled
func (s *ReminderScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("Reminder scheduler started")
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Reminder scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs every job a single time. A failing job does not stop the others.
func (s *ReminderScheduler) RunOnce(ctx context.Context) {
	now := s.clock.now()

	if n, err := s.jobs.SendMedicineReminders(ctx, now); err != nil {
		s.logger.Error().Err(err).Msg("Medicine reminder job failed")
	} else if n > 0 {
		s.logger.Info().Int("sent", n).Msg("Medicine reminders sent")
	}

	if n, err := s.jobs.SendAppointmentReminders(ctx, now); err != nil {
		s.logger.Error().Err(err).Msg("Appointment reminder job failed")
	} else if n > 0 {
		s.logger.Info().Int("sent", n).Msg("Appointment reminders sent")
	}

	if n, err := s.jobs.CleanupOld(ctx, now); err != nil {
		s.logger.Error().Err(err).Msg("Notification cleanup failed")
	} else if n > 0 {
		s.logger.Info().Int64("deleted", n).Msg("Old notifications deleted")
	}
}
