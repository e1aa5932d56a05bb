package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

const (
	defaultNotificationLimit = 50
	reminderTolerance        = 5 * time.Minute

	extraMedicineTrackerID = "medicine_tracker_id"
	extraReminderSlot      = "reminder_slot"
	extraAppointmentID     = "appointment_id"
)

// NotificationInput describes a notification to create
type NotificationInput struct {
	UserID       string
	Title        string
	Message      string
	Type         entities.NotificationType
	ScheduledFor time.Time
	Extra        entities.JSONMap
}

// NotificationService persists in-app notifications, publishes them on the
// event bus and runs the reminder jobs
type NotificationService struct {
	repo          repositories.NotificationRepository
	medicines     repositories.MedicineRepository
	appointments  repositories.AppointmentRepository
	bus           providers.EventBus
	retentionDays int
	clock         Clock
}

// NewNotificationService creates a new notification service. bus may be nil.
func NewNotificationService(
	repo repositories.NotificationRepository,
	medicines repositories.MedicineRepository,
	appointments repositories.AppointmentRepository,
	bus providers.EventBus,
	retentionDays int,
	clock Clock,
) *NotificationService {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &NotificationService{
		repo:          repo,
		medicines:     medicines,
		appointments:  appointments,
		bus:           bus,
		retentionDays: retentionDays,
		clock:         clock,
	}
}

// Create stores a notification and publishes it. Publishing is best effort.
func (s *NotificationService) Create(ctx context.Context, in NotificationInput) (*entities.Notification, error) {
	now := s.clock.now()
	n := &entities.Notification{
		ID:               uuid.New().String(),
		UserID:           in.UserID,
		Title:            in.Title,
		Message:          in.Message,
		NotificationType: in.Type,
		ScheduledFor:     in.ScheduledFor,
		ExtraData:        in.Extra,
		CreatedAt:        now,
	}
	if n.ScheduledFor.IsZero() {
		n.ScheduledFor = now
	}
	if n.ExtraData == nil {
		n.ExtraData = entities.JSONMap{}
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("user_id", n.UserID).
		Str("notification_type", string(n.NotificationType)).
		Msg("Notification created")

	s.publish(ctx, n)
	return n, nil
}

// notify creates a notification for a side effect of another operation;
// failures are logged and swallowed
func (s *NotificationService) notify(ctx context.Context, in NotificationInput) {
	if s == nil {
		return
	}
	if _, err := s.Create(ctx, in); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Str("user_id", in.UserID).
			Str("title", in.Title).
			Msg("Failed to create notification")
	}
}

func (s *NotificationService) publish(ctx context.Context, n *entities.Notification) {
	if s.bus == nil {
		return
	}
	event := entities.NewHealthEvent(n.UserID, entities.HealthEventNotificationCreated, map[string]interface{}{
		"notification_id":   n.ID,
		"title":             n.Title,
		"message":           n.Message,
		"notification_type": n.NotificationType,
	})
	for _, channel := range []string{providers.GetUserChannel(n.UserID), providers.EventChannelNotifications} {
		if err := s.bus.Publish(ctx, channel, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("channel", channel).Msg("Failed to publish notification event")
		}
	}
}

// List returns up to 50 of the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*entities.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, defaultNotificationLimit)
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	updated, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !updated {
		return apperrors.NewNotFoundError("Notification not found")
	}
	return nil
}

// SendMedicineReminders creates a reminder for every active tracker timing
// within five minutes of now, at most once per tracker timing per day
func (s *NotificationService) SendMedicineReminders(ctx context.Context, now time.Time) (int, error) {
	trackers, err := s.medicines.ListAllActiveTrackers(ctx)
	if err != nil {
		return 0, err
	}

	logger := observability.LoggerFromContext(ctx)
	today := startOfDay(now)
	sent := 0
	for _, tracker := range trackers {
		if !tracker.ActiveOn(now) {
			continue
		}
		for _, timing := range tracker.Timing {
			at, err := time.ParseInLocation(entities.TimeLayout, timing, now.Location())
			if err != nil {
				logger.Warn().Str("tracker_id", tracker.ID).Str("timing", timing).Msg("Skipping malformed reminder time")
				continue
			}
			due := today.Add(time.Duration(at.Hour())*time.Hour + time.Duration(at.Minute())*time.Minute)
			if diff := now.Sub(due); diff > reminderTolerance || diff < -reminderTolerance {
				continue
			}

			slot := tracker.ID + "@" + timing
			exists, err := s.repo.ExistsForExtra(ctx, tracker.UserID, entities.NotificationMedicineReminder, extraReminderSlot, slot, today)
			if err != nil {
				return sent, err
			}
			if exists {
				continue
			}

			_, err = s.Create(ctx, NotificationInput{
				UserID:       tracker.UserID,
				Title:        "Medicine Reminder",
				Message:      fmt.Sprintf("Time to take %s - %s", tracker.MedicineName, tracker.Dosage),
				Type:         entities.NotificationMedicineReminder,
				ScheduledFor: due,
				Extra: entities.JSONMap{
					extraMedicineTrackerID: tracker.ID,
					extraReminderSlot:      slot,
					"timing":               timing,
				},
			})
			if err != nil {
				return sent, err
			}
			sent++
		}
	}
	return sent, nil
}

// SendAppointmentReminders reminds patients of tomorrow's scheduled
// appointments, once per appointment
func (s *NotificationService) SendAppointmentReminders(ctx context.Context, now time.Time) (int, error) {
	tomorrow := startOfDay(now).AddDate(0, 0, 1)
	appointments, err := s.appointments.ListScheduledOn(ctx, tomorrow)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, appt := range appointments {
		exists, err := s.repo.ExistsForExtra(ctx, appt.UserID, entities.NotificationAppointmentReminder, extraAppointmentID, appt.ID, time.Time{})
		if err != nil {
			return sent, err
		}
		if exists {
			continue
		}

		doctor := doctorLabel(appt.DoctorName)
		_, err = s.Create(ctx, NotificationInput{
			UserID:  appt.UserID,
			Title:   "Appointment Reminder",
			Message: fmt.Sprintf("You have an appointment with %s tomorrow at %s", doctor, appt.AppointmentTime),
			Type:    entities.NotificationAppointmentReminder,
			Extra: entities.JSONMap{
				extraAppointmentID: appt.ID,
				"doctor_name":      doctor,
				"appointment_time": appt.AppointmentTime,
			},
		})
		if err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// CleanupOld deletes notifications past the retention window
func (s *NotificationService) CleanupOld(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, now.AddDate(0, 0, -s.retentionDays))
}

func doctorLabel(name string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "Unknown Doctor"
	case strings.HasPrefix(name, "Dr"):
		return name
	default:
		return "Dr. " + name
	}
}
