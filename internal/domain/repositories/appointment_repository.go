package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// AppointmentRepository defines the interface for appointment data operations
type AppointmentRepository interface {
	// Create creates a new appointment
	Create(ctx context.Context, appointment *entities.Appointment) error

	// ListByUser retrieves appointments for a user, newest first
	ListByUser(ctx context.Context, userID string, filter AppointmentFilter) ([]*entities.AppointmentView, error)

	// BookedTimes returns the HH:MM times already scheduled for a doctor on a date
	BookedTimes(ctx context.Context, doctorID string, date time.Time) ([]string, error)

	// IsSlotTaken reports whether a scheduled appointment exists at the slot
	IsSlotTaken(ctx context.Context, doctorID string, date time.Time, slot string) (bool, error)

	// ListScheduledOn returns scheduled appointments on a date
	ListScheduledOn(ctx context.Context, date time.Time) ([]*entities.Appointment, error)
}

// AppointmentFilter defines filters for listing appointments
type AppointmentFilter struct {
	Status entities.AppointmentStatus
	Limit  int
}
