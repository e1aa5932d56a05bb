package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

var appointmentColumns = []interface{}{
	"id", "user_id", "doctor_id", "doctor_name", "doctor_specialty",
	"appointment_date", "appointment_time", "status", "symptoms",
	"consultation_type", "amount", "hmis_appointment_id", "confirmation_number",
	"created_at", "updated_at",
}

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new appointment
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	var amount interface{}
	if appointment.Amount != nil {
		amount = *appointment.Amount
	}

	record := goqu.Record{
		"id":                  appointment.ID,
		"user_id":             appointment.UserID,
		"doctor_id":           appointment.DoctorID,
		"doctor_name":         appointment.DoctorName,
		"doctor_specialty":    nullableString(appointment.DoctorSpecialty),
		"appointment_date":    appointment.AppointmentDate.Format(entities.DateLayout),
		"appointment_time":    appointment.AppointmentTime,
		"status":              appointment.Status,
		"symptoms":            nullableString(appointment.Symptoms),
		"consultation_type":   appointment.ConsultationType,
		"amount":              amount,
		"hmis_appointment_id": nullableString(appointment.HMISAppointmentID),
		"confirmation_number": nullableString(appointment.ConfirmationNumber),
		"created_at":          appointment.CreatedAt,
		"updated_at":          appointment.UpdatedAt,
	}

	query, args, err := a.db.Insert("appointments").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create appointment", err)
	}
	return nil
}

// ListByUser retrieves appointments for a user, newest first
func (a *AppointmentAdapter) ListByUser(ctx context.Context, userID string, filter repositories.AppointmentFilter) ([]*entities.AppointmentView, error) {
	ds := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.C("appointment_date").Desc(), goqu.C("appointment_time").Desc())

	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	appointments, err := a.query(ctx, query, args)
	if err != nil {
		return nil, err
	}

	views := make([]*entities.AppointmentView, 0, len(appointments))
	for _, appt := range appointments {
		view := &entities.AppointmentView{
			ID:               appt.ID,
			DoctorName:       appt.DoctorName,
			AppointmentDate:  appt.AppointmentDate.Format(entities.DateLayout),
			AppointmentTime:  appt.AppointmentTime,
			Status:           appt.Status,
			Symptoms:         appt.Symptoms,
			ConsultationType: appt.ConsultationType,
			Amount:           appt.Amount,
		}
		if view.DoctorName == "" {
			view.DoctorName = unknownDoctor
		}
		if appt.DoctorSpecialty != "" {
			specialty := appt.DoctorSpecialty
			view.DoctorSpecialty = &specialty
		}
		views = append(views, view)
	}
	return views, nil
}

const unknownDoctor = "Unknown Doctor"

// BookedTimes returns the times already scheduled for a doctor on a date
func (a *AppointmentAdapter) BookedTimes(ctx context.Context, doctorID string, date time.Time) ([]string, error) {
	query, args, err := a.db.Select("appointment_time").
		From("appointments").
		Where(goqu.Ex{
			"doctor_id":        doctorID,
			"appointment_date": date.Format(entities.DateLayout),
			"status":           entities.AppointmentStatusScheduled,
		}).
		Order(goqu.C("appointment_time").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get booked times", err)
	}
	defer rows.Close()

	times := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, apperrors.NewInternalError("failed to scan booked time", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate booked times", err)
	}
	return times, nil
}

// IsSlotTaken reports whether a scheduled appointment exists at the slot
func (a *AppointmentAdapter) IsSlotTaken(ctx context.Context, doctorID string, date time.Time, slot string) (bool, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("appointments").
		Where(goqu.Ex{
			"doctor_id":        doctorID,
			"appointment_date": date.Format(entities.DateLayout),
			"appointment_time": slot,
			"status":           entities.AppointmentStatusScheduled,
		}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build query", err)
	}

	var count int64
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check slot", err)
	}
	return count > 0, nil
}

// ListScheduledOn returns scheduled appointments on a date
func (a *AppointmentAdapter) ListScheduledOn(ctx context.Context, date time.Time) ([]*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{
			"appointment_date": date.Format(entities.DateLayout),
			"status":           entities.AppointmentStatusScheduled,
		}).
		Order(goqu.C("appointment_time").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.query(ctx, query, args)
}

func (a *AppointmentAdapter) query(ctx context.Context, query string, args []interface{}) ([]*entities.Appointment, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	defer rows.Close()

	appointments := make([]*entities.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate appointments", err)
	}
	return appointments, nil
}

func scanAppointment(row rowScanner) (*entities.Appointment, error) {
	appt := &entities.Appointment{}
	var specialty, symptoms, hmisID, confirmation sql.NullString
	var amount sql.NullFloat64

	err := row.Scan(
		&appt.ID,
		&appt.UserID,
		&appt.DoctorID,
		&appt.DoctorName,
		&specialty,
		&appt.AppointmentDate,
		&appt.AppointmentTime,
		&appt.Status,
		&symptoms,
		&appt.ConsultationType,
		&amount,
		&hmisID,
		&confirmation,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.DoctorSpecialty = specialty.String
	appt.Symptoms = symptoms.String
	appt.Amount = floatPtr(amount)
	appt.HMISAppointmentID = hmisID.String
	appt.ConfirmationNumber = confirmation.String
	return appt, nil
}
