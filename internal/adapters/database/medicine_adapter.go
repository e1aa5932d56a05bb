package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

var trackerColumns = []interface{}{
	"id", "user_id", "medicine_name", "dosage", "frequency", "timing",
	"start_date", "end_date", "is_active", "created_at",
}

var prescriptionColumns = []interface{}{
	"id", "user_id", "image_key", "medicines", "doctor_name",
	"prescription_date", "analyzed", "created_at",
}

// MedicineAdapter implements the MedicineRepository interface
type MedicineAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewMedicineAdapter creates a new medicine adapter
func NewMedicineAdapter(client *postgres.Client) repositories.MedicineRepository {
	return &MedicineAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// CreateTracker stores a medicine tracker
func (a *MedicineAdapter) CreateTracker(ctx context.Context, t *entities.MedicineTracker) error {
	var endDate interface{}
	if t.EndDate != nil {
		endDate = t.EndDate.Format(entities.DateLayout)
	}

	record := goqu.Record{
		"id":            t.ID,
		"user_id":       t.UserID,
		"medicine_name": t.MedicineName,
		"dosage":        t.Dosage,
		"frequency":     t.Frequency,
		"timing":        t.Timing,
		"start_date":    t.StartDate.Format(entities.DateLayout),
		"end_date":      endDate,
		"is_active":     t.IsActive,
		"created_at":    t.CreatedAt,
	}
	return a.insert(ctx, "medicine_trackers", record, "failed to create medicine tracker")
}

// ListActiveTrackers returns the user's active trackers
func (a *MedicineAdapter) ListActiveTrackers(ctx context.Context, userID string) ([]*entities.MedicineTracker, error) {
	ds := a.db.Select(trackerColumns...).
		From("medicine_trackers").
		Where(goqu.Ex{"user_id": userID}, goqu.C("is_active").IsTrue()).
		Order(goqu.C("created_at").Desc())
	return a.listTrackers(ctx, ds)
}

// ListAllActiveTrackers returns every active tracker, used by the reminder scheduler
func (a *MedicineAdapter) ListAllActiveTrackers(ctx context.Context) ([]*entities.MedicineTracker, error) {
	ds := a.db.Select(trackerColumns...).
		From("medicine_trackers").
		Where(goqu.C("is_active").IsTrue()).
		Order(goqu.C("user_id").Asc())
	return a.listTrackers(ctx, ds)
}

func (a *MedicineAdapter) listTrackers(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.MedicineTracker, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list medicine trackers", err)
	}
	defer rows.Close()

	trackers := make([]*entities.MedicineTracker, 0)
	for rows.Next() {
		t := &entities.MedicineTracker{}
		var dosage, frequency sql.NullString
		var endDate sql.NullTime
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.MedicineName, &dosage, &frequency, &t.Timing,
			&t.StartDate, &endDate, &t.IsActive, &t.CreatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan medicine tracker", err)
		}
		t.Dosage = dosage.String
		t.Frequency = frequency.String
		t.EndDate = timePtr(endDate)
		trackers = append(trackers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate medicine trackers", err)
	}
	return trackers, nil
}

// CreatePrescription stores an uploaded prescription
func (a *MedicineAdapter) CreatePrescription(ctx context.Context, p *entities.Prescription) error {
	record := goqu.Record{
		"id":                p.ID,
		"user_id":           p.UserID,
		"image_key":         p.ImageKey,
		"medicines":         p.Medicines,
		"doctor_name":       nullableString(p.DoctorName),
		"prescription_date": nullableString(p.PrescriptionDate),
		"analyzed":          p.Analyzed,
		"created_at":        p.CreatedAt,
	}
	return a.insert(ctx, "prescriptions", record, "failed to create prescription")
}

// UpdatePrescription stores what analysis extracted from a prescription
func (a *MedicineAdapter) UpdatePrescription(ctx context.Context, p *entities.Prescription) error {
	query, args, err := a.db.Update("prescriptions").
		Set(goqu.Record{
			"medicines":         p.Medicines,
			"doctor_name":       nullableString(p.DoctorName),
			"prescription_date": nullableString(p.PrescriptionDate),
			"analyzed":          p.Analyzed,
		}).
		Where(goqu.Ex{"id": p.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update prescription", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("Prescription not found")
	}
	return nil
}

// ListPrescriptions returns the user's prescriptions, newest first
func (a *MedicineAdapter) ListPrescriptions(ctx context.Context, userID string) ([]*entities.Prescription, error) {
	query, args, err := a.db.Select(prescriptionColumns...).
		From("prescriptions").
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.C("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list prescriptions", err)
	}
	defer rows.Close()

	prescriptions := make([]*entities.Prescription, 0)
	for rows.Next() {
		p := &entities.Prescription{}
		var doctorName sql.NullString
		var prescribedOn sql.NullTime
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.ImageKey, &p.Medicines, &doctorName,
			&prescribedOn, &p.Analyzed, &p.CreatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan prescription", err)
		}
		p.DoctorName = doctorName.String
		if prescribedOn.Valid {
			p.PrescriptionDate = prescribedOn.Time.Format(entities.DateLayout)
		}
		prescriptions = append(prescriptions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate prescriptions", err)
	}
	return prescriptions, nil
}

func (a *MedicineAdapter) insert(ctx context.Context, table string, record goqu.Record, failure string) error {
	query, args, err := a.db.Insert(table).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError(failure, err)
	}
	return nil
}
