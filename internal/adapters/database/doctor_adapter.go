package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

var doctorColumns = []interface{}{
	"id", "name", "specialty", "qualification", "experience_years", "hospital_name",
	"consultation_fee", "rating", "profile_image", "availability", "is_active",
}

// DoctorAdapter implements the DoctorRepository interface
type DoctorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDoctorAdapter creates a new doctor adapter
func NewDoctorAdapter(client *postgres.Client) repositories.DoctorRepository {
	return &DoctorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Search returns active doctors matching the filter
func (a *DoctorAdapter) Search(ctx context.Context, filter entities.DoctorFilter) ([]*entities.Doctor, error) {
	conditions := []exp.Expression{goqu.C("is_active").IsTrue()}
	if s := strings.TrimSpace(filter.Specialty); s != "" {
		conditions = append(conditions, goqu.C("specialty").ILike("%"+s+"%"))
	}
	if n := strings.TrimSpace(filter.Name); n != "" {
		conditions = append(conditions, goqu.C("name").ILike("%"+n+"%"))
	}

	query, args, err := a.db.Select(doctorColumns...).
		From("doctors").
		Where(conditions...).
		Order(goqu.C("rating").Desc().NullsLast(), goqu.C("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to search doctors", err)
	}
	defer rows.Close()

	doctors := make([]*entities.Doctor, 0)
	for rows.Next() {
		doctor, err := scanDoctor(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan doctor", err)
		}
		doctors = append(doctors, doctor)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate doctors", err)
	}
	return doctors, nil
}

// GetByID retrieves an active doctor by ID
func (a *DoctorAdapter) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	query, args, err := a.db.Select(doctorColumns...).
		From("doctors").
		Where(goqu.Ex{"id": id, "is_active": true}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	doctor, err := scanDoctor(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get doctor", err)
	}
	return doctor, nil
}

func scanDoctor(row rowScanner) (*entities.Doctor, error) {
	doctor := &entities.Doctor{Source: entities.DoctorSourceLocal}
	var qualification, hospital, image sql.NullString
	var experience sql.NullInt64
	var fee, rating sql.NullFloat64

	err := row.Scan(
		&doctor.ID,
		&doctor.Name,
		&doctor.Specialty,
		&qualification,
		&experience,
		&hospital,
		&fee,
		&rating,
		&image,
		&doctor.Availability,
		&doctor.IsActive,
	)
	if err != nil {
		return nil, err
	}

	doctor.Qualification = qualification.String
	doctor.ExperienceYears = intPtr(experience)
	doctor.HospitalName = hospital.String
	doctor.ConsultationFee = floatPtr(fee)
	doctor.Rating = floatPtr(rating)
	doctor.ProfileImage = image.String
	return doctor, nil
}
