package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

var ambulanceServiceColumns = []interface{}{
	"id", "service_name", "phone_number", "service_type", "coverage_area",
	"base_price", "per_km_rate", "rating", "is_active",
}

// AmbulanceAdapter implements the AmbulanceRepository interface
type AmbulanceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAmbulanceAdapter creates a new ambulance adapter
func NewAmbulanceAdapter(client *postgres.Client) repositories.AmbulanceRepository {
	return &AmbulanceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListServices returns active operators, best rated first
func (a *AmbulanceAdapter) ListServices(ctx context.Context, serviceType string) ([]*entities.AmbulanceService, error) {
	ds := a.db.Select(ambulanceServiceColumns...).
		From("ambulance_services").
		Where(goqu.C("is_active").IsTrue()).
		Order(goqu.C("rating").Desc().NullsLast(), goqu.C("service_name").Asc())
	if serviceType != "" {
		ds = ds.Where(goqu.Ex{"service_type": serviceType})
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list ambulance services", err)
	}
	defer rows.Close()

	services := make([]*entities.AmbulanceService, 0)
	for rows.Next() {
		svc, err := scanAmbulanceService(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan ambulance service", err)
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate ambulance services", err)
	}
	return services, nil
}

// GetService returns an active operator
func (a *AmbulanceAdapter) GetService(ctx context.Context, id string) (*entities.AmbulanceService, error) {
	query, args, err := a.db.Select(ambulanceServiceColumns...).
		From("ambulance_services").
		Where(goqu.Ex{"id": id}, goqu.C("is_active").IsTrue()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	svc, err := scanAmbulanceService(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("Ambulance service not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get ambulance service", err)
	}
	return svc, nil
}

// CreateBooking stores a transport request
func (a *AmbulanceAdapter) CreateBooking(ctx context.Context, booking *entities.AmbulanceBooking) error {
	record := goqu.Record{
		"id":                   booking.ID,
		"user_id":              booking.UserID,
		"ambulance_service_id": booking.AmbulanceServiceID,
		"pickup_location":      booking.PickupLocation,
		"destination":          booking.Destination,
		"emergency_level":      booking.EmergencyLevel,
		"patient_condition":    nullableString(booking.PatientCondition),
		"status":               booking.Status,
		"estimated_amount":     booking.EstimatedAmount,
		"created_at":           booking.CreatedAt,
	}

	query, args, err := a.db.Insert("ambulance_bookings").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create ambulance booking", err)
	}
	return nil
}

func scanAmbulanceService(row rowScanner) (*entities.AmbulanceService, error) {
	svc := &entities.AmbulanceService{}
	var coverage sql.NullString
	var basePrice, perKm, rating sql.NullFloat64
	if err := row.Scan(
		&svc.ID, &svc.ServiceName, &svc.PhoneNumber, &svc.ServiceType, &coverage,
		&basePrice, &perKm, &rating, &svc.IsActive,
	); err != nil {
		return nil, err
	}
	svc.CoverageArea = coverage.String
	svc.BasePrice = floatPtr(basePrice)
	svc.PerKmRate = floatPtr(perKm)
	svc.Rating = floatPtr(rating)
	return svc, nil
}
