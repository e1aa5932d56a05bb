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

var labTestColumns = []interface{}{
	"id", "name", "description", "category", "normal_range", "price",
	"preparation_instructions", "is_active",
}

// LabAdapter implements the LabRepository interface
type LabAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewLabAdapter creates a new lab adapter
func NewLabAdapter(client *postgres.Client) repositories.LabRepository {
	return &LabAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListTests returns active tests, optionally filtered by category
func (a *LabAdapter) ListTests(ctx context.Context, category string) ([]*entities.LabTest, error) {
	ds := a.db.Select(labTestColumns...).
		From("lab_tests").
		Where(goqu.C("is_active").IsTrue()).
		Order(goqu.C("name").Asc())
	if category != "" {
		ds = ds.Where(goqu.Ex{"category": category})
	}
	return a.listTests(ctx, ds)
}

// GetTestsByIDs returns the active tests among ids
func (a *LabAdapter) GetTestsByIDs(ctx context.Context, ids []string) ([]*entities.LabTest, error) {
	if len(ids) == 0 {
		return []*entities.LabTest{}, nil
	}
	ds := a.db.Select(labTestColumns...).
		From("lab_tests").
		Where(goqu.Ex{"id": ids}, goqu.C("is_active").IsTrue())
	return a.listTests(ctx, ds)
}

func (a *LabAdapter) listTests(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.LabTest, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list lab tests", err)
	}
	defer rows.Close()

	tests := make([]*entities.LabTest, 0)
	for rows.Next() {
		t := &entities.LabTest{}
		var description, category, normalRange, preparation sql.NullString
		var price sql.NullFloat64
		if err := rows.Scan(
			&t.ID, &t.Name, &description, &category, &normalRange, &price,
			&preparation, &t.IsActive,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan lab test", err)
		}
		t.Description = description.String
		t.Category = category.String
		t.NormalRange = normalRange.String
		t.PreparationInstructions = preparation.String
		t.Price = floatPtr(price)
		tests = append(tests, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate lab tests", err)
	}
	return tests, nil
}

// CreateBooking stores a lab booking
func (a *LabAdapter) CreateBooking(ctx context.Context, booking *entities.LabBooking) error {
	record := goqu.Record{
		"id":           booking.ID,
		"user_id":      booking.UserID,
		"doctor_id":    nullableString(booking.DoctorID),
		"test_ids":     booking.TestIDs,
		"total_amount": booking.TotalAmount,
		"status":       booking.Status,
		"created_at":   booking.CreatedAt,
	}

	query, args, err := a.db.Insert("lab_bookings").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create lab booking", err)
	}
	return nil
}
