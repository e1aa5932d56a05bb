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

var carePackageColumns = []interface{}{
	"id", "name", "description", "category", "features", "price", "duration_months", "is_active",
}

// CarePackageAdapter implements the CarePackageRepository interface
type CarePackageAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCarePackageAdapter creates a new care package adapter
func NewCarePackageAdapter(client *postgres.Client) repositories.CarePackageRepository {
	return &CarePackageAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListActive returns all active packages
func (a *CarePackageAdapter) ListActive(ctx context.Context) ([]*entities.CarePackage, error) {
	query, args, err := a.db.Select(carePackageColumns...).
		From("care_packages").
		Where(goqu.C("is_active").IsTrue()).
		Order(goqu.C("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list care packages", err)
	}
	defer rows.Close()

	packages := make([]*entities.CarePackage, 0)
	for rows.Next() {
		p, err := scanCarePackage(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan care package", err)
		}
		packages = append(packages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate care packages", err)
	}
	return packages, nil
}

// GetByID returns an active package
func (a *CarePackageAdapter) GetByID(ctx context.Context, id string) (*entities.CarePackage, error) {
	query, args, err := a.db.Select(carePackageColumns...).
		From("care_packages").
		Where(goqu.Ex{"id": id}, goqu.C("is_active").IsTrue()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	p, err := scanCarePackage(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("Care package not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get care package", err)
	}
	return p, nil
}

// HasActiveSubscription reports whether the user already holds an active subscription
func (a *CarePackageAdapter) HasActiveSubscription(ctx context.Context, userID, packageID string) (bool, error) {
	query, args, err := a.db.From("user_care_packages").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{
			"user_id":         userID,
			"care_package_id": packageID,
			"status":          entities.UserCarePackageStatusActive,
		}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check subscription", err)
	}
	return count > 0, nil
}

// Subscribe stores a subscription
func (a *CarePackageAdapter) Subscribe(ctx context.Context, sub *entities.UserCarePackage) error {
	record := goqu.Record{
		"id":              sub.ID,
		"user_id":         sub.UserID,
		"care_package_id": sub.CarePackageID,
		"status":          sub.Status,
		"start_date":      sub.StartDate.Format(entities.DateLayout),
		"created_at":      sub.CreatedAt,
	}

	query, args, err := a.db.Insert("user_care_packages").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to subscribe to care package", err)
	}
	return nil
}

func scanCarePackage(row rowScanner) (*entities.CarePackage, error) {
	p := &entities.CarePackage{}
	var description, category sql.NullString
	var price sql.NullFloat64
	var duration sql.NullInt64
	if err := row.Scan(
		&p.ID, &p.Name, &description, &category, &p.Features, &price, &duration, &p.IsActive,
	); err != nil {
		return nil, err
	}
	p.Description = description.String
	p.Category = category.String
	p.Price = floatPtr(price)
	p.DurationMonths = int(duration.Int64)
	return p, nil
}
