package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

var carePackageRowColumns = []string{
	"id", "name", "description", "category", "features", "price", "duration_months", "is_active",
}

func TestCarePackageAdapter_ListActive(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewCarePackageAdapter(client)

	rows := sqlmock.NewRows(carePackageRowColumns).
		AddRow("p1", "Diabetes Care", "Quarterly checkups", "chronic", []byte(`["HbA1c","Diet plan"]`), 4999.0, 12, true).
		AddRow("p2", "Wellness", nil, nil, nil, nil, nil, true)
	mock.ExpectQuery(`SELECT .* FROM "care_packages" WHERE \("is_active" IS TRUE\) ORDER BY "name" ASC`).
		WillReturnRows(rows)

	packages, err := adapter.ListActive(context.Background())

	require.NoError(t, err)
	require.Len(t, packages, 2)
	assert.Equal(t, []string{"HbA1c", "Diet plan"}, []string(packages[0].Features))
	require.NotNil(t, packages[0].Price)
	assert.Equal(t, 4999.0, *packages[0].Price)
	assert.Equal(t, 12, packages[0].DurationMonths)
	assert.Nil(t, packages[1].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarePackageAdapter_GetByID(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewCarePackageAdapter(client)

	mock.ExpectQuery(`SELECT .* FROM "care_packages" WHERE .*"id" = 'missing'`).
		WillReturnRows(sqlmock.NewRows(carePackageRowColumns))

	_, err := adapter.GetByID(context.Background(), "missing")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarePackageAdapter_Subscription(t *testing.T) {
	t.Run("detects existing active subscription", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewCarePackageAdapter(client)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "user_care_packages" WHERE .*"care_package_id" = 'p1'.*"status" = 'active'.*"user_id" = 'u1'`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := adapter.HasActiveSubscription(context.Background(), "u1", "p1")

		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("subscribe writes start date as a date", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewCarePackageAdapter(client)

		mock.ExpectExec(`INSERT INTO "user_care_packages" .*'2024-05-01'`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := adapter.Subscribe(context.Background(), &entities.UserCarePackage{
			ID:            "s1",
			UserID:        "u1",
			CarePackageID: "p1",
			Status:        entities.UserCarePackageStatusActive,
			StartDate:     time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC),
			CreatedAt:     time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC),
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
