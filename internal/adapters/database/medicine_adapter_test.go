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

func TestMedicineAdapter_ListActiveTrackers(t *testing.T) {
	// Arrange
	client, mock := setupMockDB(t)
	adapter := NewMedicineAdapter(client)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "medicine_name", "dosage", "frequency", "timing",
		"start_date", "end_date", "is_active", "created_at",
	}).AddRow("t1", "u1", "Metformin", "500mg", "twice daily", []byte(`["08:00","20:00"]`), start, nil, true, start)
	mock.ExpectQuery(`SELECT .* FROM "medicine_trackers" WHERE .*"user_id" = 'u1'.*"is_active" IS TRUE`).
		WillReturnRows(rows)

	// Act
	trackers, err := adapter.ListActiveTrackers(context.Background(), "u1")

	// Assert
	require.NoError(t, err)
	require.Len(t, trackers, 1)
	assert.Equal(t, []string{"08:00", "20:00"}, []string(trackers[0].Timing))
	assert.Nil(t, trackers[0].EndDate)
	assert.True(t, trackers[0].ActiveOn(start.AddDate(0, 0, 30)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicineAdapter_UpdatePrescription(t *testing.T) {
	t.Run("stores extracted medicines", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewMedicineAdapter(client)

		mock.ExpectExec(`UPDATE "prescriptions" SET .*"analyzed"=TRUE.*"Amoxicillin".* WHERE \("id" = 'rx1'\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := adapter.UpdatePrescription(context.Background(), &entities.Prescription{
			ID:        "rx1",
			Medicines: entities.PrescribedMedicines{{Name: "Amoxicillin", Dosage: "250mg"}},
			Analyzed:  true,
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing prescription", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewMedicineAdapter(client)

		mock.ExpectExec(`UPDATE "prescriptions"`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.UpdatePrescription(context.Background(), &entities.Prescription{ID: "rx9"})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}
