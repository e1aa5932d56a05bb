package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/phr/backend/internal/application/services"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

func TestProfileService_Update(t *testing.T) {
	t.Run("applies present fields only", func(t *testing.T) {
		// Arrange
		users := new(MockUserRepository)
		service := services.NewProfileService(users, nil, fixedClock)

		users.On("GetByID", mock.Anything, "u1").Return(&entities.User{ID: "u1", Name: "Old", Gender: "female"}, nil)
		users.On("Update", mock.Anything, mock.Anything).Return(nil)

		name, dob := "Priya", "1990-03-15"

		// Act
		user, err := service.Update(context.Background(), "u1", entities.ProfileUpdate{Name: &name, DateOfBirth: &dob})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Priya", user.Name)
		assert.Equal(t, "female", user.Gender)
		require.NotNil(t, user.DateOfBirth)
		assert.Equal(t, time.March, user.DateOfBirth.Month())
	})

	t.Run("rejects a malformed date of birth", func(t *testing.T) {
		// Arrange
		users := new(MockUserRepository)
		service := services.NewProfileService(users, nil, fixedClock)
		users.On("GetByID", mock.Anything, "u1").Return(&entities.User{ID: "u1"}, nil)
		dob := "15/03/1990"

		// Act
		_, err := service.Update(context.Background(), "u1", entities.ProfileUpdate{DateOfBirth: &dob})

		// Assert
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestProfileService_QRCode(t *testing.T) {
	// Arrange
	users := new(MockUserRepository)
	service := services.NewProfileService(users, nil, fixedClock)
	users.On("GetByID", mock.Anything, "u1").Return(&entities.User{ID: "u1", Name: "Priya", MobileNumber: "9876543210"}, nil)

	// Act
	dataURL, err := service.QRCode(context.Background(), "u1")

	// Assert
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))
	assert.Greater(t, len(dataURL), 100)
}

func TestProfileService_Share(t *testing.T) {
	t.Run("returns the hospital share token", func(t *testing.T) {
		// Arrange
		users := new(MockUserRepository)
		hmis := new(MockHospitalSystem)
		service := services.NewProfileService(users, hmis, fixedClock)

		users.On("GetByID", mock.Anything, "u1").Return(&entities.User{ID: "u1", Name: "Priya"}, nil)
		hmis.On("ShareProfile", mock.Anything, mock.MatchedBy(func(s entities.ProfileShare) bool {
			return s.PatientID == "u1" && s.HospitalID == "h1" && s.SharedAt == "2024-05-01T09:00:00Z"
		})).Return("share-token", nil)

		// Act
		token, err := service.Share(context.Background(), "u1", "h1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "share-token", token)
	})

	t.Run("requires a hospital", func(t *testing.T) {
		service := services.NewProfileService(new(MockUserRepository), new(MockHospitalSystem), fixedClock)

		_, err := service.Share(context.Background(), "u1", "")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("reports an unreachable hospital system", func(t *testing.T) {
		// Arrange
		users := new(MockUserRepository)
		hmis := new(MockHospitalSystem)
		service := services.NewProfileService(users, hmis, fixedClock)

		users.On("GetByID", mock.Anything, "u1").Return(&entities.User{ID: "u1"}, nil)
		hmis.On("ShareProfile", mock.Anything, mock.Anything).Return("", providers.ErrHospitalSystemUnavailable)

		// Act
		_, err := service.Share(context.Background(), "u1", "h1")

		// Assert
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUpstreamUnreachable))
	})
}

func TestProfileService_ListHospitals(t *testing.T) {
	t.Run("degrades to an empty list", func(t *testing.T) {
		hmis := new(MockHospitalSystem)
		service := services.NewProfileService(nil, hmis, fixedClock)
		hmis.On("ListHospitals", mock.Anything).Return(nil, providers.ErrHospitalSystemUnavailable)

		hospitals := service.ListHospitals(context.Background())

		assert.NotNil(t, hospitals)
		assert.Empty(t, hospitals)
	})

	t.Run("returns an empty list without a hospital system", func(t *testing.T) {
		service := services.NewProfileService(nil, nil, fixedClock)

		assert.Empty(t, service.ListHospitals(context.Background()))
	})
}
