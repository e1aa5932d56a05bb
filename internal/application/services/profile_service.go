package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

const qrCodeSize = 256

// ProfileService manages the patient profile and sharing it with hospitals
type ProfileService struct {
	users repositories.UserRepository
	hmis  providers.HospitalSystemProvider
	clock Clock
}

// NewProfileService creates a new profile service. hmis may be nil.
func NewProfileService(users repositories.UserRepository, hmis providers.HospitalSystemProvider, clock Clock) *ProfileService {
	return &ProfileService{users: users, hmis: hmis, clock: clock}
}

// Get returns the user's profile
func (s *ProfileService) Get(ctx context.Context, userID string) (*entities.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Update applies the fields present in update
func (s *ProfileService) Update(ctx context.Context, userID string, update entities.ProfileUpdate) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.DateOfBirth != nil {
		if *update.DateOfBirth == "" {
			user.DateOfBirth = nil
		} else {
			dob, err := time.Parse(entities.DateLayout, *update.DateOfBirth)
			if err != nil {
				return nil, apperrors.NewValidationError("Invalid date format. Use YYYY-MM-DD")
			}
			user.DateOfBirth = &dob
		}
	}
	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Email != nil {
		user.Email = strings.TrimSpace(*update.Email)
	}
	if update.Gender != nil {
		user.Gender = *update.Gender
	}
	if update.Address != nil {
		user.Address = *update.Address
	}
	if update.EmergencyContact != nil {
		user.EmergencyContact = *update.EmergencyContact
	}
	user.UpdatedAt = s.clock.now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// QRCode returns a PNG data URL encoding the user's emergency card
func (s *ProfileService) QRCode(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(user.QRPayload())
	if err != nil {
		return "", apperrors.NewInternalError("failed to encode profile", err)
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, qrCodeSize)
	if err != nil {
		return "", apperrors.NewInternalError("failed to generate QR code", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Share pushes the profile to a hospital and returns the share token
func (s *ProfileService) Share(ctx context.Context, userID, hospitalID string) (string, error) {
	if strings.TrimSpace(hospitalID) == "" {
		return "", apperrors.NewValidationError("Hospital ID is required")
	}
	if s.hmis == nil {
		return "", apperrors.NewUpstreamUnreachableError("hospital system is not configured", providers.ErrHospitalSystemUnavailable)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	token, err := s.hmis.ShareProfile(ctx, entities.NewProfileShare(user, hospitalID, s.clock.now()))
	if err != nil {
		return "", apperrors.NewUpstreamUnreachableError("Failed to share profile with hospital", err)
	}

	observability.LoggerFromContext(ctx).Info().
		Str("user_id", userID).
		Str("hospital_id", hospitalID).
		Msg("Profile shared with hospital")
	return token, nil
}

// ListHospitals returns the hospital-system hospitals, or none when the
// hospital system cannot be reached
func (s *ProfileService) ListHospitals(ctx context.Context) []entities.Hospital {
	if s.hmis == nil {
		return []entities.Hospital{}
	}
	hospitals, err := s.hmis.ListHospitals(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to list hospitals")
		return []entities.Hospital{}
	}
	if hospitals == nil {
		return []entities.Hospital{}
	}
	return hospitals
}
