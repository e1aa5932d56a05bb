package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

var userColumns = []interface{}{
	"id", "name", "mobile_number", "email", "password_hash", "abha_id",
	"date_of_birth", "gender", "address", "emergency_contact", "profile_image",
	"is_verified", "created_at", "updated_at",
}

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new user
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	record := goqu.Record{
		"id":                user.ID,
		"name":              user.Name,
		"mobile_number":     user.MobileNumber,
		"email":             nullableString(user.Email),
		"password_hash":     nullableString(user.PasswordHash),
		"abha_id":           nullableString(user.AbhaID),
		"date_of_birth":     nullableTime(user.DateOfBirth),
		"gender":            nullableString(user.Gender),
		"address":           nullableString(user.Address),
		"emergency_contact": nullableString(user.EmergencyContact),
		"profile_image":     nullableString(user.ProfileImage),
		"is_verified":       user.IsVerified,
		"created_at":        user.CreatedAt,
		"updated_at":        user.UpdatedAt,
	}

	query, args, err := a.db.Insert("users").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create user", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return a.getBy(ctx, goqu.Ex{"id": id}, fmt.Sprintf("user with id %s not found", id))
}

// GetByMobile retrieves a user by mobile number
func (a *UserAdapter) GetByMobile(ctx context.Context, mobile string) (*entities.User, error) {
	return a.getBy(ctx, goqu.Ex{"mobile_number": mobile}, "user not found")
}

// GetByEmail retrieves a user by email
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return a.getBy(ctx, goqu.Ex{"email": email}, "user not found")
}

// GetByAbhaID retrieves a user by ABHA ID
func (a *UserAdapter) GetByAbhaID(ctx context.Context, abhaID string) (*entities.User, error) {
	return a.getBy(ctx, goqu.Ex{"abha_id": abhaID}, "user not found")
}

func (a *UserAdapter) getBy(ctx context.Context, where goqu.Ex, notFound string) (*entities.User, error) {
	query, args, err := a.db.Select(userColumns...).From("users").Where(where).Limit(1).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	user, err := scanUser(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}
	return user, nil
}

// Update persists profile fields of an existing user
func (a *UserAdapter) Update(ctx context.Context, user *entities.User) error {
	user.UpdatedAt = time.Now().UTC()

	record := goqu.Record{
		"name":              user.Name,
		"email":             nullableString(user.Email),
		"password_hash":     nullableString(user.PasswordHash),
		"abha_id":           nullableString(user.AbhaID),
		"date_of_birth":     nullableTime(user.DateOfBirth),
		"gender":            nullableString(user.Gender),
		"address":           nullableString(user.Address),
		"emergency_contact": nullableString(user.EmergencyContact),
		"profile_image":     nullableString(user.ProfileImage),
		"is_verified":       user.IsVerified,
		"updated_at":        user.UpdatedAt,
	}

	query, args, err := a.db.Update("users").Set(record).Where(goqu.Ex{"id": user.ID}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update user", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", user.ID))
	}
	return nil
}

func scanUser(row rowScanner) (*entities.User, error) {
	user := &entities.User{}
	var email, passwordHash, abhaID, gender, address, emergency, image sql.NullString
	var dob sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.MobileNumber,
		&email,
		&passwordHash,
		&abhaID,
		&dob,
		&gender,
		&address,
		&emergency,
		&image,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Email = email.String
	user.PasswordHash = passwordHash.String
	user.AbhaID = abhaID.String
	user.DateOfBirth = timePtr(dob)
	user.Gender = gender.String
	user.Address = address.String
	user.EmergencyContact = emergency.String
	user.ProfileImage = image.String
	return user, nil
}
