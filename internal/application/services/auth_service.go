package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpDigits    = 6
	otpKeyPrefix = "otp:"

	defaultOTPTTL = 10 * time.Minute
)

// OTPSender delivers one-time passwords to a mobile number
type OTPSender interface {
	SendOTP(ctx context.Context, mobile, code string, validFor time.Duration) error
}

// AuthResult is returned by every successful login
type AuthResult struct {
	AccessToken string         `json:"access_token"`
	User        *entities.User `json:"user"`
}

// AuthService handles OTP, email and ABHA logins
type AuthService struct {
	users  repositories.UserRepository
	cache  providers.CacheProvider
	sender OTPSender
	tokens *TokenIssuer
	otpTTL time.Duration
	clock  Clock
}

// NewAuthService creates a new auth service
func NewAuthService(
	users repositories.UserRepository,
	cache providers.CacheProvider,
	sender OTPSender,
	tokens *TokenIssuer,
	otpTTL time.Duration,
	clock Clock,
) *AuthService {
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	return &AuthService{
		users:  users,
		cache:  cache,
		sender: sender,
		tokens: tokens,
		otpTTL: otpTTL,
		clock:  clock,
	}
}

// RequestOTP generates a code for mobile, stores it until it expires and
// sends it. A new request replaces any outstanding code.
func (s *AuthService) RequestOTP(ctx context.Context, mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return apperrors.NewValidationError("Mobile number is required")
	}

	code, err := generateOTP()
	if err != nil {
		return apperrors.NewInternalError("Failed to generate OTP", err)
	}

	if err := s.cache.Set(ctx, otpKeyPrefix+mobile, []byte(code), int(s.otpTTL.Seconds())); err != nil {
		return apperrors.NewInternalError("Failed to generate OTP", err)
	}

	if err := s.sender.SendOTP(ctx, mobile, code, s.otpTTL); err != nil {
		return apperrors.NewExternalError("Failed to send OTP", err)
	}
	return nil
}

// VerifyOTP consumes a valid code and logs the user in, creating the account
// on first login
func (s *AuthService) VerifyOTP(ctx context.Context, mobile, code string) (*AuthResult, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" || code == "" {
		return nil, apperrors.NewValidationError("Mobile number and OTP are required")
	}

	key := otpKeyPrefix + mobile
	stored, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, providers.ErrCacheMiss) {
			return nil, apperrors.NewUnauthorizedError("Invalid or expired OTP")
		}
		return nil, apperrors.NewInternalError("Failed to verify OTP", err)
	}
	if subtle.ConstantTimeCompare(stored, []byte(code)) != 1 {
		return nil, apperrors.NewUnauthorizedError("Invalid or expired OTP")
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		return nil, apperrors.NewInternalError("Failed to verify OTP", err)
	}

	user, err := s.users.GetByMobile(ctx, mobile)
	switch {
	case apperrors.IsType(err, apperrors.ErrorTypeNotFound):
		user = s.newUser("User_" + lastN(mobile, 4))
		user.MobileNumber = mobile
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		observability.LoggerFromContext(ctx).Info().Str("user_id", user.ID).Msg("User registered via OTP")
	case err != nil:
		return nil, err
	case !user.IsVerified:
		user.IsVerified = true
		user.UpdatedAt = s.clock.now()
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return s.login(user)
}

// LoginWithEmail checks an email and password pair
func (s *AuthService) LoginWithEmail(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewUnauthorizedError("Invalid email or password")
		}
		return nil, err
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.NewUnauthorizedError("Invalid email or password")
	}

	return s.login(user)
}

// LoginWithABHA logs in by ABHA id, creating the account on first login
func (s *AuthService) LoginWithABHA(ctx context.Context, abhaID string) (*AuthResult, error) {
	abhaID = strings.TrimSpace(abhaID)
	if abhaID == "" {
		return nil, apperrors.NewValidationError("ABHA ID is required")
	}

	user, err := s.users.GetByAbhaID(ctx, abhaID)
	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		user = s.newUser("ABHA_User_" + lastN(abhaID, 4))
		user.AbhaID = abhaID
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return s.login(user)
}

// Authenticate resolves an access token to a user id
func (s *AuthService) Authenticate(token string) (string, error) {
	return s.tokens.Parse(token)
}

func (s *AuthService) login(user *entities.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: token, User: user}, nil
}

func (s *AuthService) newUser(name string) *entities.User {
	now := s.clock.now()
	return &entities.User{
		ID:         uuid.New().String(),
		Name:       name,
		IsVerified: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
