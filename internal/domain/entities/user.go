package entities

import (
	"time"
)

// User represents a patient account
type User struct {
	ID               string     `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	MobileNumber     string     `json:"mobile_number" db:"mobile_number"`
	Email            string     `json:"email,omitempty" db:"email"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	AbhaID           string     `json:"abha_id,omitempty" db:"abha_id"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Gender           string     `json:"gender,omitempty" db:"gender"`
	Address          string     `json:"address,omitempty" db:"address"`
	EmergencyContact string     `json:"emergency_contact,omitempty" db:"emergency_contact"`
	ProfileImage     string     `json:"profile_image,omitempty" db:"profile_image"`
	IsVerified       bool       `json:"is_verified" db:"is_verified"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Age returns the age in whole years at the given instant, or -1 when the
// date of birth is unknown
func (u *User) Age(now time.Time) int {
	if u.DateOfBirth == nil {
		return -1
	}
	dob := *u.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// ProfileUpdate carries the optional fields of a profile edit
type ProfileUpdate struct {
	Name             *string `json:"name"`
	Email            *string `json:"email"`
	DateOfBirth      *string `json:"date_of_birth"`
	Gender           *string `json:"gender"`
	Address          *string `json:"address"`
	EmergencyContact *string `json:"emergency_contact"`
}

// ProfileQR is the payload encoded into a profile QR code
type ProfileQR struct {
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	Mobile           string `json:"mobile"`
	EmergencyContact string `json:"emergency_contact"`
}

// QRPayload returns the emergency card data of the user
func (u *User) QRPayload() ProfileQR {
	return ProfileQR{
		UserID:           u.ID,
		Name:             u.Name,
		Mobile:           u.MobileNumber,
		EmergencyContact: u.EmergencyContact,
	}
}
