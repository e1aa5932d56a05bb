package entities

import "time"

// CarePackage is a subscription bundle of services
type CarePackage struct {
	ID             string     `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Description    string     `json:"description" db:"description"`
	Category       string     `json:"category" db:"category"`
	Features       StringList `json:"features" db:"features"`
	Price          *float64   `json:"price" db:"price"`
	DurationMonths int        `json:"duration_months" db:"duration_months"`
	IsActive       bool       `json:"-" db:"is_active"`
}

// UserCarePackageStatusActive marks a running subscription
const UserCarePackageStatusActive = "active"

// UserCarePackage links a patient to a care package
type UserCarePackage struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	CarePackageID string    `json:"care_package_id" db:"care_package_id"`
	Status        string    `json:"status" db:"status"`
	StartDate     time.Time `json:"start_date" db:"start_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
