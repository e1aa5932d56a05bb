package entities

import (
	"strings"
	"time"
)

// Doctor sources
const (
	DoctorSourceLocal = "local"
	DoctorSourceHMIS  = "hmis"

	// HMISIDPrefix namespaces hospital-system doctor ids so they cannot
	// collide with local ids
	HMISIDPrefix = "hmis_"
)

// WeeklyAvailability maps a lowercase weekday name to "HH:MM" slots
type WeeklyAvailability map[string][]string

// SlotsFor returns the configured slots for the weekday of date
func (w WeeklyAvailability) SlotsFor(date time.Time) []string {
	if w == nil {
		return nil
	}
	return w[strings.ToLower(date.Weekday().String())]
}

// Doctor is the unified presentation shape for local and hospital-system
// doctors. Source tells them apart.
type Doctor struct {
	ID              string             `json:"id" db:"id"`
	Name            string             `json:"name" db:"name"`
	Specialty       string             `json:"specialty" db:"specialty"`
	Qualification   string             `json:"qualification,omitempty" db:"qualification"`
	ExperienceYears *int               `json:"experience_years" db:"experience_years"`
	HospitalName    string             `json:"hospital_name,omitempty" db:"hospital_name"`
	ConsultationFee *float64           `json:"consultation_fee" db:"consultation_fee"`
	Rating          *float64           `json:"rating" db:"rating"`
	ProfileImage    string             `json:"profile_image,omitempty" db:"profile_image"`
	Availability    WeeklyAvailability `json:"-" db:"availability"`
	IsActive        bool               `json:"-" db:"is_active"`
	Source          string             `json:"source"`
	HMISID          string             `json:"hmis_id,omitempty"`
}

// IsHMISDoctorID reports whether id belongs to the hospital-system namespace
func IsHMISDoctorID(id string) bool {
	return strings.HasPrefix(id, HMISIDPrefix)
}

// HMISDoctorID returns id without the hospital-system prefix
func HMISDoctorID(id string) string {
	return strings.TrimPrefix(id, HMISIDPrefix)
}

// DoctorFilter narrows a doctor search; empty fields do not filter
type DoctorFilter struct {
	Specialty string
	Name      string
}

// AvailabilitySet is the ordered list of free slots for one doctor on one date
type AvailabilitySet struct {
	DoctorID       string   `json:"doctor_id"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
}
