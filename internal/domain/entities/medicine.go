package entities

import "time"

// MedicineTracker is a medicine schedule kept by a patient
type MedicineTracker struct {
	ID           string     `json:"id" db:"id"`
	UserID       string     `json:"user_id" db:"user_id"`
	MedicineName string     `json:"medicine_name" db:"medicine_name"`
	Dosage       string     `json:"dosage" db:"dosage"`
	Frequency    string     `json:"frequency" db:"frequency"`
	Timing       StringList `json:"timing" db:"timing"`
	StartDate    time.Time  `json:"start_date" db:"start_date"`
	EndDate      *time.Time `json:"end_date" db:"end_date"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// ActiveOn reports whether the tracker covers the given day
func (m *MedicineTracker) ActiveOn(day time.Time) bool {
	if !m.IsActive {
		return false
	}
	d := day.Format(DateLayout)
	if d < m.StartDate.Format(DateLayout) {
		return false
	}
	if m.EndDate != nil && d > m.EndDate.Format(DateLayout) {
		return false
	}
	return true
}

// MedicineTrackerRequest is the tracker creation input
type MedicineTrackerRequest struct {
	MedicineName string   `json:"medicine_name"`
	Dosage       string   `json:"dosage"`
	Frequency    string   `json:"frequency"`
	Timing       []string `json:"timing"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
}

// Prescription is an uploaded prescription and what was read from it
type Prescription struct {
	ID               string                `json:"id" db:"id"`
	UserID           string                `json:"user_id" db:"user_id"`
	ImageKey         string                `json:"-" db:"image_key"`
	Medicines        PrescribedMedicines   `json:"medicines" db:"medicines"`
	DoctorName       string                `json:"doctor_name,omitempty" db:"doctor_name"`
	PrescriptionDate string                `json:"prescription_date,omitempty" db:"prescription_date"`
	Analyzed         bool                  `json:"analyzed" db:"analyzed"`
	CreatedAt        time.Time             `json:"created_at" db:"created_at"`
	Analysis         *PrescriptionAnalysis `json:"analysis,omitempty" db:"-"`
}
