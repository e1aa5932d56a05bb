package entities

import "time"

// Hospital is a hospital known to the hospital management system
type Hospital struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// ProfileShare is the patient profile pushed to a hospital
type ProfileShare struct {
	PatientID        string  `json:"patient_id"`
	Name             string  `json:"name"`
	MobileNumber     string  `json:"mobile_number"`
	Email            string  `json:"email"`
	DateOfBirth      *string `json:"date_of_birth"`
	Gender           string  `json:"gender"`
	Address          string  `json:"address"`
	EmergencyContact string  `json:"emergency_contact"`
	HospitalID       string  `json:"hospital_id"`
	SharedAt         string  `json:"shared_at"`
}

// NewProfileShare builds the share payload for user at the given instant
func NewProfileShare(user *User, hospitalID string, now time.Time) ProfileShare {
	share := ProfileShare{
		PatientID:        user.ID,
		Name:             user.Name,
		MobileNumber:     user.MobileNumber,
		Email:            user.Email,
		Gender:           user.Gender,
		Address:          user.Address,
		EmergencyContact: user.EmergencyContact,
		HospitalID:       hospitalID,
		SharedAt:         now.UTC().Format(time.RFC3339),
	}
	if user.DateOfBirth != nil {
		dob := user.DateOfBirth.Format(DateLayout)
		share.DateOfBirth = &dob
	}
	return share
}

// HMISBooking is an appointment forwarded to the hospital system
type HMISBooking struct {
	PatientID       string `json:"patient_id"`
	PatientName     string `json:"patient_name"`
	PatientMobile   string `json:"patient_mobile"`
	DoctorID        string `json:"doctor_id"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Symptoms        string `json:"symptoms"`
	BookedVia       string `json:"booked_via"`
}

// HMISBookingResult is the hospital system's booking confirmation
type HMISBookingResult struct {
	AppointmentID      string `json:"appointment_id"`
	ConfirmationNumber string `json:"confirmation_number"`
}

// InboundDocument is a document pushed by a hospital
type InboundDocument struct {
	PatientID    string `json:"patient_id"`
	DocumentType string `json:"document_type"`
	Title        string `json:"title"`
	FileContent  string `json:"file_content"`
	FileType     string `json:"file_type"`
	HospitalID   string `json:"hospital_id"`
	DoctorName   string `json:"doctor_name"`
}
