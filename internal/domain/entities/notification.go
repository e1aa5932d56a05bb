package entities

import "time"

// NotificationType represents the notification purpose
type NotificationType string

const (
	NotificationAppointment         NotificationType = "appointment"
	NotificationAppointmentReminder NotificationType = "appointment_reminder"
	NotificationMedicineReminder    NotificationType = "medicine_reminder"
	NotificationDocumentUpload      NotificationType = "document_upload"
	NotificationLabResult           NotificationType = "lab_result"
	NotificationCarePackage         NotificationType = "care_package"
	NotificationAmbulance           NotificationType = "ambulance"
)

// Notification is an in-app message for a patient
type Notification struct {
	ID               string           `json:"id" db:"id"`
	UserID           string           `json:"user_id" db:"user_id"`
	Title            string           `json:"title" db:"title"`
	Message          string           `json:"message" db:"message"`
	NotificationType NotificationType `json:"notification_type" db:"notification_type"`
	IsRead           bool             `json:"is_read" db:"is_read"`
	ScheduledFor     time.Time        `json:"scheduled_for" db:"scheduled_for"`
	ExtraData        JSONMap          `json:"extra_data" db:"extra_data"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}
