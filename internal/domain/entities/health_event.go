package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// HealthEventType represents the type of a patient-facing event
type HealthEventType string

const (
	HealthEventNotificationCreated HealthEventType = "notification_created"
	HealthEventAppointmentBooked   HealthEventType = "appointment_booked"
	HealthEventDocumentReceived    HealthEventType = "document_received"
)

// HealthEvent is published on the event bus when something a patient should
// hear about happens
type HealthEvent struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	EventType HealthEventType        `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

// NewHealthEvent creates a new health event
func NewHealthEvent(userID string, eventType HealthEventType, payload map[string]interface{}) *HealthEvent {
	return &HealthEvent{
		ID:        generateEventID(),
		UserID:    userID,
		EventType: eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// generateEventID generates a unique event ID
func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

// randomString generates a random string of specified length
func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
