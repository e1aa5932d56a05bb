package entities

import "time"

// PeerSupportRoom is the shared anonymous support room
const PeerSupportRoom = "peer_support"

// ChatMessageTypeText is the only message type the API accepts
const ChatMessageTypeText = "text"

// ChatMessage is a message posted to a room. SenderID is stored for
// moderation and never returned to other patients.
type ChatMessage struct {
	ID          string    `json:"id" db:"id"`
	SenderID    string    `json:"-" db:"sender_id"`
	RoomID      string    `json:"room_id" db:"room_id"`
	Message     string    `json:"message" db:"message"`
	MessageType string    `json:"message_type" db:"message_type"`
	IsAnonymous bool      `json:"-" db:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// PeerMessage is how a room message is shown to other patients
type PeerMessage struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Sender    string    `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
}

// View hides the sender behind "Anonymous" or a generic "User" label
func (m *ChatMessage) View() PeerMessage {
	sender := "User"
	if m.IsAnonymous {
		sender = "Anonymous"
	}
	return PeerMessage{
		ID:        m.ID,
		Message:   m.Message,
		Sender:    sender,
		CreatedAt: m.CreatedAt,
	}
}
