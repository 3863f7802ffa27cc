package model

import "time"

type SessionResponse struct {
	SessionID          string      `json:"session_id"`
	StartTime          time.Time   `json:"start_time"`
	LastActivityAt     time.Time   `json:"last_activity_at"`
	IsActive           bool        `json:"is_active"`
	VolunteerConnected bool        `json:"volunteer_connected"`
	Language           Language    `json:"language"`
	Context            UserContext `json:"context"`
	MessageCount       int         `json:"message_count"`
}

// ChatEvent is one SSE frame on the send endpoint: the user message echo,
// the typing indicator, the bot reply, or a scheduled follow-up message.
type ChatEvent struct {
	Type      string   `json:"type"` // "user", "typing", "bot", "follow_up"
	SessionID string   `json:"session_id"`
	Message   *Message `json:"message,omitempty"`
	Timestamp int64    `json:"timestamp"`
}
