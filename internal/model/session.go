package model

import "time"

// Message is one entry in a session transcript. Messages are append-only;
// the only post-append mutation is the feedback annotation on a bot reply.
type Message struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	Type       MessageType `json:"type"`
	Timestamp  time.Time   `json:"timestamp"`
	Language   Language    `json:"language"`
	QuestionID string      `json:"question_id,omitempty"` // links a bot reply to its originating question
	Confidence Confidence  `json:"confidence,omitempty"`
	IsHelpful  *bool       `json:"is_helpful,omitempty"`
	HasActions bool        `json:"has_actions,omitempty"`
}

// Session is one chat lifecycle. Exactly one active session exists per
// client; once expired it is terminal and a new session must be started.
type Session struct {
	ID                 string         `json:"id"`
	StartTime          time.Time      `json:"start_time"`
	LastActivityAt     time.Time      `json:"last_activity_at"`
	IsActive           bool           `json:"is_active"`
	VolunteerConnected bool           `json:"volunteer_connected"`
	Language           Language       `json:"language"`
	AttemptCounts      map[string]int `json:"attempt_counts"` // questionID -> send attempts
	Context            UserContext    `json:"context"`
	Messages           []Message      `json:"messages"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	if m.IsHelpful != nil {
		v := *m.IsHelpful
		m.IsHelpful = &v
	}
	return m
}

// Clone returns a deep copy of the session. Storage hands out clones so no
// two goroutines ever share a live session pointer.
func (s *Session) Clone() *Session {
	c := *s
	c.AttemptCounts = make(map[string]int, len(s.AttemptCounts))
	for k, v := range s.AttemptCounts {
		c.AttemptCounts[k] = v
	}
	c.Messages = make([]Message, len(s.Messages))
	for i := range s.Messages {
		c.Messages[i] = s.Messages[i].Clone()
	}
	c.Context = s.Context.Clone()
	return &c
}

// Touch bumps LastActivityAt, keeping it monotonically non-decreasing.
func (s *Session) Touch(now time.Time) {
	if now.After(s.LastActivityAt) {
		s.LastActivityAt = now
	}
	if now.After(s.UpdatedAt) {
		s.UpdatedAt = now
	}
}

// IdleFor reports how long the session has been without recorded activity.
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastActivityAt)
}

// UnhelpfulCount returns how many bot replies in the transcript have been
// marked not helpful. Drives the ask-for-detail vs volunteer-offer choice.
func (s *Session) UnhelpfulCount() int {
	n := 0
	for i := range s.Messages {
		if s.Messages[i].IsHelpful != nil && !*s.Messages[i].IsHelpful {
			n++
		}
	}
	return n
}

// AIResponse is the gateway's post-processed view of one completion call.
// It is transient: produced per request, never persisted as-is.
type AIResponse struct {
	Content              string     `json:"content"`
	Confidence           Confidence `json:"confidence"`
	IsHousingRelated     bool       `json:"is_housing_related"`
	SuggestedActions     []string   `json:"suggested_actions,omitempty"` // at most 5
	RequiresUrgentAction bool       `json:"requires_urgent_action"`
}
