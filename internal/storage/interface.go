package storage

import (
	"warmhome-backend/internal/model"
)

// Storage implementations never share live pointers with callers: reads
// return deep copies and writes copy the argument in, so sessions can be
// handled across goroutines without the store's locks leaking out.
// UpdateSession merges rather than overwrites; see applyUpdate.
type Storage interface {
	// Session lifecycle
	CreateSession(session *model.Session) error
	GetSession(sessionID string) (*model.Session, error)
	UpdateSession(session *model.Session) error
	DeleteSession(sessionID string) error
	ListSessions() ([]*model.Session, error)

	// Transcript. Messages are append-only; SetFeedback is the single
	// allowed post-append mutation.
	AddMessage(sessionID string, message *model.Message) error
	GetMessages(sessionID string) ([]*model.Message, error)
	SetFeedback(sessionID, messageID string, helpful bool) error

	// Store management
	Init() error
	Close() error
	Backup() error
}

// applyUpdate merges an updated session copy into the stored one. The
// transcript stays owned by AddMessage/SetFeedback, LastActivityAt and
// UpdatedAt never move backwards, and an Inactive session stays Inactive,
// so a caller holding a stale copy cannot regress activity or resurrect an
// expired session.
func applyUpdate(stored, incoming *model.Session) *model.Session {
	merged := incoming.Clone()
	merged.Messages = stored.Messages
	if stored.LastActivityAt.After(merged.LastActivityAt) {
		merged.LastActivityAt = stored.LastActivityAt
	}
	if stored.UpdatedAt.After(merged.UpdatedAt) {
		merged.UpdatedAt = stored.UpdatedAt
	}
	if !stored.IsActive {
		merged.IsActive = false
	}
	return merged
}
