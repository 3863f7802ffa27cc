// Package session owns the chat session lifecycle: creation, activity
// tracking, and the 15-minute inactivity expiry. A session is either Active
// or Inactive; Inactive is terminal and a new session must be started.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"warmhome-backend/internal/i18n"
	"warmhome-backend/internal/model"
	"warmhome-backend/internal/storage"
	"warmhome-backend/pkg/logger"
)

// ErrSessionInactive is returned for operations attempted after expiry.
// Callers treat it as a prompt to start a new chat, not as a failure.
var ErrSessionInactive = errors.New("session is inactive")

// Clock supplies the current time; injected so expiry is testable without
// wall-clock sleeps.
type Clock func() time.Time

type Manager struct {
	store     storage.Storage
	clock     Clock
	idleLimit time.Duration
	tick      time.Duration

	mu       sync.Mutex
	watchers map[string]chan struct{}
}

// NewManager builds a Manager. tick <= 0 disables the background watchers;
// expiry then relies on the lazy check performed on each interaction.
func NewManager(store storage.Storage, idleLimit, tick time.Duration, clock Clock) *Manager {
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		store:     store,
		clock:     clock,
		idleLimit: idleLimit,
		tick:      tick,
		watchers:  make(map[string]chan struct{}),
	}
}

// Start creates a fresh Active session and appends the localized welcome
// message as its first transcript entry.
func (m *Manager) Start(lang model.Language) (*model.Session, error) {
	if !model.ValidLanguage(lang) {
		lang = model.LangEnglish
	}

	now := m.clock()
	session := &model.Session{
		ID:             uuid.NewString(),
		StartTime:      now,
		LastActivityAt: now,
		IsActive:       true,
		Language:       lang,
		AttemptCounts:  make(map[string]int),
		Context:        model.NewUserContext(),
		Messages:       make([]model.Message, 0),
		UpdatedAt:      now,
	}

	if err := m.store.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	welcome := &model.Message{
		ID:        uuid.NewString(),
		Content:   i18n.Text(i18n.Welcome, lang),
		Type:      model.MessageBot,
		Timestamp: now,
		Language:  lang,
	}
	if err := m.store.AddMessage(session.ID, welcome); err != nil {
		return nil, fmt.Errorf("failed to add welcome message: %w", err)
	}

	m.watch(session.ID)

	logger.Infof("Session %s started (language=%s)", session.ID, lang)
	return session, nil
}

// Get returns the session after the lazy expiry check, so callers always
// see the correct state even when watchers are disabled.
func (m *Manager) Get(sessionID string) (*model.Session, error) {
	if _, err := m.ExpireIfIdle(sessionID); err != nil {
		return nil, err
	}
	return m.store.GetSession(sessionID)
}

// RecordActivity bumps the inactivity countdown. Any user-facing action
// counts: typing, submit, language change, feedback, modal open or close.
func (m *Manager) RecordActivity(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.store.GetSession(sessionID)
	if err != nil {
		return err
	}
	if !session.IsActive {
		return ErrSessionInactive
	}
	if m.expiredLocked(session) {
		return ErrSessionInactive
	}

	session.Touch(m.clock())
	return m.store.UpdateSession(session)
}

// ExpireIfIdle transitions the session to Inactive when the idle limit has
// been reached (inclusive). It appends the localized "session expired"
// system message exactly once and reports whether the transition happened.
func (m *Manager) ExpireIfIdle(sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.store.GetSession(sessionID)
	if err != nil {
		return false, err
	}
	if !session.IsActive {
		return false, nil
	}
	return m.expiredLocked(session), nil
}

// expiredLocked performs the actual transition. Caller holds m.mu and has
// verified session.IsActive.
func (m *Manager) expiredLocked(session *model.Session) bool {
	now := m.clock()
	if session.IdleFor(now) < m.idleLimit {
		return false
	}

	session.IsActive = false
	session.VolunteerConnected = false
	session.UpdatedAt = now
	if err := m.store.UpdateSession(session); err != nil {
		logger.Errorf("Failed to persist expiry for session %s: %v", session.ID, err)
		return false
	}

	expired := &model.Message{
		ID:        uuid.NewString(),
		Content:   i18n.Text(i18n.SessionExpired, session.Language),
		Type:      model.MessageSystem,
		Timestamp: now,
		Language:  session.Language,
	}
	if err := m.store.AddMessage(session.ID, expired); err != nil {
		logger.Errorf("Failed to append expiry message for session %s: %v", session.ID, err)
	}

	m.stopWatcherLocked(session.ID)
	logger.Infof("Session %s expired after %s of inactivity", session.ID, m.idleLimit)
	return true
}

// NewChat discards the given session and its transcript and starts a fresh
// one in the requested language.
func (m *Manager) NewChat(sessionID string, lang model.Language) (*model.Session, error) {
	m.mu.Lock()
	m.stopWatcherLocked(sessionID)
	m.mu.Unlock()

	if sessionID != "" {
		if err := m.store.DeleteSession(sessionID); err != nil && err != storage.ErrSessionNotFound {
			return nil, fmt.Errorf("failed to discard session: %w", err)
		}
	}

	return m.Start(lang)
}

// Shutdown stops every per-session watcher. Sessions themselves stay in
// the store.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.watchers {
		m.stopWatcherLocked(id)
	}
}

// watch runs the per-session inactivity ticker. The watcher is owned by
// the session lifecycle: it stops on expiry, NewChat, and Shutdown.
func (m *Manager) watch(sessionID string) {
	if m.tick <= 0 {
		return
	}

	m.mu.Lock()
	if _, exists := m.watchers[sessionID]; exists {
		m.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	m.watchers[sessionID] = stop
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(m.tick)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				expired, err := m.ExpireIfIdle(sessionID)
				if err == storage.ErrSessionNotFound || expired {
					return
				}
				if err != nil {
					logger.Errorf("Inactivity check failed for session %s: %v", sessionID, err)
				}
			}
		}
	}()
}

func (m *Manager) stopWatcherLocked(sessionID string) {
	if stop, ok := m.watchers[sessionID]; ok {
		close(stop)
		delete(m.watchers, sessionID)
	}
}
