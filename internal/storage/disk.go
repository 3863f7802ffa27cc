package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"warmhome-backend/internal/model"
	"warmhome-backend/pkg/logger"
)

// DiskStorage persists each session (and its transcript) as JSON under
// dataDir, with a small index file for listing and an LRU-ish cache in front.
type DiskStorage struct {
	dataDir   string
	mu        sync.RWMutex
	cache     map[string]*model.Session
	cacheSize int
}

type SessionIndex struct {
	ID             string         `json:"id"`
	Language       model.Language `json:"language"`
	IsActive       bool           `json:"is_active"`
	StartTime      time.Time      `json:"start_time"`
	LastActivityAt time.Time      `json:"last_activity_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func NewDiskStorage(dataDir string, cacheSize int) *DiskStorage {
	return &DiskStorage{
		dataDir:   dataDir,
		cache:     make(map[string]*model.Session),
		cacheSize: cacheSize,
	}
}

func (d *DiskStorage) Init() error {
	if err := d.createDirectories(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	if err := d.loadSessions(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	logger.Info("Disk storage initialized")
	return nil
}

func (d *DiskStorage) Close() error {
	return nil
}

func (d *DiskStorage) createDirectories() error {
	dirs := []string{
		d.dataDir,
		filepath.Join(d.dataDir, "sessions"),
		filepath.Join(d.dataDir, "messages"),
		filepath.Join(d.dataDir, "backup"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

func (d *DiskStorage) loadSessions() error {
	indexes, err := d.readSessionIndex()
	if err != nil {
		if os.IsNotExist(err) {
			return d.saveSessionIndex([]*SessionIndex{})
		}
		return err
	}

	for _, index := range indexes {
		if len(d.cache) >= d.cacheSize {
			break
		}

		session, err := d.loadSessionFromFile(index.ID)
		if err != nil {
			logger.Errorf("Failed to load session %s: %v", index.ID, err)
			continue
		}

		d.cache[index.ID] = session
	}

	return nil
}

func (d *DiskStorage) readSessionIndex() ([]*SessionIndex, error) {
	data, err := os.ReadFile(filepath.Join(d.dataDir, "sessions.json"))
	if err != nil {
		return nil, err
	}

	var indexes []*SessionIndex
	if err := json.Unmarshal(data, &indexes); err != nil {
		return nil, err
	}
	return indexes, nil
}

func (d *DiskStorage) loadSessionFromFile(sessionID string) (*model.Session, error) {
	data, err := os.ReadFile(filepath.Join(d.dataDir, "sessions", sessionID+".json"))
	if err != nil {
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	if session.AttemptCounts == nil {
		session.AttemptCounts = make(map[string]int)
	}

	messages, err := d.loadMessagesFromFile(sessionID)
	if err != nil {
		logger.Errorf("Failed to load messages for session %s: %v", sessionID, err)
		messages = []model.Message{}
	}

	session.Messages = messages
	return &session, nil
}

func (d *DiskStorage) loadMessagesFromFile(sessionID string) ([]model.Message, error) {
	messagesPath := filepath.Join(d.dataDir, "messages", sessionID+".json")

	if _, err := os.Stat(messagesPath); os.IsNotExist(err) {
		return []model.Message{}, nil
	}

	data, err := os.ReadFile(messagesPath)
	if err != nil {
		return nil, err
	}

	var messages []model.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

func (d *DiskStorage) saveSessionIndex(indexes []*SessionIndex) error {
	return d.writeAtomic(filepath.Join(d.dataDir, "sessions.json"), indexes)
}

func (d *DiskStorage) saveSessionToFile(session *model.Session) error {
	// Transcript lives in its own file; strip it before writing the session.
	sessionData := *session
	sessionData.Messages = nil
	return d.writeAtomic(filepath.Join(d.dataDir, "sessions", session.ID+".json"), sessionData)
}

func (d *DiskStorage) saveMessagesToFile(sessionID string, messages []model.Message) error {
	return d.writeAtomic(filepath.Join(d.dataDir, "messages", sessionID+".json"), messages)
}

func (d *DiskStorage) writeAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tempPath, path)
}

func (d *DiskStorage) CreateSession(session *model.Session) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored := session.Clone()
	if err := d.persistSession(stored); err != nil {
		return err
	}

	d.cache[stored.ID] = stored
	d.evictCache()

	return nil
}

func (d *DiskStorage) GetSession(sessionID string) (*model.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	session, err := d.sessionLocked(sessionID)
	if err != nil {
		return nil, err
	}

	clone := session.Clone()
	d.cache[sessionID] = session
	d.evictCache()

	return clone, nil
}

func (d *DiskStorage) UpdateSession(session *model.Session) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored, err := d.sessionLocked(session.ID)
	if err != nil {
		return err
	}

	merged := applyUpdate(stored, session)
	if err := d.persistSession(merged); err != nil {
		return err
	}

	d.cache[session.ID] = merged

	return nil
}

func (d *DiskStorage) persistSession(session *model.Session) error {
	if err := d.saveSessionToFile(session); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	if err := d.saveMessagesToFile(session.ID, session.Messages); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	if err := d.updateSessionIndex(); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	return nil
}

func (d *DiskStorage) DeleteSession(sessionID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	sessionPath := filepath.Join(d.dataDir, "sessions", sessionID+".json")
	messagesPath := filepath.Join(d.dataDir, "messages", sessionID+".json")

	if _, err := os.Stat(sessionPath); os.IsNotExist(err) {
		return ErrSessionNotFound
	}

	if err := os.Remove(sessionPath); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	if _, err := os.Stat(messagesPath); err == nil {
		if err := os.Remove(messagesPath); err != nil {
			return fmt.Errorf("%w: %v", ErrFileOperation, err)
		}
	}

	delete(d.cache, sessionID)

	return d.updateSessionIndex()
}

// ListSessions loads full sessions so callers (the inactivity sweeper) can
// inspect activity timestamps, not just index metadata.
func (d *DiskStorage) ListSessions() ([]*model.Session, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	indexes, err := d.readSessionIndex()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	sessions := make([]*model.Session, 0, len(indexes))
	for _, index := range indexes {
		if cached, ok := d.cache[index.ID]; ok {
			sessions = append(sessions, cached.Clone())
			continue
		}
		session, err := d.loadSessionFromFile(index.ID)
		if err != nil {
			logger.Errorf("Failed to load session %s: %v", index.ID, err)
			continue
		}
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})

	return sessions, nil
}

func (d *DiskStorage) AddMessage(sessionID string, message *model.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	session, err := d.sessionLocked(sessionID)
	if err != nil {
		return err
	}

	session.Messages = append(session.Messages, message.Clone())

	if err := d.saveMessagesToFile(sessionID, session.Messages); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	d.cache[sessionID] = session
	return nil
}

func (d *DiskStorage) GetMessages(sessionID string) ([]*model.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	session, err := d.sessionLocked(sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]*model.Message, len(session.Messages))
	for i := range session.Messages {
		msg := session.Messages[i].Clone()
		messages[i] = &msg
	}

	return messages, nil
}

func (d *DiskStorage) SetFeedback(sessionID, messageID string, helpful bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	session, err := d.sessionLocked(sessionID)
	if err != nil {
		return err
	}

	for i := range session.Messages {
		if session.Messages[i].ID == messageID {
			v := helpful
			session.Messages[i].IsHelpful = &v
			if err := d.saveMessagesToFile(sessionID, session.Messages); err != nil {
				return fmt.Errorf("%w: %v", ErrFileOperation, err)
			}
			d.cache[sessionID] = session
			return nil
		}
	}

	return ErrMessageNotFound
}

// sessionLocked fetches a session via cache then disk. Caller holds d.mu.
func (d *DiskStorage) sessionLocked(sessionID string) (*model.Session, error) {
	if session, ok := d.cache[sessionID]; ok {
		return session, nil
	}

	session, err := d.loadSessionFromFile(sessionID)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrFileOperation, err)
	}
	return session, nil
}

func (d *DiskStorage) updateSessionIndex() error {
	entries, err := os.ReadDir(filepath.Join(d.dataDir, "sessions"))
	if err != nil {
		return err
	}

	indexes := make([]*SessionIndex, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(".json")]
		session, err := d.loadSessionFromFile(id)
		if err != nil {
			continue
		}
		indexes = append(indexes, &SessionIndex{
			ID:             session.ID,
			Language:       session.Language,
			IsActive:       session.IsActive,
			StartTime:      session.StartTime,
			LastActivityAt: session.LastActivityAt,
			UpdatedAt:      session.UpdatedAt,
		})
	}

	return d.saveSessionIndex(indexes)
}

func (d *DiskStorage) evictCache() {
	if d.cacheSize <= 0 || len(d.cache) <= d.cacheSize {
		return
	}

	// Drop the least recently updated sessions until we fit again.
	type entry struct {
		id string
		at time.Time
	}
	entries := make([]entry, 0, len(d.cache))
	for id, s := range d.cache {
		entries = append(entries, entry{id, s.UpdatedAt})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	for _, e := range entries {
		if len(d.cache) <= d.cacheSize {
			break
		}
		delete(d.cache, e.id)
	}
}

// Backup copies the current index and session files into backup/<timestamp>.
func (d *DiskStorage) Backup() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stamp := time.Now().Format("20060102-150405")
	backupDir := filepath.Join(d.dataDir, "backup", stamp)
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	for _, sub := range []string{"sessions", "messages"} {
		srcDir := filepath.Join(d.dataDir, sub)
		dstDir := filepath.Join(backupDir, sub)
		if err := os.MkdirAll(dstDir, 0755); err != nil {
			return fmt.Errorf("%w: %v", ErrFileOperation, err)
		}

		entries, err := os.ReadDir(srcDir)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFileOperation, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(srcDir, entry.Name()))
			if err != nil {
				return fmt.Errorf("%w: %v", ErrFileOperation, err)
			}
			if err := os.WriteFile(filepath.Join(dstDir, entry.Name()), data, 0644); err != nil {
				return fmt.Errorf("%w: %v", ErrFileOperation, err)
			}
		}
	}

	logger.Infof("Storage backup written to %s", backupDir)
	return nil
}
