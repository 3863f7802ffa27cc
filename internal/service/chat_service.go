// Package service coordinates the classifier, session manager, and AI
// gateway into the conversation flow: user message in, bot reply plus at
// most one scheduled follow-up out.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"warmhome-backend/internal/classifier"
	"warmhome-backend/internal/config"
	"warmhome-backend/internal/gateway"
	"warmhome-backend/internal/i18n"
	"warmhome-backend/internal/model"
	"warmhome-backend/internal/session"
	"warmhome-backend/internal/storage"
	"warmhome-backend/pkg/logger"
)

// FollowUp is a message the orchestrator wants delivered after a delay.
// Delays are data, not timers, so sequencing is testable without sleeping;
// the transport layer decides how to honor them.
type FollowUp struct {
	Delay   time.Duration `json:"delay"`
	Message model.Message `json:"message"`
}

// SendResult carries the asynchronous outcome of one user message.
type SendResult struct {
	Bot       model.Message
	FollowUps []FollowUp
}

type ChatService struct {
	store    storage.Storage
	sessions *session.Manager
	gateway  *gateway.Gateway
	cfg      config.AssistantConfig
	clock    session.Clock

	// One mutex per session serializes the read-modify-write turns. The
	// gateway call itself runs outside the lock, so a slow completion
	// never blocks other sessions or activity pings on this one.
	locks sync.Map // sessionID -> *sync.Mutex
}

// New wires a ChatService from its parts. The clock is shared with the
// session manager so transcripts and expiry agree on time.
func New(store storage.Storage, sessions *session.Manager, gw *gateway.Gateway, cfg config.AssistantConfig, clock session.Clock) *ChatService {
	if clock == nil {
		clock = time.Now
	}
	return &ChatService{
		store:    store,
		sessions: sessions,
		gateway:  gw,
		cfg:      cfg,
		clock:    clock,
	}
}

// NewFromConfig builds the production service: storage per config, a
// session manager with background watchers, and the OpenAI-compatible
// completer behind the gateway.
func NewFromConfig(cfg *config.Config) *ChatService {
	var store storage.Storage
	if cfg.Storage.Type == "disk" {
		store = storage.NewDiskStorage(cfg.Storage.DataDir, cfg.Storage.CacheSize)
	} else {
		store = storage.NewMemoryStorage()
	}

	if err := store.Init(); err != nil {
		logger.Errorf("Failed to initialize storage, falling back to memory: %v", err)
		store = storage.NewMemoryStorage()
		store.Init()
	}

	sessions := session.NewManager(store, cfg.Session.InactivityLimit, cfg.Session.WatchInterval, time.Now)
	gw := gateway.New(gateway.NewCompleter(cfg.Gemini))

	return New(store, sessions, gw, cfg.Assistant, time.Now)
}

func (s *ChatService) sessionLock(sessionID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// StartSession begins a new chat in the requested language.
func (s *ChatService) StartSession(lang model.Language) (*model.Session, error) {
	return s.sessions.Start(lang)
}

// NewChat discards the current session and starts over.
func (s *ChatService) NewChat(sessionID string, lang model.Language) (*model.Session, error) {
	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.sessions.NewChat(sessionID, lang)
	if err == nil {
		s.locks.Delete(sessionID)
	}
	return sess, err
}

// GetSession returns the session after the lazy expiry check.
func (s *ChatService) GetSession(sessionID string) (*model.Session, error) {
	return s.sessions.Get(sessionID)
}

func (s *ChatService) GetMessages(sessionID string) ([]model.Message, error) {
	messages, err := s.store.GetMessages(sessionID)
	if err != nil {
		if err == storage.ErrSessionNotFound {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	result := make([]model.Message, len(messages))
	for i, msg := range messages {
		result[i] = *msg
	}
	return result, nil
}

// Send runs the full orchestration for one user message. The user message
// is appended synchronously; the gateway call runs in a goroutine and its
// outcome (bot reply plus follow-ups) arrives on the returned channel.
// Sending on an inactive session returns session.ErrSessionInactive.
func (s *ChatService) Send(ctx context.Context, sessionID, content string) (model.Message, <-chan SendResult, error) {
	mu := s.sessionLock(sessionID)
	mu.Lock()

	userMsg, pc, questionID, err := s.appendUserTurn(sessionID, content)
	mu.Unlock()
	if err != nil {
		return model.Message{}, nil, err
	}

	resultCh := make(chan SendResult, 1)
	go func() {
		defer close(resultCh)

		resp := s.gateway.GetResponse(ctx, content, pc)

		mu.Lock()
		defer mu.Unlock()

		bot := model.Message{
			ID:         uuid.NewString(),
			Content:    resp.Content,
			Type:       model.MessageBot,
			Timestamp:  s.clock(),
			Language:   pc.Language,
			QuestionID: questionID,
			Confidence: resp.Confidence,
			HasActions: len(resp.SuggestedActions) > 0,
		}
		if err := s.store.AddMessage(sessionID, &bot); err != nil {
			logger.Errorf("Failed to append bot reply for session %s: %v", sessionID, err)
			return
		}

		followUps := s.scheduleFollowUps(sessionID, questionID, resp)

		resultCh <- SendResult{Bot: bot, FollowUps: followUps}
	}()

	return userMsg, resultCh, nil
}

// appendUserTurn runs the synchronous half of Send under the session lock:
// expiry check, activity reset, classification, and the user message append.
func (s *ChatService) appendUserTurn(sessionID, content string) (model.Message, gateway.PromptContext, string, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return model.Message{}, gateway.PromptContext{}, "", err
	}
	if !sess.IsActive {
		return model.Message{}, gateway.PromptContext{}, "", session.ErrSessionInactive
	}

	if err := s.sessions.RecordActivity(sessionID); err != nil {
		return model.Message{}, gateway.PromptContext{}, "", err
	}

	// Classify against the pre-send context; the prompt embeds the prior
	// history while the current message travels as the question itself.
	prevHistory := sess.Context.ConversationHistory
	sess.Context = classifier.Classify(content, sess.Context, sess.Language)

	now := s.clock()
	questionID := uuid.NewString()
	userMsg := model.Message{
		ID:         uuid.NewString(),
		Content:    content,
		Type:       model.MessageUser,
		Timestamp:  now,
		Language:   sess.Language,
		QuestionID: questionID,
	}

	sess.AttemptCounts[questionID]++
	if err := s.store.UpdateSession(sess); err != nil {
		return model.Message{}, gateway.PromptContext{}, "", fmt.Errorf("failed to persist context: %w", err)
	}
	if err := s.store.AddMessage(sessionID, &userMsg); err != nil {
		return model.Message{}, gateway.PromptContext{}, "", fmt.Errorf("failed to add message: %w", err)
	}

	pc := gateway.PromptContext{
		Role:      sess.Context.Role,
		IssueType: sess.Context.IssueType,
		Urgency:   sess.Context.Urgency,
		History:   prevHistory,
		Language:  sess.Language,
	}
	return userMsg, pc, questionID, nil
}

// scheduleFollowUps picks the single follow-up the reply warrants, appends
// it to the transcript, and returns it with its delivery delay. Priority:
// urgent warning, off-topic reminder, volunteer offer, feedback prompt.
func (s *ChatService) scheduleFollowUps(sessionID, questionID string, resp model.AIResponse) []FollowUp {
	sess, err := s.store.GetSession(sessionID)
	if err != nil {
		logger.Errorf("Failed to load session %s for follow-ups: %v", sessionID, err)
		return nil
	}

	var fu FollowUp
	switch {
	case resp.RequiresUrgentAction:
		fu = s.followUp(sess, i18n.UrgentWarning, model.MessageSystem, questionID, s.cfg.UrgentDelay)
	case !resp.IsHousingRelated:
		fu = s.followUp(sess, i18n.OffTopic, model.MessageSystem, questionID, s.cfg.FollowUpDelay)
	case resp.Confidence == model.ConfidenceLow || sess.UnhelpfulCount() >= s.cfg.VolunteerThreshold:
		fu = s.followUp(sess, i18n.VolunteerOffer, model.MessageSystem, questionID, s.cfg.FollowUpDelay)
	default:
		fu = s.followUp(sess, i18n.FeedbackPrompt, model.MessageFeedback, questionID, s.cfg.FollowUpDelay)
	}

	if err := s.store.AddMessage(sessionID, &fu.Message); err != nil {
		logger.Errorf("Failed to append follow-up for session %s: %v", sessionID, err)
		return nil
	}

	return []FollowUp{fu}
}

func (s *ChatService) followUp(sess *model.Session, key i18n.Key, typ model.MessageType, questionID string, delay time.Duration) FollowUp {
	return FollowUp{
		Delay: delay,
		Message: model.Message{
			ID:         uuid.NewString(),
			Content:    i18n.Text(key, sess.Language),
			Type:       typ,
			Timestamp:  s.clock(),
			Language:   sess.Language,
			QuestionID: questionID,
		},
	}
}

// Feedback records a helpful/unhelpful annotation on a bot reply and
// answers with a thank-you, a request for more detail, or a volunteer
// offer once enough attempts have failed.
func (s *ChatService) Feedback(sessionID, messageID string, helpful bool) (model.Message, error) {
	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return model.Message{}, err
	}
	if !sess.IsActive {
		return model.Message{}, session.ErrSessionInactive
	}

	if err := s.sessions.RecordActivity(sessionID); err != nil {
		return model.Message{}, err
	}

	// Count failures before this annotation lands.
	priorUnhelpful := sess.UnhelpfulCount()

	if err := s.store.SetFeedback(sessionID, messageID, helpful); err != nil {
		if err == storage.ErrMessageNotFound {
			return model.Message{}, fmt.Errorf("message not found: %s", messageID)
		}
		return model.Message{}, fmt.Errorf("failed to record feedback: %w", err)
	}

	var key i18n.Key
	var typ model.MessageType
	switch {
	case helpful:
		key, typ = i18n.ThankYou, model.MessageBot
	case priorUnhelpful >= s.cfg.VolunteerThreshold:
		key, typ = i18n.VolunteerOffer, model.MessageSystem
	default:
		key, typ = i18n.AskForDetail, model.MessageBot
	}

	reply := model.Message{
		ID:        uuid.NewString(),
		Content:   i18n.Text(key, sess.Language),
		Type:      typ,
		Timestamp: s.clock(),
		Language:  sess.Language,
	}
	if err := s.store.AddMessage(sessionID, &reply); err != nil {
		return model.Message{}, fmt.Errorf("failed to append feedback reply: %w", err)
	}

	return reply, nil
}

// ConnectVolunteer flags the session for human handoff and appends the
// system message naming the detected role and issue.
func (s *ChatService) ConnectVolunteer(sessionID string) (model.Message, error) {
	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return model.Message{}, err
	}
	if !sess.IsActive {
		return model.Message{}, session.ErrSessionInactive
	}

	if err := s.sessions.RecordActivity(sessionID); err != nil {
		return model.Message{}, err
	}

	sess.VolunteerConnected = true
	if err := s.store.UpdateSession(sess); err != nil {
		return model.Message{}, fmt.Errorf("failed to update session: %w", err)
	}

	ack := model.Message{
		ID:        uuid.NewString(),
		Content:   i18n.Text(i18n.VolunteerConnect, sess.Language),
		Type:      model.MessageBot,
		Timestamp: s.clock(),
		Language:  sess.Language,
	}
	if err := s.store.AddMessage(sessionID, &ack); err != nil {
		return model.Message{}, fmt.Errorf("failed to append handoff message: %w", err)
	}

	msg := model.Message{
		ID:        uuid.NewString(),
		Content:   i18n.VolunteerContextText(sess.Language, sess.Context.Role, sess.Context.IssueType),
		Type:      model.MessageSystem,
		Timestamp: s.clock(),
		Language:  sess.Language,
	}
	if err := s.store.AddMessage(sessionID, &msg); err != nil {
		return model.Message{}, fmt.Errorf("failed to append handoff message: %w", err)
	}

	logger.Infof("Session %s connected to volunteer (role=%s issue=%s)", sessionID, sess.Context.Role, sess.Context.IssueType)
	return msg, nil
}

// ChangeLanguage switches the session language. Counts as activity.
func (s *ChatService) ChangeLanguage(sessionID string, lang model.Language) error {
	if !model.ValidLanguage(lang) {
		return fmt.Errorf("unsupported language: %s", lang)
	}

	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	if !sess.IsActive {
		return session.ErrSessionInactive
	}

	if err := s.sessions.RecordActivity(sessionID); err != nil {
		return err
	}

	sess.Language = lang
	return s.store.UpdateSession(sess)
}

// RecordActivity exposes the inactivity reset for non-message interactions
// (typing, focus, scroll, modal open/close).
func (s *ChatService) RecordActivity(sessionID string) error {
	return s.sessions.RecordActivity(sessionID)
}

// Shutdown stops session watchers, snapshots the store, and closes it.
func (s *ChatService) Shutdown() {
	s.sessions.Shutdown()
	if err := s.store.Backup(); err != nil {
		logger.Errorf("Failed to back up storage: %v", err)
	}
	if err := s.store.Close(); err != nil {
		logger.Errorf("Failed to close storage: %v", err)
	}
}
