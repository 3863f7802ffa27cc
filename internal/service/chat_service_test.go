package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warmhome-backend/internal/config"
	"warmhome-backend/internal/gateway"
	"warmhome-backend/internal/i18n"
	"warmhome-backend/internal/model"
	"warmhome-backend/internal/session"
	"warmhome-backend/internal/storage"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stubCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func newTestService(t *testing.T, completer gateway.Completer) (*ChatService, *fakeClock) {
	t.Helper()

	clock := newFakeClock()
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Init())

	sessions := session.NewManager(store, 15*time.Minute, 0, clock.Now)
	cfg := config.AssistantConfig{
		FollowUpDelay:      2 * time.Second,
		UrgentDelay:        500 * time.Millisecond,
		VolunteerThreshold: 2,
	}

	svc := New(store, sessions, gateway.New(completer), cfg, clock.Now)
	t.Cleanup(svc.Shutdown)
	return svc, clock
}

func awaitResult(t *testing.T, ch <-chan SendResult) SendResult {
	t.Helper()
	select {
	case res, ok := <-ch:
		require.True(t, ok, "result channel closed without a result")
		return res
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for send result")
		return SendResult{}
	}
}

func TestSendAppendsUserBotAndFollowUp(t *testing.T) {
	stub := &stubCompleter{reply: "You can recover your deposit through the rental tribunal within 10 business days."}
	svc, _ := newTestService(t, stub)

	sess, err := svc.StartSession(model.LangEnglish)
	require.NoError(t, err)

	userMsg, ch, err := svc.Send(context.Background(), sess.ID, "My landlord won't return my deposit")
	require.NoError(t, err)
	assert.Equal(t, model.MessageUser, userMsg.Type)
	assert.NotEmpty(t, userMsg.QuestionID)

	res := awaitResult(t, ch)
	assert.Equal(t, stub.reply, res.Bot.Content)
	assert.Equal(t, userMsg.QuestionID, res.Bot.QuestionID)
	assert.Equal(t, model.ConfidenceHigh, res.Bot.Confidence)

	require.Len(t, res.FollowUps, 1)
	fu := res.FollowUps[0]
	assert.Equal(t, model.MessageFeedback, fu.Message.Type)
	assert.Equal(t, i18n.Text(i18n.FeedbackPrompt, model.LangEnglish), fu.Message.Content)
	assert.Equal(t, 2*time.Second, fu.Delay)

	// Transcript order: welcome, user, bot, follow-up.
	messages, err := svc.GetMessages(sess.ID)
	require.NoError(t, err)
	require.Len(t, messages, 4)
	assert.Equal(t, model.MessageBot, messages[0].Type)
	assert.Equal(t, model.MessageUser, messages[1].Type)
	assert.Equal(t, model.MessageBot, messages[2].Type)
	assert.Equal(t, model.MessageFeedback, messages[3].Type)
}

func TestSendClassifiesAndPersistsContext(t *testing.T) {
	stub := &stubCompleter{reply: "Your landlord must lodge the bond with the state authority."}
	svc, _ := newTestService(t, stub)

	sess, err := svc.StartSession(model.LangEnglish)
	require.NoError(t, err)

	_, ch, err := svc.Send(context.Background(), sess.ID, "My landlord won't return my $1200 deposit")
	require.NoError(t, err)
	awaitResult(t, ch)

	got, err := svc.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleTenant, got.Context.Role)
	assert.Equal(t, model.IssueDeposit, got.Context.IssueType)
	assert.Contains(t, got.Context.SpecificDetails, "$1200")
	assert.Len(t, got.AttemptCounts, 1)
}

func TestSendOnExpiredSessionRejected(t *testing.T) {
	svc, clock := newTestService(t, &stubCompleter{reply: "ok"})

	sess, err := svc.StartSession(model.LangEnglish)
	require.NoError(t, err)

	clock.Advance(15 * time.Minute)

	_, _, err = svc.Send(context.Background(), sess.ID, "hello?")
	assert.ErrorIs(t, err, session.ErrSessionInactive)
}

func TestSendLowConfidenceSchedulesVolunteerOffer(t *testing.T) {
	stub := &stubCompleter{reply: "I'm not sure about that, you should consult a qualified attorney."}
	svc, _ := newTestService(t, stub)

	sess, err := svc.StartSession(model.LangEnglish)
	require.NoError(t, err)

	_, ch, err := svc.Send(context.Background(), sess.ID, "My landlord is evicting me, what are my rights?")
	require.NoError(t, err)

	res := awaitResult(t, ch)
	assert.Equal(t, model.ConfidenceLow, res.Bot.Confidence)
	require.Len(t, res.FollowUps, 1)
	assert.Equal(t, i18n.Text(i18n.VolunteerOffer, model.LangEnglish), res.FollowUps[0].Message.Content)
	assert.Equal(t, model.MessageSystem, res.FollowUps[0].Message.Type)
}

func TestSendUrgentReplyWarnsFirst(t *testing.T) {
	// Urgency outranks the low-confidence volunteer offer.
	stub := &stubCompleter{reply: "This is not legal advice, but you received an eviction notice so act immediately."}
	svc, _ := newTestService(t, stub)

	sess, err := svc.StartSession(model.LangEnglish)
	require.NoError(t, err)

	_, ch, err := svc.Send(context.Background(), sess.ID, "The sheriff posted an eviction notice on my door")
	require.NoError(t, err)

	res := awaitResult(t, ch)
	require.Len(t, res.FollowUps, 1)
	assert.Equal(t, i18n.Text(i18n.UrgentWarning, model.LangEnglish), res.FollowUps[0].Message.Content)
	assert.Equal(t, 500*time.Millisecond, res.FollowUps[0].Delay)
}

func TestSendOffTopicSchedulesReminder(t *testing.T) {
	stub := &stubCompleter{reply: "I can only help with housing questions."}
	svc, _ := newTestService(t, stub)

	sess, err := svc.StartSession(model.LangEnglish)
	require.NoError(t, err)

	_, ch, err := svc.Send(context.Background(), sess.ID, "What's a good pizza recipe?")
	require.NoError(t, err)

	res := awaitResult(t, ch)
	require.Len(t, res.FollowUps, 1)
	assert.Equal(t, i18n.Text(i18n.OffTopic, model.LangEnglish), res.FollowUps[0].Message.Content)
}

func TestSendGatewayFailureFallsBack(t *testing.T) {
	stub := &stubCompleter{err: errors.New("upstream unavailable")}
	svc, _ := newTestService(t, stub)

	sess, err := svc.StartSession(model.LangEnglish)
	require.NoError(t, err)

	_, ch, err := svc.Send(context.Background(), sess.ID, "My landlord raised the rent")
	require.NoError(t, err)

	res := awaitResult(t, ch)
	assert.Equal(t, i18n.Text(i18n.Fallback, model.LangEnglish), res.Bot.Content)
	assert.Equal(t, model.ConfidenceLow, res.Bot.Confidence)
}

func TestFeedbackHelpfulThanksUser(t *testing.T) {
	stub := &stubCompleter{reply: "You have 14 days to dispute the bond claim."}
	svc, _ := newTestService(t, stub)

	sess, err := svc.StartSession(model.LangEnglish)
	require.NoError(t, err)

	_, ch, err := svc.Send(context.Background(), sess.ID, "My landlord claimed my whole deposit")
	require.NoError(t, err)
	res := awaitResult(t, ch)

	reply, err := svc.Feedback(sess.ID, res.Bot.ID, true)
	require.NoError(t, err)
	assert.Equal(t, i18n.Text(i18n.ThankYou, model.LangEnglish), reply.Content)
	assert.Equal(t, model.MessageBot, reply.Type)

	messages, err := svc.GetMessages(sess.ID)
	require.NoError(t, err)
	for _, m := range messages {
		if m.ID == res.Bot.ID {
			require.NotNil(t, m.IsHelpful)
			assert.True(t, *m.IsHelpful)
		}
	}
}

func TestRepeatedUnhelpfulFeedbackEscalatesToVolunteer(t *testing.T) {
	stub := &stubCompleter{reply: "Generally the landlord must provide written notice before entry."}
	svc, _ := newTestService(t, stub)

	sess, err := svc.StartSession(model.LangEnglish)
	require.NoError(t, err)

	var botIDs []string
	for _, q := range []string{
		"Can my landlord enter without notice?",
		"What notice period applies to my rental?",
		"Does that apply to routine inspections of my apartment?",
	} {
		_, ch, err := svc.Send(context.Background(), sess.ID, q)
		require.NoError(t, err)
		botIDs = append(botIDs, awaitResult(t, ch).Bot.ID)
	}

	first, err := svc.Feedback(sess.ID, botIDs[0], false)
	require.NoError(t, err)
	assert.Equal(t, i18n.Text(i18n.AskForDetail, model.LangEnglish), first.Content)

	second, err := svc.Feedback(sess.ID, botIDs[1], false)
	require.NoError(t, err)
	assert.Equal(t, i18n.Text(i18n.AskForDetail, model.LangEnglish), second.Content)

	third, err := svc.Feedback(sess.ID, botIDs[2], false)
	require.NoError(t, err)
	assert.Equal(t, i18n.Text(i18n.VolunteerOffer, model.LangEnglish), third.Content)
	assert.Equal(t, model.MessageSystem, third.Type)
}

func TestConcurrentSendsKeepSessionConsistent(t *testing.T) {
	stub := &stubCompleter{reply: "Keep written records of every notice you receive."}

	clock := newFakeClock()
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Init())

	// Watcher running on a tight tick so expiry checks overlap the sends.
	sessions := session.NewManager(store, 15*time.Minute, time.Millisecond, clock.Now)
	cfg := config.AssistantConfig{
		FollowUpDelay:      2 * time.Second,
		UrgentDelay:        500 * time.Millisecond,
		VolunteerThreshold: 2,
	}
	svc := New(store, sessions, gateway.New(stub), cfg, clock.Now)
	t.Cleanup(svc.Shutdown)

	sess, err := svc.StartSession(model.LangEnglish)
	require.NoError(t, err)

	const senders = 4
	const sendsEach = 2

	var mu sync.Mutex
	var channels []<-chan SendResult

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < sendsEach; j++ {
				_, ch, err := svc.Send(context.Background(), sess.ID, "My landlord issued a rent increase notice")
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				channels = append(channels, ch)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, channels, senders*sendsEach)
	for _, ch := range channels {
		awaitResult(t, ch)
	}

	// Welcome plus user, bot, and follow-up per send.
	messages, err := svc.GetMessages(sess.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 1+senders*sendsEach*3)

	got, err := svc.GetSession(sess.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Len(t, got.AttemptCounts, senders*sendsEach)
}

func TestFeedbackUnknownMessage(t *testing.T) {
	svc, _ := newTestService(t, &stubCompleter{reply: "ok"})

	sess, err := svc.StartSession(model.LangEnglish)
	require.NoError(t, err)

	_, err = svc.Feedback(sess.ID, "no-such-message", true)
	assert.Error(t, err)
}

func TestConnectVolunteerRecordsContext(t *testing.T) {
	stub := &stubCompleter{reply: "The bond must be lodged with the rental authority."}
	svc, _ := newTestService(t, stub)

	sess, err := svc.StartSession(model.LangEnglish)
	require.NoError(t, err)

	_, ch, err := svc.Send(context.Background(), sess.ID, "My landlord kept my deposit unfairly")
	require.NoError(t, err)
	awaitResult(t, ch)

	msg, err := svc.ConnectVolunteer(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MessageSystem, msg.Type)
	assert.Contains(t, msg.Content, "tenant")
	assert.Contains(t, msg.Content, "deposit")

	got, err := svc.GetSession(sess.ID)
	require.NoError(t, err)
	assert.True(t, got.VolunteerConnected)
}

func TestChangeLanguage(t *testing.T) {
	svc, _ := newTestService(t, &stubCompleter{reply: "ok"})

	sess, err := svc.StartSession(model.LangEnglish)
	require.NoError(t, err)

	require.NoError(t, svc.ChangeLanguage(sess.ID, model.LangChinese))
	got, err := svc.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LangChinese, got.Language)

	assert.Error(t, svc.ChangeLanguage(sess.ID, model.Language("fr")))
}

func TestNewChatStartsFresh(t *testing.T) {
	stub := &stubCompleter{reply: "Keep copies of all repair requests you send."}
	svc, _ := newTestService(t, stub)

	sess, err := svc.StartSession(model.LangEnglish)
	require.NoError(t, err)

	_, ch, err := svc.Send(context.Background(), sess.ID, "My landlord ignores repair requests")
	require.NoError(t, err)
	awaitResult(t, ch)

	fresh, err := svc.NewChat(sess.ID, model.LangVietnamese)
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, fresh.ID)
	assert.Equal(t, model.LangVietnamese, fresh.Language)
	assert.Equal(t, model.RoleUnknown, fresh.Context.Role)

	_, _, err = svc.Send(context.Background(), sess.ID, "still there?")
	assert.Error(t, err)
}
