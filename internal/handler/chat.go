package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"warmhome-backend/internal/model"
	"warmhome-backend/internal/service"
	"warmhome-backend/internal/session"
	"warmhome-backend/internal/utils"
	"warmhome-backend/pkg/logger"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// StartSession creates a new session in the requested language and returns
// it with the welcome message already in the transcript.
func (h *ChatHandler) StartSession(c *gin.Context) {
	var req model.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.chatService.StartSession(req.Language)
	if err != nil {
		logger.Errorf("Failed to start session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}

	c.JSON(http.StatusOK, sessionResponse(sess))
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	sess, err := h.chatService.GetSession(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(sess))
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	messages, err := h.chatService.GetMessages(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// Send streams the conversation turn as SSE: the user echo, a typing
// indicator, the bot reply, and any follow-up messages after their
// scheduled delays.
func (h *ChatHandler) Send(c *gin.Context) {
	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userMsg, results, err := h.chatService.Send(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	sse := utils.NewSSEWriter(c.Writer)
	defer sse.Close()

	writeEvent(sse, model.ChatEvent{
		Type:      "user",
		SessionID: req.SessionID,
		Message:   &userMsg,
		Timestamp: time.Now().Unix(),
	})
	writeEvent(sse, model.ChatEvent{
		Type:      "typing",
		SessionID: req.SessionID,
		Timestamp: time.Now().Unix(),
	})

	ctx := c.Request.Context()
	var result service.SendResult
	select {
	case res, ok := <-results:
		if !ok {
			return
		}
		result = res
	case <-ctx.Done():
		return
	}

	writeEvent(sse, model.ChatEvent{
		Type:      "bot",
		SessionID: req.SessionID,
		Message:   &result.Bot,
		Timestamp: time.Now().Unix(),
	})

	for _, fu := range result.FollowUps {
		select {
		case <-time.After(fu.Delay):
		case <-ctx.Done():
			return
		}

		msg := fu.Message
		writeEvent(sse, model.ChatEvent{
			Type:      "follow_up",
			SessionID: req.SessionID,
			Message:   &msg,
			Timestamp: time.Now().Unix(),
		})
	}
}

// Feedback annotates a bot reply as helpful or not and returns the
// assistant's reaction message.
func (h *ChatHandler) Feedback(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.chatService.Feedback(req.SessionID, req.MessageID, *req.IsHelpful)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": reply})
}

func (h *ChatHandler) ConnectVolunteer(c *gin.Context) {
	var req model.VolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.chatService.ConnectVolunteer(req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *ChatHandler) ChangeLanguage(c *gin.Context) {
	var req model.LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.chatService.ChangeLanguage(req.SessionID, req.Language); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NewChat retires the previous session (if any) and starts a fresh one.
func (h *ChatHandler) NewChat(c *gin.Context) {
	var req model.NewChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.chatService.NewChat(req.SessionID, req.Language)
	if err != nil {
		logger.Errorf("Failed to start new chat: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start new chat"})
		return
	}

	c.JSON(http.StatusOK, sessionResponse(sess))
}

// Activity resets the inactivity countdown for non-message interactions.
func (h *ChatHandler) Activity(c *gin.Context) {
	var req model.ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.chatService.RecordActivity(req.SessionID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func sessionResponse(sess *model.Session) model.SessionResponse {
	return model.SessionResponse{
		SessionID:          sess.ID,
		StartTime:          sess.StartTime,
		LastActivityAt:     sess.LastActivityAt,
		IsActive:           sess.IsActive,
		VolunteerConnected: sess.VolunteerConnected,
		Language:           sess.Language,
		Context:            sess.Context,
		MessageCount:       len(sess.Messages),
	}
}

func writeEvent(sse *utils.SSEWriter, event model.ChatEvent) {
	if err := sse.WriteJSON(event.Type, event); err != nil {
		logger.Warnf("Failed to write SSE event: %v", err)
	}
}

func respondError(c *gin.Context, err error) {
	switch {
	case err == session.ErrSessionInactive:
		c.JSON(http.StatusGone, gin.H{"error": "session is inactive"})
	case strings.Contains(err.Error(), "not found"):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case strings.Contains(err.Error(), "unsupported language"):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
