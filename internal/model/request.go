package model

type StartSessionRequest struct {
	Language Language `json:"language"`
}

type SendMessageRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

type FeedbackRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	MessageID string `json:"message_id" binding:"required"`
	IsHelpful *bool  `json:"is_helpful" binding:"required"`
}

type VolunteerRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type LanguageRequest struct {
	SessionID string   `json:"session_id" binding:"required"`
	Language  Language `json:"language" binding:"required"`
}

type NewChatRequest struct {
	SessionID string   `json:"session_id"`
	Language  Language `json:"language"`
}

type ActivityRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}
