// Package gateway wraps the external text-completion API behind a fail-soft
// contract: one prompt in, one post-processed AIResponse out, and never an
// error. Failures of any kind collapse into the localized fallback reply.
package gateway

import (
	"context"
	"strings"

	"warmhome-backend/internal/i18n"
	"warmhome-backend/internal/model"
	"warmhome-backend/pkg/logger"
)

type Gateway struct {
	completer Completer
}

func New(completer Completer) *Gateway {
	return &Gateway{completer: completer}
}

// GetResponse performs a single completion attempt and derives confidence,
// housing relevance, suggested actions, and urgency from the result. No
// retries: a failed or empty completion yields the fallback response.
func (g *Gateway) GetResponse(ctx context.Context, userMessage string, pc PromptContext) model.AIResponse {
	prompt := buildPrompt(userMessage, pc)

	reply, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		logger.Errorf("Completion call failed: %v", err)
		return g.fallback(pc.Language)
	}
	if strings.TrimSpace(reply) == "" {
		logger.Warn("Completion returned empty text, using fallback")
		return g.fallback(pc.Language)
	}

	return model.AIResponse{
		Content:              reply,
		Confidence:           assessConfidence(reply),
		IsHousingRelated:     isHousingRelated(userMessage),
		SuggestedActions:     extractActions(reply),
		RequiresUrgentAction: requiresUrgentAction(reply, userMessage),
	}
}

// fallback is the only user-visible failure mode: a fixed localized message
// offering a human volunteer, scored low-confidence and kept on topic.
func (g *Gateway) fallback(lang model.Language) model.AIResponse {
	return model.AIResponse{
		Content:          i18n.Text(i18n.Fallback, lang),
		Confidence:       model.ConfidenceLow,
		IsHousingRelated: true,
	}
}
