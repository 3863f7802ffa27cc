package gateway

import (
	"regexp"
	"strings"

	"warmhome-backend/internal/model"
)

// Fixed vocabularies for post-processing the completion text. Checked as
// literal substrings; the low-confidence list is tested before the medium
// one, so a reply containing both scores low.
var lowConfidenceIndicators = []string{
	"I'm specialized in housing",
	"not confident",
	"consult a qualified attorney",
	"varies significantly by location",
	"complex legal matter",
}

var mediumConfidenceIndicators = []string{
	"typically",
	"generally",
	"in most jurisdictions",
	"may vary",
	"usually",
	"often",
}

var housingKeywords = []string{
	"rent", "rental", "lease", "tenant", "landlord", "eviction", "deposit",
	"buy", "buying", "purchase", "mortgage", "property", "house", "apartment",
	"home", "housing", "real estate", "repair", "maintenance", "inspection",
	"contract", "closing", "title", "deed", "zoning", "hoa", "condo",
	"subletting", "utilities", "habitability", "discrimination",
}

var urgentIndicators = []string{
	"urgent",
	"emergency",
	"immediately",
	"right away",
	"contact authorities",
	"call police",
	"emergency repair",
	"health hazard",
	"unsafe conditions",
	"eviction notice",
	"court date",
}

// actionLineRe matches numbered steps, lettered steps, and bullet lines.
var actionLineRe = regexp.MustCompile(`^(\d+[.)]|[a-zA-Z][.)]\s|[-•*]\s)`)
var actionPrefixRe = regexp.MustCompile(`^(\d+[.)]\s*|[a-zA-Z][.)]\s+|[-•*]\s*)`)

const maxActions = 5

func assessConfidence(reply string) model.Confidence {
	if strings.TrimSpace(reply) == "" {
		return model.ConfidenceLow
	}
	for _, indicator := range lowConfidenceIndicators {
		if strings.Contains(reply, indicator) {
			return model.ConfidenceLow
		}
	}
	for _, indicator := range mediumConfidenceIndicators {
		if strings.Contains(reply, indicator) {
			return model.ConfidenceMedium
		}
	}
	return model.ConfidenceHigh
}

// isHousingRelated scans the original user message, not the model reply.
func isHousingRelated(userMessage string) bool {
	if strings.TrimSpace(userMessage) == "" {
		return false
	}
	lower := strings.ToLower(userMessage)
	for _, kw := range housingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// extractActions pulls actionable step lines out of the reply: trimmed,
// longer than 10 characters, capped at maxActions.
func extractActions(reply string) []string {
	var actions []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !actionLineRe.MatchString(line) && !strings.Contains(line, "Step") && !strings.Contains(line, "Action:") {
			continue
		}
		clean := strings.TrimSpace(actionPrefixRe.ReplaceAllString(line, ""))
		if len(clean) > 10 {
			actions = append(actions, clean)
			if len(actions) == maxActions {
				break
			}
		}
	}
	return actions
}

// requiresUrgentAction checks both the reply and the original user message.
func requiresUrgentAction(reply, userMessage string) bool {
	combined := strings.ToLower(reply + " " + userMessage)
	for _, indicator := range urgentIndicators {
		if strings.Contains(combined, strings.ToLower(indicator)) {
			return true
		}
	}
	return false
}
