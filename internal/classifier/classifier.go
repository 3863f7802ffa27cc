// Package classifier derives the user's role, issue type, urgency and
// extracted details from free-text chat messages. Classification is a pure
// function over the message and the previous context: no I/O, no errors.
package classifier

import (
	"regexp"
	"strings"

	"warmhome-backend/internal/model"
)

var (
	currencyRe = regexp.MustCompile(`\$[0-9][0-9,]*(?:\.[0-9]+)?`)
	timeSpanRe = regexp.MustCompile(`(?i)\b\d+\s*(?:month|week|day)s?\b`)
)

// Classify folds one user message into the running context. Role and issue
// only change on a positive match, urgency only escalates, and the history
// and detail bounds from the data model are enforced here.
func Classify(message string, prev model.UserContext, lang model.Language) model.UserContext {
	next := prev
	next.ConversationHistory = appendBounded(prev.ConversationHistory, message, model.MaxHistory)
	next.SpecificDetails = append([]string(nil), prev.SpecificDetails...)

	table := tableFor(lang)
	lower := strings.ToLower(message)

	for _, rs := range table.Roles {
		if matchAny(lower, rs.Keywords) {
			next.Role = rs.Role
			break
		}
	}

	for _, is := range table.Issues {
		if matchAny(lower, is.Keywords) {
			next.IssueType = is.Issue
			break
		}
	}

	// Escalate only. High wins over medium, and nothing ever downgrades.
	if matchAny(lower, table.High) {
		if next.Urgency.Level() < model.UrgencyHigh.Level() {
			next.Urgency = model.UrgencyHigh
		}
	} else if matchAny(lower, table.Medium) {
		if next.Urgency.Level() < model.UrgencyMedium.Level() {
			next.Urgency = model.UrgencyMedium
		}
	}

	next.SpecificDetails = mergeDetails(next.SpecificDetails, extractDetails(message), model.MaxDetails)

	return next
}

func matchAny(lowerMessage string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowerMessage, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// extractDetails pulls currency amounts and time spans out of the message,
// in order of appearance.
func extractDetails(message string) []string {
	var details []string
	details = append(details, currencyRe.FindAllString(message, -1)...)
	for _, span := range timeSpanRe.FindAllString(message, -1) {
		details = append(details, strings.ToLower(span))
	}
	return details
}

// mergeDetails appends new tokens to the existing ordered set, dropping
// duplicates and keeping only the most recent max entries.
func mergeDetails(existing, incoming []string, max int) []string {
	merged := existing
	for _, d := range incoming {
		if !contains(merged, d) {
			merged = append(merged, d)
		}
	}
	if len(merged) > max {
		merged = merged[len(merged)-max:]
	}
	return merged
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func appendBounded(history []string, entry string, max int) []string {
	out := append(append([]string(nil), history...), entry)
	if len(out) > max {
		out = out[len(out)-max:]
	}
	return out
}
