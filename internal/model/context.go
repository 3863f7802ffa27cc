package model

const (
	// MaxHistory bounds the conversation history kept for prompting.
	MaxHistory = 5
	// MaxDetails bounds the extracted detail tokens kept on the context.
	MaxDetails = 10
)

// UserContext is the classifier's running view of the user: role, issue,
// urgency and extracted details. A positive keyword match overwrites role
// and issue; the absence of a match never resets them.
type UserContext struct {
	Role                Role      `json:"role"`
	IssueType           IssueType `json:"issue_type"`
	Urgency             Urgency   `json:"urgency"`
	SpecificDetails     []string  `json:"specific_details,omitempty"`
	ConversationHistory []string  `json:"conversation_history,omitempty"`
}

// NewUserContext returns the blank context a fresh session starts with.
func NewUserContext() UserContext {
	return UserContext{
		Role:      RoleUnknown,
		IssueType: IssueUnknown,
		Urgency:   UrgencyLow,
	}
}

// Clone returns a deep copy of the context.
func (c UserContext) Clone() UserContext {
	c.SpecificDetails = append([]string(nil), c.SpecificDetails...)
	c.ConversationHistory = append([]string(nil), c.ConversationHistory...)
	return c
}

// RecentHistory returns the last n history entries, oldest first.
func (c UserContext) RecentHistory(n int) []string {
	if len(c.ConversationHistory) <= n {
		return c.ConversationHistory
	}
	return c.ConversationHistory[len(c.ConversationHistory)-n:]
}
