package gateway

import (
	"fmt"
	"strings"

	"warmhome-backend/internal/model"
)

// PromptContext is the slice of session state the prompt builder needs.
type PromptContext struct {
	Role      model.Role
	IssueType model.IssueType
	Urgency   model.Urgency
	History   []string // most recent user utterances, oldest first
	Language  model.Language
}

const historyTurns = 3

// buildPrompt composes the role/urgency/issue-aware instruction prompt for
// one completion call, embedding the last few history turns and the target
// response language.
func buildPrompt(userMessage string, pc PromptContext) string {
	history := pc.History
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}

	var b strings.Builder
	b.WriteString("You are a specialized Legal Housing Assistant for the WARM-HOME app.\n\n")

	b.WriteString("SCOPE: You ONLY provide advice about housing and property legal matters:\n")
	b.WriteString("- Tenant rights and landlord-tenant law\n")
	b.WriteString("- Property buying, selling, and real estate transactions\n")
	b.WriteString("- Lease agreements, evictions, and rental disputes\n")
	b.WriteString("- Property repairs, maintenance, and habitability\n")
	b.WriteString("- Security deposits, rent control, and housing discrimination\n")
	b.WriteString("- Home inspections, contracts, and closing processes\n\n")

	b.WriteString("CURRENT USER CONTEXT:\n")
	fmt.Fprintf(&b, "- Role: %s (tenant/landlord/buyer/seller)\n", pc.Role)
	fmt.Fprintf(&b, "- Issue Type: %s\n", pc.IssueType)
	fmt.Fprintf(&b, "- Urgency Level: %s\n", pc.Urgency)
	fmt.Fprintf(&b, "- Language: %s\n", pc.Language)
	fmt.Fprintf(&b, "- Recent conversation: %s\n\n", strings.Join(history, " -> "))

	b.WriteString("RESPONSE RULES:\n")
	b.WriteString(`1. Off-topic questions: if NOT about housing/property law, respond exactly: "I'm specialized in housing and property legal matters only. Please ask about tenant rights, landlord issues, buying/selling property, leases, evictions, repairs, deposits, or related housing law topics."` + "\n")
	b.WriteString("2. Role-specific advice: tailor the response to the user's role (tenant: rights and remedies; landlord: obligations and procedures; buyer: purchase process, inspections, contracts; seller: disclosure requirements).\n")
	b.WriteString("3. Urgency handling: HIGH urgency gets immediate action steps and mentions contacting authorities; MEDIUM gets structured guidance with timelines; LOW gets comprehensive educational information.\n")
	fmt.Fprintf(&b, "4. Language: respond in %s naturally.\n", languageName(pc.Language))
	b.WriteString("5. Provide numbered action steps when applicable and end serious matters with an appropriate legal disclaimer.\n")
	b.WriteString("6. When laws vary by location, say so and suggest checking local regulations.\n\n")

	fmt.Fprintf(&b, "User Question: %s", userMessage)

	return b.String()
}

func languageName(lang model.Language) string {
	switch lang {
	case model.LangChinese:
		return "Chinese"
	case model.LangVietnamese:
		return "Vietnamese"
	case model.LangArabic:
		return "Arabic"
	case model.LangHindi:
		return "Hindi"
	case model.LangIndonesian:
		return "Indonesian"
	default:
		return "English"
	}
}
