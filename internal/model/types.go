package model

// Language codes supported by the assistant UI.
type Language string

const (
	LangEnglish    Language = "en"
	LangChinese    Language = "zh"
	LangVietnamese Language = "vi"
	LangArabic     Language = "ar"
	LangHindi      Language = "hi"
	LangIndonesian Language = "id"
)

// ValidLanguage reports whether lang is one of the supported codes.
func ValidLanguage(lang Language) bool {
	switch lang {
	case LangEnglish, LangChinese, LangVietnamese, LangArabic, LangHindi, LangIndonesian:
		return true
	}
	return false
}

type MessageType string

const (
	MessageUser     MessageType = "user"
	MessageBot      MessageType = "bot"
	MessageSystem   MessageType = "system"
	MessageFeedback MessageType = "feedback"
)

// Role is the detected position of the user in a housing matter.
type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleBuyer    Role = "buyer"
	RoleSeller   Role = "seller"
	RoleUnknown  Role = "unknown"
)

type IssueType string

const (
	IssueDeposit       IssueType = "deposit"
	IssueRepairs       IssueType = "repairs"
	IssueEviction      IssueType = "eviction"
	IssueLeaseBreak    IssueType = "lease_break"
	IssueRentIncrease  IssueType = "rent_increase"
	IssueInspection    IssueType = "inspection"
	IssueContract      IssueType = "contract"
	IssueBuyingProcess IssueType = "buying_process"
	IssueUnknown       IssueType = "unknown"
)

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Level orders urgency values so escalation checks can compare them.
func (u Urgency) Level() int {
	switch u {
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	default:
		return 0
	}
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)
