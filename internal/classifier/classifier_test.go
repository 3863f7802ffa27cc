package classifier

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warmhome-backend/internal/model"
)

func TestClassifyDepositScenario(t *testing.T) {
	ctx := Classify("My landlord won't return my $1200 deposit after 2 months", model.NewUserContext(), model.LangEnglish)

	assert.Equal(t, model.RoleTenant, ctx.Role)
	assert.Equal(t, model.IssueDeposit, ctx.IssueType)
	assert.Equal(t, model.UrgencyLow, ctx.Urgency)
	assert.Contains(t, ctx.SpecificDetails, "$1200")
	assert.Contains(t, ctx.SpecificDetails, "2 months")
}

func TestClassifyLandlordKeywordSetsRole(t *testing.T) {
	prev := model.NewUserContext()
	prev.Role = model.RoleBuyer

	ctx := Classify("My tenant stopped paying and I need advice", prev, model.LangEnglish)
	assert.Equal(t, model.RoleLandlord, ctx.Role)
}

func TestClassifyRoleNotResetOnNoMatch(t *testing.T) {
	prev := model.NewUserContext()
	prev.Role = model.RoleTenant
	prev.IssueType = model.IssueRepairs

	ctx := Classify("thanks, that helps", prev, model.LangEnglish)
	assert.Equal(t, model.RoleTenant, ctx.Role)
	assert.Equal(t, model.IssueRepairs, ctx.IssueType)
}

func TestClassifyUrgencyNeverDowngrades(t *testing.T) {
	ctx := model.NewUserContext()

	ctx = Classify("this is an emergency, no water in the unit", ctx, model.LangEnglish)
	require.Equal(t, model.UrgencyHigh, ctx.Urgency)

	ctx = Classify("I need this handled soon", ctx, model.LangEnglish)
	assert.Equal(t, model.UrgencyHigh, ctx.Urgency)

	ctx = Classify("what colour should I paint the fence", ctx, model.LangEnglish)
	assert.Equal(t, model.UrgencyHigh, ctx.Urgency)
}

func TestClassifyUrgencyMediumEscalation(t *testing.T) {
	ctx := Classify("the deadline is this week", model.NewUserContext(), model.LangEnglish)
	assert.Equal(t, model.UrgencyMedium, ctx.Urgency)
}

func TestClassifyHistoryBounded(t *testing.T) {
	ctx := model.NewUserContext()
	for i := 0; i < 9; i++ {
		ctx = Classify(fmt.Sprintf("message %d", i), ctx, model.LangEnglish)
	}

	require.Len(t, ctx.ConversationHistory, model.MaxHistory)
	// Oldest entries dropped first.
	assert.Equal(t, "message 4", ctx.ConversationHistory[0])
	assert.Equal(t, "message 8", ctx.ConversationHistory[4])
}

func TestClassifyEmptyMessage(t *testing.T) {
	prev := model.NewUserContext()
	prev.Role = model.RoleSeller
	prev.Urgency = model.UrgencyMedium
	prev.SpecificDetails = []string{"$500"}

	once := Classify("", prev, model.LangEnglish)
	twice := Classify("", once, model.LangEnglish)

	assert.Equal(t, prev.Role, twice.Role)
	assert.Equal(t, prev.IssueType, twice.IssueType)
	assert.Equal(t, prev.Urgency, twice.Urgency)
	assert.Equal(t, prev.SpecificDetails, twice.SpecificDetails)
	// History still records the empty entries.
	assert.Len(t, twice.ConversationHistory, 2)
}

func TestClassifyDetailsDedupedAndBounded(t *testing.T) {
	ctx := model.NewUserContext()
	ctx = Classify("it cost $300 and then $300 again", ctx, model.LangEnglish)
	assert.Equal(t, []string{"$300"}, ctx.SpecificDetails)

	for i := 1; i <= 12; i++ {
		ctx = Classify(fmt.Sprintf("about $%d00", i), ctx, model.LangEnglish)
	}
	require.Len(t, ctx.SpecificDetails, model.MaxDetails)
	// Most recent kept, oldest truncated.
	assert.Equal(t, "$1200", ctx.SpecificDetails[model.MaxDetails-1])
	assert.NotContains(t, ctx.SpecificDetails, "$300")
}

func TestClassifyIssuePriorityFirstMatchWins(t *testing.T) {
	// Mentions both deposit and repairs; deposit is tested first.
	ctx := Classify("the deposit covers the repair, right?", model.NewUserContext(), model.LangEnglish)
	assert.Equal(t, model.IssueDeposit, ctx.IssueType)
}

func TestClassifyChineseKeywords(t *testing.T) {
	ctx := Classify("我的房东不退押金", model.NewUserContext(), model.LangChinese)
	assert.Equal(t, model.RoleTenant, ctx.Role)
	assert.Equal(t, model.IssueDeposit, ctx.IssueType)
}

func TestClassifyUnknownLanguageFallsBackToEnglish(t *testing.T) {
	ctx := Classify("my landlord ignores repair requests", model.NewUserContext(), model.LangVietnamese)
	assert.Equal(t, model.RoleTenant, ctx.Role)
	assert.Equal(t, model.IssueRepairs, ctx.IssueType)
}
