package classifier

import "warmhome-backend/internal/model"

// keywordTable holds every vocabulary the classifier matches against for one
// language. Role and issue sets are tested in slice order; the first set that
// matches wins, so ordering here is load-bearing.
type keywordTable struct {
	Roles  []roleSet
	Issues []issueSet
	High   []string
	Medium []string
}

type roleSet struct {
	Role     model.Role
	Keywords []string
}

type issueSet struct {
	Issue    model.IssueType
	Keywords []string
}

// tableFor returns the keyword table for lang, falling back to English.
// Keeping everything in one lookup avoids the parallel-literal drift where a
// language silently matches against nothing.
func tableFor(lang model.Language) keywordTable {
	if t, ok := tables[lang]; ok {
		return t
	}
	return tables[model.LangEnglish]
}

var tables = map[model.Language]keywordTable{
	model.LangEnglish: {
		Roles: []roleSet{
			{model.RoleTenant, []string{
				"my landlord", "my lease", "i rent", "i'm renting", "i am renting",
				"as a tenant", "i am a tenant", "i'm a tenant", "evicted me", "my apartment", "my flat",
			}},
			{model.RoleLandlord, []string{
				"my tenant", "my tenants", "my renter", "as a landlord", "i'm a landlord",
				"i am a landlord", "my rental property", "my investment property", "rent out",
			}},
			{model.RoleBuyer, []string{
				"buying", "buy a", "want to buy", "purchase", "mortgage", "first home",
				"down payment", "pre-approval",
			}},
			{model.RoleSeller, []string{
				"selling", "sell my", "want to sell", "listing my", "vendor",
			}},
		},
		Issues: []issueSet{
			{model.IssueDeposit, []string{"deposit", "bond"}},
			{model.IssueRepairs, []string{"repair", "fix", "broken", "maintenance", "mould", "mold", "leak", "hot water", "heating"}},
			{model.IssueEviction, []string{"evict", "notice to vacate", "kicked out"}},
			{model.IssueLeaseBreak, []string{"break my lease", "break the lease", "breaking the lease", "end my lease", "terminate the lease", "move out early", "leave early"}},
			{model.IssueRentIncrease, []string{"rent increase", "increase my rent", "increase the rent", "raise the rent", "raising the rent", "rent went up"}},
			{model.IssueInspection, []string{"inspection", "inspect"}},
			{model.IssueContract, []string{"contract", "agreement", "clause", "signing", "signed"}},
			{model.IssueBuyingProcess, []string{"buying", "buy a", "purchase", "mortgage", "settlement", "conveyanc", "offer on"}},
		},
		High: []string{
			"urgent", "emergency", "immediately", "right away", "locked out",
			"no water", "no electricity", "no heat", "unsafe", "threat", "police",
			"court date", "eviction notice", "health hazard",
		},
		Medium: []string{
			"soon", "this week", "next week", "quickly", "asap", "worried", "deadline",
		},
	},
	// Seeded from the original FAQ keyword lists; the remaining languages fall
	// back to English matching until their tables are filled in.
	model.LangChinese: {
		Roles: []roleSet{
			{model.RoleTenant, []string{"我的房东", "我租", "租户", "租客"}},
			{model.RoleLandlord, []string{"我的租户", "我的租客", "房东身份", "出租"}},
			{model.RoleBuyer, []string{"买房", "购买", "购房", "抵押", "首付"}},
			{model.RoleSeller, []string{"卖房", "出售", "卖掉"}},
		},
		Issues: []issueSet{
			{model.IssueDeposit, []string{"押金", "保证金", "退还"}},
			{model.IssueRepairs, []string{"维修", "修理", "坏了", "漏水"}},
			{model.IssueEviction, []string{"驱逐", "赶走", "搬出通知"}},
			{model.IssueLeaseBreak, []string{"终止租约", "解除租约", "提前搬走"}},
			{model.IssueRentIncrease, []string{"涨租", "加租", "租金上涨"}},
			{model.IssueInspection, []string{"检查", "验房"}},
			{model.IssueContract, []string{"合同", "协议", "条款"}},
			{model.IssueBuyingProcess, []string{"买房", "购买", "抵押", "过户"}},
		},
		High:   []string{"紧急", "立即", "马上", "断水", "断电", "不安全", "威胁", "报警", "开庭", "驱逐通知"},
		Medium: []string{"尽快", "这周", "下周", "担心", "期限"},
	},
}
