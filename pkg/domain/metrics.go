package domain

import "sort"

// Overview is the dashboard summary from /admin/metrics/overview.
type Overview struct {
	TotalUsers    int            `json:"total_users"`
	ActiveUsers7d int            `json:"active_users_7d"`
	EntriesToday  int            `json:"entries_today"`
	EntriesMonth  int            `json:"entries_month"`
	VolumeMonth   float64        `json:"volume_month"`
	UsersByPlan   map[string]int `json:"users_by_plan"`
}

// ActivePercent is the rounded share of users active in the last 7 days.
func (o Overview) ActivePercent() int {
	return int(RoundTo(Percent(float64(o.ActiveUsers7d), float64(o.TotalUsers)), 0))
}

// PlanCount is one users_by_plan bucket.
type PlanCount struct {
	Plan  string
	Count int
}

// Plans returns users_by_plan sorted by count (desc), then plan name.
func (o Overview) Plans() []PlanCount {
	out := make([]PlanCount, 0, len(o.UsersByPlan))
	for plan, n := range o.UsersByPlan {
		out = append(out, PlanCount{Plan: plan, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Plan < out[j].Plan
	})
	return out
}

// UserGrowthPoint is one day of /admin/metrics/users.
type UserGrowthPoint struct {
	Date        string `json:"date"`
	NewUsers    int    `json:"new_users"`
	ActiveUsers int    `json:"active_users"`
}

// UsersMetrics is the user growth series.
type UsersMetrics struct {
	Data []UserGrowthPoint `json:"data"`
}

// Last returns at most the last n points.
func (m UsersMetrics) Last(n int) []UserGrowthPoint {
	return lastN(m.Data, n)
}

// CommandCount is one bot command and how often it ran.
type CommandCount struct {
	Command string `json:"command"`
	Count   int    `json:"count"`
}

// CommandsMetrics is the command usage ranking.
type CommandsMetrics struct {
	Data []CommandCount `json:"data"`
}

// Top returns at most the first n commands (the backend sorts by count).
func (m CommandsMetrics) Top(n int) []CommandCount {
	if n < 0 || n >= len(m.Data) {
		return m.Data
	}
	return m.Data[:n]
}

// EntryType is the kind of a financial entry.
type EntryType string

const (
	EntryExpense    EntryType = "expense"
	EntryIncome     EntryType = "income"
	EntryInvestment EntryType = "investment"
)

// Label returns the display name for an entry type.
func (t EntryType) Label() string {
	switch t {
	case EntryExpense:
		return "Expenses"
	case EntryIncome:
		return "Income"
	case EntryInvestment:
		return "Investments"
	default:
		return string(t)
	}
}

// DailyEntries is one by_day row.
type DailyEntries struct {
	Date  string  `json:"date"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// TypeEntries is one by_type row.
type TypeEntries struct {
	Type  EntryType `json:"type"`
	Count int       `json:"count"`
	Total float64   `json:"total"`
}

// CategoryEntries is one by_category row.
type CategoryEntries struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
}

// EntriesMetrics is the breakdown from /admin/metrics/entries.
type EntriesMetrics struct {
	ByDay      []DailyEntries    `json:"by_day"`
	ByType     []TypeEntries     `json:"by_type"`
	ByCategory []CategoryEntries `json:"by_category"`
}

// EntryTotals are sums over by_day.
type EntryTotals struct {
	Count int
	Value float64
}

// Totals sums counts and values over every by_day row.
func (m EntriesMetrics) Totals() EntryTotals {
	var t EntryTotals
	for _, d := range m.ByDay {
		t.Count += d.Count
		t.Value += d.Total
	}
	return t
}

// CountByType returns the by_type count for t, or 0.
func (m EntriesMetrics) CountByType(t EntryType) int {
	for _, row := range m.ByType {
		if row.Type == t {
			return row.Count
		}
	}
	return 0
}

// TypeShare is a by_type row with its share of all typed entries.
type TypeShare struct {
	Type    EntryType
	Count   int
	Percent float64
}

// TypeShares returns each type's share of the by_type counts.
func (m EntriesMetrics) TypeShares() []TypeShare {
	total := 0
	for _, row := range m.ByType {
		total += row.Count
	}
	out := make([]TypeShare, 0, len(m.ByType))
	for _, row := range m.ByType {
		out = append(out, TypeShare{
			Type:    row.Type,
			Count:   row.Count,
			Percent: Percent(float64(row.Count), float64(total)),
		})
	}
	return out
}

// LastDays returns at most the last n by_day rows.
func (m EntriesMetrics) LastDays(n int) []DailyEntries {
	return lastN(m.ByDay, n)
}

// DatabaseStats is the database section of /admin/metrics/system.
type DatabaseStats struct {
	Tables    map[string]int `json:"tables"`
	TotalRows int            `json:"total_rows"`
}

// AIUsage is the ai section of /admin/metrics/system.
type AIUsage struct {
	Calls30d         int     `json:"calls_30d"`
	Tokens30d        int     `json:"tokens_30d"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
	Provider         string  `json:"provider"`
}

// ErrorStats is the errors section of /admin/metrics/system.
type ErrorStats struct {
	Count7d int            `json:"count_7d"`
	ByType  map[string]int `json:"by_type"`
}

// SystemMetrics is /admin/metrics/system. Sections may be absent.
type SystemMetrics struct {
	Database *DatabaseStats `json:"database"`
	AI       *AIUsage       `json:"ai"`
	Errors   *ErrorStats    `json:"errors"`
}

// ProviderAnthropic is the default AI provider reported by the backend.
const ProviderAnthropic = "anthropic"

// errorsHighThreshold is the 7-day error count above which the system view
// turns red.
const errorsHighThreshold = 10

// DB returns the database section or an empty one.
func (s SystemMetrics) DB() DatabaseStats {
	if s.Database == nil {
		return DatabaseStats{Tables: map[string]int{}}
	}
	return *s.Database
}

// AIStats returns the ai section or zeroes with the default provider.
func (s SystemMetrics) AIStats() AIUsage {
	if s.AI == nil {
		return AIUsage{Provider: ProviderAnthropic}
	}
	return *s.AI
}

// ErrorSummary returns the errors section or an empty one.
func (s SystemMetrics) ErrorSummary() ErrorStats {
	if s.Errors == nil {
		return ErrorStats{ByType: map[string]int{}}
	}
	return *s.Errors
}

// ErrorsHigh reports whether the 7-day error count warrants attention.
func (s SystemMetrics) ErrorsHigh() bool {
	return s.ErrorSummary().Count7d > errorsHighThreshold
}

// ProviderLabel returns a display name for an AI provider id.
func ProviderLabel(provider string) string {
	if provider == "" || provider == ProviderAnthropic {
		return "Claude (Anthropic)"
	}
	return "GPT-4 (OpenAI)"
}

// AIDailyAccuracy is one by_day row of /admin/metrics/ai.
type AIDailyAccuracy struct {
	Date         string  `json:"date"`
	Total        int     `json:"total"`
	AccuracyRate float64 `json:"accuracy_rate"`
}

// CategoryEdit is a frequent manual correction of the AI's category.
type CategoryEdit struct {
	OriginalCategory string `json:"original_category"`
	EditedCategory   string `json:"edited_category"`
	Count            int    `json:"count"`
}

// AIMetrics is the classification accuracy report.
type AIMetrics struct {
	TotalClassifications int               `json:"total_classifications"`
	ConfirmedWithoutEdit int               `json:"confirmed_without_edit"`
	EditedBeforeConfirm  int               `json:"edited_before_confirm"`
	Cancelled            int               `json:"cancelled"`
	AccuracyRate         float64           `json:"accuracy_rate"`
	PatternsLearned      int               `json:"patterns_learned"`
	FixedRulesUsed       float64           `json:"fixed_rules_used"`
	AICalls              int               `json:"ai_calls"`
	Provider             string            `json:"provider"`
	ByDay                []AIDailyAccuracy `json:"by_day"`
	TopEdits             []CategoryEdit    `json:"top_edits"`
}

// AccuracyLevel buckets an accuracy rate for colouring.
type AccuracyLevel int

const (
	AccuracyLow AccuracyLevel = iota
	AccuracyFair
	AccuracyGood
)

// Level buckets the accuracy rate: >=80 good, >=60 fair, else low.
func (m AIMetrics) Level() AccuracyLevel {
	switch {
	case m.AccuracyRate >= 80:
		return AccuracyGood
	case m.AccuracyRate >= 60:
		return AccuracyFair
	default:
		return AccuracyLow
	}
}

// EditRate is the share of classifications edited before confirmation,
// rounded to one decimal.
func (m AIMetrics) EditRate() float64 {
	return RoundTo(Percent(float64(m.EditedBeforeConfirm), float64(m.TotalClassifications)), 1)
}

// EditShare is the share of all classifications a top edit represents.
func (m AIMetrics) EditShare(e CategoryEdit) float64 {
	return RoundTo(Percent(float64(e.Count), float64(m.TotalClassifications)), 1)
}

// NeedsMoreRules reports whether fixed rules cover too few cases.
func (m AIMetrics) NeedsMoreRules() bool {
	return m.FixedRulesUsed < 70
}

// StillLearning reports whether the pattern store is still small.
func (m AIMetrics) StillLearning() bool {
	return m.PatternsLearned < 50
}

// LastDays returns at most the last n by_day rows.
func (m AIMetrics) LastDays(n int) []AIDailyAccuracy {
	return lastN(m.ByDay, n)
}

func lastN[T any](s []T, n int) []T {
	if n < 0 || n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}
