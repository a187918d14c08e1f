package domain

import (
	"encoding/json"
	"testing"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name        string
		part, whole float64
		want        float64
	}{
		{"half", 5, 10, 50},
		{"zero whole", 5, 0, 0},
		{"negative whole", 5, -1, 0},
		{"zero part", 0, 10, 0},
		{"both zero", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.part, tt.whole); got != tt.want {
				t.Errorf("Percent(%v, %v) = %v, want %v", tt.part, tt.whole, got, tt.want)
			}
		})
	}
}

func TestEntriesMetricsEmptyByDay(t *testing.T) {
	var m EntriesMetrics
	if err := json.Unmarshal([]byte(`{"by_day": [], "by_type": [], "by_category": []}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	totals := m.Totals()
	if totals.Count != 0 || totals.Value != 0 {
		t.Errorf("Totals() = %+v, want zeroes", totals)
	}
	if got := m.TypeShares(); len(got) != 0 {
		t.Errorf("TypeShares() = %v, want empty", got)
	}
	if got := m.CountByType(EntryExpense); got != 0 {
		t.Errorf("CountByType(expense) = %d, want 0", got)
	}
}

func TestEntriesMetricsTotalsAndShares(t *testing.T) {
	m := EntriesMetrics{
		ByDay: []DailyEntries{
			{Date: "2024-05-01", Count: 3, Total: 120.5},
			{Date: "2024-05-02", Count: 1, Total: 9.5},
		},
		ByType: []TypeEntries{
			{Type: EntryExpense, Count: 3},
			{Type: EntryIncome, Count: 1},
			{Type: EntryInvestment, Count: 0},
		},
	}

	totals := m.Totals()
	if totals.Count != 4 {
		t.Errorf("Totals().Count = %d, want 4", totals.Count)
	}
	if totals.Value != 130 {
		t.Errorf("Totals().Value = %v, want 130", totals.Value)
	}
	if got := m.CountByType(EntryIncome); got != 1 {
		t.Errorf("CountByType(income) = %d, want 1", got)
	}

	shares := m.TypeShares()
	if len(shares) != 3 {
		t.Fatalf("got %d shares, want 3", len(shares))
	}
	if shares[0].Percent != 75 {
		t.Errorf("expense share = %v, want 75", shares[0].Percent)
	}
	if shares[2].Percent != 0 {
		t.Errorf("investment share = %v, want 0", shares[2].Percent)
	}
}

func TestEntriesTypeSharesAllZero(t *testing.T) {
	m := EntriesMetrics{ByType: []TypeEntries{{Type: EntryExpense}, {Type: EntryIncome}}}
	for _, s := range m.TypeShares() {
		if s.Percent != 0 {
			t.Errorf("%s share = %v, want 0", s.Type, s.Percent)
		}
	}
}

func TestLastDays(t *testing.T) {
	m := EntriesMetrics{}
	for i := 0; i < 30; i++ {
		m.ByDay = append(m.ByDay, DailyEntries{Count: i})
	}
	last := m.LastDays(14)
	if len(last) != 14 {
		t.Fatalf("len(LastDays(14)) = %d, want 14", len(last))
	}
	if last[0].Count != 16 {
		t.Errorf("first of last 14 = %d, want 16", last[0].Count)
	}
	if got := (EntriesMetrics{}).LastDays(14); len(got) != 0 {
		t.Errorf("LastDays on empty = %v, want empty", got)
	}
}

func TestOverviewActivePercent(t *testing.T) {
	tests := []struct {
		name string
		o    Overview
		want int
	}{
		{"no users", Overview{}, 0},
		{"a third", Overview{TotalUsers: 3, ActiveUsers7d: 1}, 33},
		{"all", Overview{TotalUsers: 8, ActiveUsers7d: 8}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.o.ActivePercent(); got != tt.want {
				t.Errorf("ActivePercent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOverviewPlansSorted(t *testing.T) {
	o := Overview{UsersByPlan: map[string]int{"free": 10, "beta": 3, "vip": 3}}
	plans := o.Plans()
	if len(plans) != 3 {
		t.Fatalf("got %d plans, want 3", len(plans))
	}
	if plans[0].Plan != "free" || plans[1].Plan != "beta" || plans[2].Plan != "vip" {
		t.Errorf("Plans() order = %v", plans)
	}
}

func TestAIMetricsDerived(t *testing.T) {
	m := AIMetrics{
		TotalClassifications: 200,
		EditedBeforeConfirm:  25,
		AccuracyRate:         72.5,
		FixedRulesUsed:       65,
		PatternsLearned:      80,
	}
	if got := m.EditRate(); got != 12.5 {
		t.Errorf("EditRate() = %v, want 12.5", got)
	}
	if got := m.Level(); got != AccuracyFair {
		t.Errorf("Level() = %v, want AccuracyFair", got)
	}
	if !m.NeedsMoreRules() {
		t.Error("NeedsMoreRules() = false, want true at 65%")
	}
	if m.StillLearning() {
		t.Error("StillLearning() = true, want false at 80 patterns")
	}
	if got := m.EditShare(CategoryEdit{Count: 3}); got != 1.5 {
		t.Errorf("EditShare() = %v, want 1.5", got)
	}

	var empty AIMetrics
	if got := empty.EditRate(); got != 0 {
		t.Errorf("empty EditRate() = %v, want 0", got)
	}
	if got := empty.Level(); got != AccuracyLow {
		t.Errorf("empty Level() = %v, want AccuracyLow", got)
	}
}

func TestSystemMetricsDefaults(t *testing.T) {
	var s SystemMetrics
	if err := json.Unmarshal([]byte(`{}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.DB().TotalRows != 0 || s.DB().Tables == nil {
		t.Errorf("DB() = %+v, want empty tables", s.DB())
	}
	if got := s.AIStats().Provider; got != ProviderAnthropic {
		t.Errorf("AIStats().Provider = %q, want %q", got, ProviderAnthropic)
	}
	if s.ErrorsHigh() {
		t.Error("ErrorsHigh() = true on empty metrics")
	}

	s.Errors = &ErrorStats{Count7d: 11}
	if !s.ErrorsHigh() {
		t.Error("ErrorsHigh() = false with 11 errors")
	}
}

func TestShortDate(t *testing.T) {
	tests := map[string]string{
		"2024-05-07":           "05-07",
		"2024-05-07T10:00:00Z": "05-07",
		"05-07":                "05-07",
		"":                     "",
	}
	for in, want := range tests {
		if got := ShortDate(in); got != want {
			t.Errorf("ShortDate(%q) = %q, want %q", in, got, want)
		}
	}
}
