package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestBetaCodeUnmarshalNullables(t *testing.T) {
	raw := `{
		"id": "6f1c3b8e-4a53-4d0c-9b8f-2d3e9a1f7c10",
		"code": "BETA-7K2P",
		"created_at": "2024-05-01T12:00:00.123456",
		"used_at": null,
		"expires_at": null,
		"used_by_user_id": null,
		"user_name": null,
		"user_username": null
	}`
	var c BetaCode
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Used() {
		t.Error("Used() = true for code without user")
	}
	if !c.CreatedAt.Set() {
		t.Error("CreatedAt not set from naive timestamp")
	}
	if c.UsedAt.Set() {
		t.Error("UsedAt set from null")
	}
}

func TestFilterCodesAndCounts(t *testing.T) {
	uid := uuid.New()
	codes := []BetaCode{
		{Code: "ALPHA-1"},
		{Code: "BRAVO-2", UsedByUserID: &uid, UserName: "Maria Silva", UserUsername: "msilva"},
		{Code: "CHARLIE-3"},
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"alpha", 1},
		{"MARIA", 1},
		{"msil", 1},
		{"-", 3},
		{"zulu", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := len(FilterCodes(codes, tt.query)); got != tt.want {
				t.Errorf("FilterCodes(%q) = %d codes, want %d", tt.query, got, tt.want)
			}
		})
	}

	used, available := CountUsed(codes)
	if used != 1 || available != 2 {
		t.Errorf("CountUsed() = (%d, %d), want (1, 2)", used, available)
	}
}

func TestParseGenerateCount(t *testing.T) {
	tests := []struct {
		raw       string
		want      int
		corrected bool
	}{
		{"10", 10, false},
		{" 25 ", 25, false},
		{"1", 1, false},
		{"100", 100, false},
		{"", DefaultGenerateCount, true},
		{"abc", DefaultGenerateCount, true},
		{"0", 1, true},
		{"-4", 1, true},
		{"250", 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseGenerateCount(tt.raw)
			if got != tt.want {
				t.Errorf("ParseGenerateCount(%q) = %d, want %d", tt.raw, got, tt.want)
			}
			var vErr *ValidationError
			if tt.corrected != errors.As(err, &vErr) {
				t.Errorf("ParseGenerateCount(%q) err = %v, corrected want %v", tt.raw, err, tt.corrected)
			}
		})
	}
}

func TestUserMatchesAndPlan(t *testing.T) {
	users := []User{
		{FirstName: "Ana", LastName: "Costa", TelegramID: 123456, PlanSlug: "beta"},
		{TelegramUsername: "joao_p", TelegramID: 987654, PlanSlug: PlanNone},
		{FirstName: "Bruno", TelegramID: 555, PlanSlug: "vip"},
	}
	if got := len(FilterUsers(users, "cost")); got != 1 {
		t.Errorf("search by last name = %d, want 1", got)
	}
	if got := len(FilterUsers(users, "JOAO")); got != 1 {
		t.Errorf("search by username = %d, want 1", got)
	}
	if got := len(FilterUsers(users, "9876")); got != 1 {
		t.Errorf("search by telegram id = %d, want 1", got)
	}
	if got := CountWithPlan(users); got != 2 {
		t.Errorf("CountWithPlan() = %d, want 2", got)
	}
	if got := users[1].DisplayName(); got != "@joao_p" {
		t.Errorf("DisplayName() = %q, want @joao_p", got)
	}
}

func TestPageNormalized(t *testing.T) {
	p := Page[BetaCode]{Data: []BetaCode{{Code: "A"}, {Code: "B"}}}.Normalized()
	if p.Pagination.Page != 1 || p.Pagination.Pages != 1 || p.Pagination.Total != 2 {
		t.Errorf("Normalized() pagination = %+v", p.Pagination)
	}
	if p.Pagination.HasNext() || p.Pagination.HasPrev() {
		t.Error("single page should have no neighbours")
	}
}
