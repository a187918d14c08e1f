package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// PlanNone is the plan_slug of users without a subscription.
const PlanNone = "none"

// UserStatus filters the user listing.
type UserStatus string

const (
	UserStatusAll      UserStatus = ""
	UserStatusActive   UserStatus = "active"   // has a plan
	UserStatusInactive UserStatus = "inactive" // no plan
)

// UserStatuses is the cycle order used by the status filter.
var UserStatuses = []UserStatus{UserStatusAll, UserStatusActive, UserStatusInactive}

// Label returns the filter's display name.
func (s UserStatus) Label() string {
	switch s {
	case UserStatusActive:
		return "with plan"
	case UserStatusInactive:
		return "no plan"
	default:
		return "all"
	}
}

// User is a row of /admin/users.
type User struct {
	ID               uuid.UUID `json:"id"`
	TelegramID       int64     `json:"telegram_id"`
	TelegramUsername string    `json:"telegram_username,omitempty"`
	FirstName        string    `json:"first_name,omitempty"`
	LastName         string    `json:"last_name,omitempty"`
	Plan             string    `json:"plan,omitempty"`
	PlanSlug         string    `json:"plan_slug"`
	EntriesCount     int       `json:"entries_count"`
	CreatedAt        Timestamp `json:"created_at"`
	LastInteraction  Timestamp `json:"last_interaction"`
}

// DisplayName joins first and last name, falling back to the username and
// then the telegram id.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.TelegramUsername != "" {
		return "@" + u.TelegramUsername
	}
	return strconv.FormatInt(u.TelegramID, 10)
}

// HasPlan reports whether the user has an active plan.
func (u User) HasPlan() bool {
	return u.PlanSlug != "" && u.PlanSlug != PlanNone
}

// Matches reports whether the user matches a free-text search over name,
// username and telegram id. An empty query matches everything.
func (u User) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(u.FirstName), q) ||
		strings.Contains(strings.ToLower(u.LastName), q) ||
		strings.Contains(strings.ToLower(u.TelegramUsername), q) ||
		strings.Contains(strconv.FormatInt(u.TelegramID, 10), query)
}

// FilterUsers returns the users matching query.
func FilterUsers(users []User, query string) []User {
	if query == "" {
		return users
	}
	var out []User
	for _, u := range users {
		if u.Matches(query) {
			out = append(out, u)
		}
	}
	return out
}

// CountWithPlan counts users that have a plan.
func CountWithPlan(users []User) int {
	n := 0
	for _, u := range users {
		if u.HasPlan() {
			n++
		}
	}
	return n
}

// UserEntry is one recent financial entry on the user detail.
type UserEntry struct {
	Type        EntryType `json:"type"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
}

// UserDetail is /admin/users/:id.
type UserDetail struct {
	User
	RecentEntries []UserEntry `json:"recent_entries,omitempty"`
}
