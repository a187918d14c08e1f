package domain

import (
	"strings"

	"github.com/google/uuid"
)

// BetaCode is a single-use invitation that gates signup to the bot.
// Its lifecycle belongs to the backend; this side only lists and generates.
type BetaCode struct {
	ID           uuid.UUID  `json:"id"`
	Code         string     `json:"code"`
	CreatedAt    Timestamp  `json:"created_at"`
	UsedAt       Timestamp  `json:"used_at"`
	ExpiresAt    Timestamp  `json:"expires_at"`
	UsedByUserID *uuid.UUID `json:"used_by_user_id,omitempty"`
	UserName     string     `json:"user_name,omitempty"`
	UserUsername string     `json:"user_username,omitempty"`
}

// Used reports whether the code has been redeemed.
func (c BetaCode) Used() bool {
	return c.UsedByUserID != nil
}

// Matches reports whether the code or its redeeming user matches query,
// case-insensitively. An empty query matches everything.
func (c BetaCode) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.Code), q) ||
		strings.Contains(strings.ToLower(c.UserName), q) ||
		strings.Contains(strings.ToLower(c.UserUsername), q)
}

// CodeStatus filters the beta code listing.
type CodeStatus string

const (
	CodeStatusAll       CodeStatus = ""
	CodeStatusUsed      CodeStatus = "used"
	CodeStatusAvailable CodeStatus = "available"
)

// CodeStatuses is the cycle order used by the status filter.
var CodeStatuses = []CodeStatus{CodeStatusAll, CodeStatusUsed, CodeStatusAvailable}

// Label returns the filter's display name.
func (s CodeStatus) Label() string {
	if s == CodeStatusAll {
		return "all"
	}
	return string(s)
}

// FilterCodes returns the codes matching query.
func FilterCodes(codes []BetaCode, query string) []BetaCode {
	if query == "" {
		return codes
	}
	var out []BetaCode
	for _, c := range codes {
		if c.Matches(query) {
			out = append(out, c)
		}
	}
	return out
}

// CountUsed returns how many codes in the slice are redeemed. The second
// value is the number still available.
func CountUsed(codes []BetaCode) (used, available int) {
	for _, c := range codes {
		if c.Used() {
			used++
		} else {
			available++
		}
	}
	return used, available
}

// GenerateCodesResult is the response of /admin/beta-codes/generate.
type GenerateCodesResult struct {
	Codes []string `json:"codes"`
	Count int      `json:"count"`
}
