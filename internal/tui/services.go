package tui

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/naveenspark/finadmin/internal/query"
	"github.com/naveenspark/finadmin/internal/session"
	"github.com/naveenspark/finadmin/pkg/client"
	"github.com/naveenspark/finadmin/pkg/domain"
)

// Services are the shared objects every view reads from.
type Services struct {
	Client *client.Client
	Gate   *session.Gate
	Cache  *query.Cache
	// Log records view events such as generated codes and expired sessions.
	Log zerolog.Logger

	// WebURL is the browser dashboard opened from the help overlay.
	WebURL string
	// Refresh is the background refresh cadence of the live views.
	Refresh time.Duration
	// Days is the metrics window.
	Days int
}

func (s *Services) days() int {
	if s.Days < 1 {
		return client.DefaultDays
	}
	return s.Days
}

func (s *Services) refresh() time.Duration {
	if s.Refresh <= 0 {
		return time.Minute
	}
	return s.Refresh
}

// Cache keys. Parameters are part of the key so each page or window gets
// its own entry.
func overviewKey() query.Key                { return query.Key{"metrics", "overview"} }
func usersMetricsKey(days int) query.Key    { return query.Key{"metrics", "users", days} }
func commandsMetricsKey(days int) query.Key { return query.Key{"metrics", "commands", days} }
func entriesMetricsKey(days int) query.Key  { return query.Key{"metrics", "entries", days} }
func systemMetricsKey() query.Key           { return query.Key{"metrics", "system"} }
func aiMetricsKey(days int) query.Key       { return query.Key{"metrics", "ai", days} }

func usersKey(page int, status domain.UserStatus) query.Key {
	return query.Key{"users", page, status}
}

func userKey(id string) query.Key { return query.Key{"user", id} }

func codesKey(page int, status domain.CodeStatus) query.Key {
	return query.Key{"beta-codes", page, status}
}

// codesPrefix matches every beta-code listing.
func codesPrefix() query.Key { return query.Key{"beta-codes"} }

// Fetchers bound to the client.

func (s *Services) fetchOverview(ctx context.Context) (*domain.Overview, error) {
	return s.Client.Overview(ctx)
}

func (s *Services) fetchUsersMetrics(days int) func(context.Context) (*domain.UsersMetrics, error) {
	return func(ctx context.Context) (*domain.UsersMetrics, error) { return s.Client.UsersMetrics(ctx, days) }
}

func (s *Services) fetchCommandsMetrics(days int) func(context.Context) (*domain.CommandsMetrics, error) {
	return func(ctx context.Context) (*domain.CommandsMetrics, error) { return s.Client.CommandsMetrics(ctx, days) }
}

func (s *Services) fetchEntriesMetrics(days int) func(context.Context) (*domain.EntriesMetrics, error) {
	return func(ctx context.Context) (*domain.EntriesMetrics, error) { return s.Client.EntriesMetrics(ctx, days) }
}

func (s *Services) fetchSystemMetrics(ctx context.Context) (*domain.SystemMetrics, error) {
	return s.Client.SystemMetrics(ctx)
}

func (s *Services) fetchAIMetrics(days int) func(context.Context) (*domain.AIMetrics, error) {
	return func(ctx context.Context) (*domain.AIMetrics, error) { return s.Client.AIMetrics(ctx, days) }
}

func (s *Services) fetchUsers(page int, status domain.UserStatus) func(context.Context) (*domain.Page[domain.User], error) {
	return func(ctx context.Context) (*domain.Page[domain.User], error) {
		return s.Client.ListUsers(ctx, page, client.DefaultUsersLimit, status)
	}
}

func (s *Services) fetchUser(id string) func(context.Context) (*domain.UserDetail, error) {
	return func(ctx context.Context) (*domain.UserDetail, error) { return s.Client.GetUser(ctx, id) }
}

func (s *Services) fetchCodes(page int, status domain.CodeStatus) func(context.Context) (*domain.Page[domain.BetaCode], error) {
	return func(ctx context.Context) (*domain.Page[domain.BetaCode], error) {
		return s.Client.ListBetaCodes(ctx, page, client.DefaultCodesLimit, status)
	}
}
