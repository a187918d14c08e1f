package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/naveenspark/finadmin/pkg/domain"
)

// Defaults mirrored from the web dashboard.
const (
	DefaultDays       = 30
	DefaultUsersLimit = 20
	DefaultCodesLimit = 50
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 1 << 20

// TokenSource supplies the current bearer token. An empty token sends no
// Authorization header.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed bearer token.
type StaticToken string

// Token returns the token itself.
func (t StaticToken) Token() string { return string(t) }

// Client is the admin API client.
type Client struct {
	baseURL        string
	tokens         TokenSource
	onUnauthorized func(token string)
	httpClient     *http.Client
	log            zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends a fixed bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.tokens = StaticToken(token) }
}

// WithTokenSource reads the bearer token from src on every request.
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) { c.tokens = src }
}

// WithUnauthorizedHandler registers fn to run whenever an authenticated
// request comes back 401. fn receives the token the request was sent
// with, which may no longer be the source's current token.
func WithUnauthorizedHandler(fn func(token string)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a new API client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     StaticToken(""),
		httpClient: &http.Client{},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- Auth ---

// Login exchanges the admin password for a bearer token. A 401 here means
// a wrong password and does not trigger the unauthorized handler.
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	var resp domain.LoginResponse
	if err := c.send(ctx, http.MethodPost, "/admin/login", domain.LoginRequest{Password: password}, &resp, false); err != nil {
		return "", fmt.Errorf("client.Login: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("client.Login: empty token in response")
	}
	return resp.Token, nil
}

// VerifyToken checks token against /admin/verify without touching the
// client's own token source or unauthorized handler.
func (c *Client) VerifyToken(ctx context.Context, token string) error {
	vc := *c
	vc.tokens = StaticToken(token)
	vc.onUnauthorized = nil
	if err := vc.doRequest(ctx, http.MethodGet, "/admin/verify", nil, nil); err != nil {
		return fmt.Errorf("client.VerifyToken: %w", err)
	}
	return nil
}

// Verify checks the current token.
func (c *Client) Verify(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodGet, "/admin/verify", nil, nil); err != nil {
		return fmt.Errorf("client.Verify: %w", err)
	}
	return nil
}

// --- Metrics ---

// Overview returns the dashboard summary.
func (c *Client) Overview(ctx context.Context) (*domain.Overview, error) {
	var o domain.Overview
	if err := c.get(ctx, "/admin/metrics/overview", &o); err != nil {
		return nil, fmt.Errorf("client.Overview: %w", err)
	}
	return &o, nil
}

// UsersMetrics returns the user growth series for the last days.
func (c *Client) UsersMetrics(ctx context.Context, days int) (*domain.UsersMetrics, error) {
	var m domain.UsersMetrics
	if err := c.get(ctx, "/admin/metrics/users?"+daysQuery(days), &m); err != nil {
		return nil, fmt.Errorf("client.UsersMetrics: %w", err)
	}
	return &m, nil
}

// CommandsMetrics returns bot command usage counts for the last days.
func (c *Client) CommandsMetrics(ctx context.Context, days int) (*domain.CommandsMetrics, error) {
	var m domain.CommandsMetrics
	if err := c.get(ctx, "/admin/metrics/commands?"+daysQuery(days), &m); err != nil {
		return nil, fmt.Errorf("client.CommandsMetrics: %w", err)
	}
	return &m, nil
}

// EntriesMetrics returns financial entry series and breakdowns.
func (c *Client) EntriesMetrics(ctx context.Context, days int) (*domain.EntriesMetrics, error) {
	var m domain.EntriesMetrics
	if err := c.get(ctx, "/admin/metrics/entries?"+daysQuery(days), &m); err != nil {
		return nil, fmt.Errorf("client.EntriesMetrics: %w", err)
	}
	return &m, nil
}

// SystemMetrics returns database counts, AI usage and error counts.
func (c *Client) SystemMetrics(ctx context.Context) (*domain.SystemMetrics, error) {
	var m domain.SystemMetrics
	if err := c.get(ctx, "/admin/metrics/system", &m); err != nil {
		return nil, fmt.Errorf("client.SystemMetrics: %w", err)
	}
	return &m, nil
}

// AIMetrics returns AI classification accuracy for the last days.
func (c *Client) AIMetrics(ctx context.Context, days int) (*domain.AIMetrics, error) {
	var m domain.AIMetrics
	if err := c.get(ctx, "/admin/metrics/ai?"+daysQuery(days), &m); err != nil {
		return nil, fmt.Errorf("client.AIMetrics: %w", err)
	}
	return &m, nil
}

// --- Users ---

// ListUsers fetches one page of users with an optional status filter.
func (c *Client) ListUsers(ctx context.Context, page, limit int, status domain.UserStatus) (*domain.Page[domain.User], error) {
	params := pageParams(page, limit, DefaultUsersLimit)
	if status != domain.UserStatusAll {
		params.Set("status", string(status))
	}

	var p domain.Page[domain.User]
	if err := c.get(ctx, "/admin/users?"+params.Encode(), &p); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	p = p.Normalized()
	return &p, nil
}

// GetUser fetches a single user by ID.
func (c *Client) GetUser(ctx context.Context, id string) (*domain.UserDetail, error) {
	var u domain.UserDetail
	if err := c.get(ctx, "/admin/users/"+url.PathEscape(id), &u); err != nil {
		return nil, fmt.Errorf("client.GetUser: %w", err)
	}
	return &u, nil
}

// --- Beta codes ---

// ListBetaCodes fetches one page of beta codes with an optional status filter.
func (c *Client) ListBetaCodes(ctx context.Context, page, limit int, status domain.CodeStatus) (*domain.Page[domain.BetaCode], error) {
	params := pageParams(page, limit, DefaultCodesLimit)
	if status != domain.CodeStatusAll {
		params.Set("status", string(status))
	}

	var p domain.Page[domain.BetaCode]
	if err := c.get(ctx, "/admin/beta-codes?"+params.Encode(), &p); err != nil {
		return nil, fmt.Errorf("client.ListBetaCodes: %w", err)
	}
	p = p.Normalized()
	return &p, nil
}

// GenerateBetaCodes creates count new codes. count is clamped to [1, 100]
// before it is sent.
func (c *Client) GenerateBetaCodes(ctx context.Context, count int) (*domain.GenerateCodesResult, error) {
	count, _ = domain.ClampGenerateCount(count) //nolint:errcheck // clamped value is always usable
	params := url.Values{}
	params.Set("count", strconv.Itoa(count))

	var res domain.GenerateCodesResult
	if err := c.post(ctx, "/admin/beta-codes/generate?"+params.Encode(), nil, &res); err != nil {
		return nil, fmt.Errorf("client.GenerateBetaCodes: %w", err)
	}
	if res.Count == 0 {
		res.Count = len(res.Codes)
	}
	return &res, nil
}

func daysQuery(days int) string {
	if days <= 0 {
		days = DefaultDays
	}
	return "days=" + strconv.Itoa(days)
}

func pageParams(page, limit, defaultLimit int) url.Values {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	return params
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	return c.send(ctx, method, path, body, out, true)
}

// send performs one request. authed requests carry the bearer token and
// report 401s to the unauthorized handler.
func (c *Client) send(ctx context.Context, method, path string, body any, out any, authed bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	var token string
	if authed {
		if token = c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := readHTTPError(resp)
		if authed && resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.log.Info().Str("path", path).Msg("session rejected by backend")
			c.onUnauthorized(token)
		}
		return httpErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func readHTTPError(resp *http.Response) *HTTPError {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}
	var apiErr struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(respBody, &apiErr) == nil {
		if apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error, Body: respBody}
		}
		if apiErr.Detail != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Detail, Body: respBody}
		}
	}
	msg := strings.TrimSpace(string(respBody))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: msg, Body: respBody}
}
