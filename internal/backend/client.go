// Package backend is the HTTP client for the Booteh backend API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL    = "http://localhost:8000"
	defaultTimeout    = 8 * time.Second
	idempotencyHeader = "Idempotency-Key"

	// DefaultLoginPath and DefaultAdminLoginPath are resolved below /api.
	DefaultLoginPath      = "auth/login"
	DefaultAdminLoginPath = "admin/login"
)

// Observer is notified after every backend call.
type Observer interface {
	ObserveBackend(endpoint string, err error, elapsed time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithObserver registers a call observer such as the metrics manager.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLoginPaths points the login calls at backend routes below /api.
// Empty values keep the defaults.
func WithLoginPaths(user, admin string) Option {
	return func(c *Client) {
		if p := strings.Trim(strings.TrimSpace(user), "/"); p != "" {
			c.loginPath = p
		}
		if p := strings.Trim(strings.TrimSpace(admin), "/"); p != "" {
			c.adminLoginPath = p
		}
	}
}

// WithLogger sets the logger used for failed calls.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client issues calls against the backend. Every call re-fetches; nothing is cached.
type Client struct {
	baseURL        string
	http           *http.Client
	timeout        time.Duration
	observer       Observer
	logger         *zap.Logger
	loginPath      string
	adminLoginPath string
}

// NewClient constructs a backend client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:        baseURL,
		timeout:        defaultTimeout,
		logger:         zap.NewNop(),
		loginPath:      DefaultLoginPath,
		adminLoginPath: DefaultAdminLoginPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// BaseURL reports the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// BlogPosts lists published posts, newest first. A limit <= 0 is omitted.
func (c *Client) BlogPosts(ctx context.Context, limit int) ([]BlogPost, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var rows []blogPostPayload
	if err := c.getData(ctx, "blog", query, &rows); err != nil {
		return nil, err
	}
	posts := make([]BlogPost, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toBlogPost())
	}
	return posts, nil
}

// PersonalityTests lists the active personality tests.
func (c *Client) PersonalityTests(ctx context.Context) ([]PersonalityTest, error) {
	var rows []personalityTestPayload
	if err := c.getData(ctx, "personality-tests", nil, &rows); err != nil {
		return nil, err
	}
	tests := make([]PersonalityTest, 0, len(rows))
	for _, row := range rows {
		tests = append(tests, row.toPersonalityTest())
	}
	return tests, nil
}

// MysteryAssessments lists the active mystery assessments.
func (c *Client) MysteryAssessments(ctx context.Context) ([]MysteryAssessment, error) {
	var rows []mysteryAssessmentPayload
	if err := c.getData(ctx, "mystery", nil, &rows); err != nil {
		return nil, err
	}
	out := make([]MysteryAssessment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toMysteryAssessment())
	}
	return out, nil
}

// SubmitAnswers posts the self-assessment answers in a single request.
func (c *Client) SubmitAnswers(ctx context.Context, answers Answers) (SubmitResult, error) {
	if answers == nil {
		answers = Answers{}
	}
	var payload struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	body := map[string]any{"answers": answers}
	if err := c.do(ctx, http.MethodPost, "submit", "", nil, body, &payload); err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{
		Success: payload.Success,
		Message: strings.TrimSpace(payload.Message),
		Data:    payload.Data,
	}, nil
}

// Health fetches the backend health report.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var payload healthPayload
	if err := c.do(ctx, http.MethodGet, "health", "health", nil, nil, &payload); err != nil {
		return Health{}, err
	}
	return Health{
		Status:      strings.TrimSpace(payload.Status),
		Database:    strings.TrimSpace(payload.Database),
		Environment: strings.TrimSpace(payload.Environment),
		Timestamp:   parseTime(payload.Timestamp),
	}, nil
}

// Login exchanges user credentials for a backend token.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	return c.login(ctx, "login", c.loginPath, creds)
}

// AdminLogin exchanges admin credentials for a backend token.
func (c *Client) AdminLogin(ctx context.Context, creds Credentials) (LoginResult, error) {
	return c.login(ctx, "admin_login", c.adminLoginPath, creds)
}

func (c *Client) login(ctx context.Context, endpoint, path string, creds Credentials) (LoginResult, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	var payload loginPayload
	if err := c.do(ctx, http.MethodPost, endpoint, path, nil, creds, &payload); err != nil {
		return LoginResult{}, err
	}
	return payload.toLoginResult(), nil
}

// getData decodes the `data` field of a list endpoint, defaulting to an empty slice.
func (c *Client) getData(ctx context.Context, endpoint string, query url.Values, dst any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, endpoint, query, nil, &envelope); err != nil {
		return err
	}
	raw := bytes.TrimSpace(envelope.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("[]")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return c.fail(endpoint, &RequestError{Endpoint: endpoint, Err: err})
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint, path string, query url.Values, body, dst any) (err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveBackend(endpoint, err, time.Since(start))
		}
	}()

	elems := []string{"api"}
	if path != "" {
		elems = append(elems, path)
	}
	target, err := url.JoinPath(c.baseURL, elems...)
	if err != nil {
		return c.fail(endpoint, &RequestError{Endpoint: endpoint, Err: err})
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return c.fail(endpoint, &RequestError{Endpoint: endpoint, Err: err})
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return c.fail(endpoint, &RequestError{Endpoint: endpoint, Err: err})
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(idempotencyHeader, uuid.NewString())
	}
	if lang := LocaleFrom(ctx); lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	if token := tokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(endpoint, &RequestError{Endpoint: endpoint, Err: err})
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(endpoint, &StatusError{Endpoint: endpoint, Status: resp.StatusCode, Message: drainError(resp.Body)})
	}
	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return c.fail(endpoint, &RequestError{Endpoint: endpoint, Err: err})
	}
	return nil
}

func (c *Client) fail(endpoint string, err error) error {
	c.logger.Debug("backend call failed", zap.String("endpoint", endpoint), zap.Error(err))
	return err
}

// drainError extracts the backend's `message`, or the leading body bytes.
func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &payload) == nil {
		if msg := firstNonEmpty(payload.Message, payload.Error); msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(string(b))
}
