// Package status summarises backend health for the admin panel.
package status

import (
	"context"
	"strings"
	"sync"
	"time"

	"booteh.app/web/internal/backend"
)

// States a Summary or Component can be in.
const (
	Operational = "operational"
	Degraded    = "degraded"
	Down        = "down"
)

const defaultCacheTTL = 30 * time.Second

// Summary captures an overview of the platform status.
type Summary struct {
	State       string
	UpdatedAt   time.Time
	Environment string
	Components  []Component
}

// LabelKey is the locale key describing State.
func (s Summary) LabelKey() string { return "status." + s.State }

// Component represents the status of an individual subsystem.
type Component struct {
	Name   string
	Status string
}

// HealthSource is satisfied by backend.Client.
type HealthSource interface {
	Health(ctx context.Context) (backend.Health, error)
}

// Option customises a Client.
type Option func(*Client)

// WithCacheTTL sets how long a summary is reused. Zero disables caching.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.ttl = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client fetches health from the backend and caches the derived summary.
type Client struct {
	source HealthSource
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	cached  Summary
	expires time.Time
}

// NewClient builds a status client over source.
func NewClient(source HealthSource, opts ...Option) *Client {
	c := &Client{source: source, ttl: defaultCacheTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSummary returns the cached summary or asks the backend. An unreachable
// backend is reported as a Down summary, not as an error.
func (c *Client) FetchSummary(ctx context.Context) Summary {
	now := c.now()
	c.mu.RLock()
	if c.ttl > 0 && now.Before(c.expires) {
		s := clone(c.cached)
		c.mu.RUnlock()
		return s
	}
	c.mu.RUnlock()

	h, err := c.source.Health(ctx)
	summary := summarize(h, err, now)

	if c.ttl > 0 {
		c.mu.Lock()
		c.cached = clone(summary)
		c.expires = now.Add(c.ttl)
		c.mu.Unlock()
	}
	return summary
}

func summarize(h backend.Health, err error, now time.Time) Summary {
	if err != nil {
		return Summary{
			State:     Down,
			UpdatedAt: now,
			Components: []Component{
				{Name: "api", Status: Down},
				{Name: "database", Status: Down},
			},
		}
	}
	api := componentState(h.Status, "ok", "healthy", "up")
	db := componentState(h.Database, "ok", "connected", "healthy", "up")
	state := Operational
	switch {
	case api == Down:
		state = Down
	case db != Operational || api != Operational:
		state = Degraded
	}
	updated := h.Timestamp
	if updated.IsZero() {
		updated = now
	}
	return Summary{
		State:       state,
		UpdatedAt:   updated,
		Environment: h.Environment,
		Components: []Component{
			{Name: "api", Status: api},
			{Name: "database", Status: db},
		},
	}
}

func componentState(raw string, healthy ...string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return Degraded
	}
	for _, h := range healthy {
		if v == h {
			return Operational
		}
	}
	if v == "down" || v == "unhealthy" || v == "error" {
		return Down
	}
	return Degraded
}

func clone(src Summary) Summary {
	cp := src
	if len(src.Components) > 0 {
		cp.Components = make([]Component, len(src.Components))
		copy(cp.Components, src.Components)
	}
	return cp
}
