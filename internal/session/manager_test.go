package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time { return c.current }

func newTestManager(t *testing.T) (*Manager, *fixedClock) {
	t.Helper()
	clock := &fixedClock{current: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	mgr, err := NewManager(Config{
		CookieName:  "test_session",
		HashKey:     []byte("12345678901234567890123456789012"),
		BlockKey:    []byte("abcdefghijklmnopqrstuv0123456789"),
		IdleTimeout: 10 * time.Minute,
		Lifetime:    2 * time.Hour,
		Now:         clock.Now,
	})
	require.NoError(t, err)
	return mgr, clock
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func roundTrip(t *testing.T, mgr *Manager, sess *Session) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, mgr.Save(rec, sess))
	cookie := findCookie(rec.Result().Cookies(), "test_session")
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	return req
}

func TestManagerPersistsLocaleAndCSRF(t *testing.T) {
	mgr, clock := newTestManager(t)

	sess, err := mgr.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID())
	require.True(t, sess.CreatedAt().Equal(clock.current))
	require.True(t, sess.Dirty())

	sess.SetLocale("en")
	token, err := sess.EnsureCSRFToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	clock.current = clock.current.Add(5 * time.Minute)
	loaded, err := mgr.Load(roundTrip(t, mgr, sess))
	require.NoError(t, err)
	require.Equal(t, sess.ID(), loaded.ID())
	require.Equal(t, "en", loaded.Locale())
	require.Equal(t, token, loaded.CSRFToken())
	require.False(t, loaded.Dirty())
}

func TestFlashIsShownOnce(t *testing.T) {
	mgr, _ := newTestManager(t)
	sess := mgr.New()
	sess.SetFlash("success", "self.success")

	loaded, err := mgr.Load(roundTrip(t, mgr, sess))
	require.NoError(t, err)
	require.Equal(t, &Flash{Kind: "success", Key: "self.success"}, loaded.PopFlash())
	require.Nil(t, loaded.PopFlash())
	require.True(t, loaded.Dirty())
}

func TestManagerExpiresIdleSessions(t *testing.T) {
	mgr, clock := newTestManager(t)
	req := roundTrip(t, mgr, mgr.New())

	clock.current = clock.current.Add(11 * time.Minute)
	_, err := mgr.Load(req)
	require.True(t, errors.Is(err, ErrExpired))
}

func TestTamperedCookieStartsFreshSession(t *testing.T) {
	mgr, _ := newTestManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "garbage"})

	sess, err := mgr.Load(req)
	require.NoError(t, err)
	require.Empty(t, sess.Locale())
	require.True(t, sess.Dirty())
}

func TestRotateReissuesIdentity(t *testing.T) {
	mgr, _ := newTestManager(t)
	sess := mgr.New()
	sess.SetLocale("en")
	oldToken, err := sess.EnsureCSRFToken()
	require.NoError(t, err)
	oldID := sess.ID()
	require.NoError(t, mgr.Save(httptest.NewRecorder(), sess))

	sess.Rotate()
	sess.SetFlash("info", "flash.logged_out")
	require.True(t, sess.Dirty())

	loaded, err := mgr.Load(roundTrip(t, mgr, sess))
	require.NoError(t, err)
	require.NotEqual(t, oldID, loaded.ID())
	require.Empty(t, loaded.CSRFToken())
	require.Equal(t, "en", loaded.Locale())
	require.Equal(t, &Flash{Kind: "info", Key: "flash.logged_out"}, loaded.PopFlash())

	newToken, err := loaded.EnsureCSRFToken()
	require.NoError(t, err)
	require.NotEqual(t, oldToken, newToken)
}

func TestNewManagerValidatesKeys(t *testing.T) {
	_, err := NewManager(Config{})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewManager(Config{HashKey: GenerateKey(32), BlockKey: []byte("short")})
	require.ErrorIs(t, err, ErrInvalidConfig)
}
