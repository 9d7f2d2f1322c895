package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func requestWithCookies(cookies map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return req
}

func TestFlagProviderAcceptsAnyNonEmptyFlag(t *testing.T) {
	var p FlagProvider

	require.Nil(t, p.Current(requestWithCookies(nil)))
	require.Nil(t, p.Current(requestWithCookies(map[string]string{UserFlagCookie: " "})))

	user := p.Current(requestWithCookies(map[string]string{UserFlagCookie: "whatever"}))
	require.True(t, user.Authenticated())
	require.True(t, user.Has(CapDashboard))
	require.True(t, user.Has(CapAssessments))
	require.False(t, user.Has(CapAdminPanel))

	admin := p.Current(requestWithCookies(map[string]string{AdminFlagCookie: "1", TokenCookie: "tok"}))
	require.True(t, admin.IsAdmin())
	require.True(t, admin.Has(CapAdminPanel))
	require.True(t, admin.Has(CapDashboard))
	require.Equal(t, "tok", admin.Token)
}

func TestNilSessionHasNothing(t *testing.T) {
	var s *Session
	require.False(t, s.Authenticated())
	require.False(t, s.Has(CapDashboard))
	require.False(t, s.IsAdmin())
}

func TestTokenProviderVerifiesBackendClaims(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	p, err := NewTokenProvider("secret", WithTokenClock(func() time.Time { return now }))
	require.NoError(t, err)

	token, err := p.Sign(Claims{
		UserID:         "42",
		Username:       "sara",
		Role:           "admin",
		OrganizationID: "7",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	require.NoError(t, err)

	fromCookie := p.Current(requestWithCookies(map[string]string{TokenCookie: token}))
	require.NotNil(t, fromCookie)
	require.Equal(t, int64(42), fromCookie.UserID)
	require.Equal(t, "sara", fromCookie.Username)
	require.Equal(t, RoleAdmin, fromCookie.Role)
	require.Equal(t, int64(7), fromCookie.OrganizationID)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	require.NotNil(t, p.Current(req))
}

func TestTokenProviderRejectsBadTokens(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	p, err := NewTokenProvider("secret", WithTokenClock(func() time.Time { return now }))
	require.NoError(t, err)
	other, err := NewTokenProvider("other")
	require.NoError(t, err)

	expired, err := p.Sign(Claims{UserID: "1", Role: "user", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}})
	require.NoError(t, err)
	_, err = p.Verify(expired)
	require.Error(t, err)

	foreign, err := other.Sign(Claims{UserID: "1", Role: "user"})
	require.NoError(t, err)
	require.Nil(t, p.Current(requestWithCookies(map[string]string{TokenCookie: foreign})))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: "admin"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = p.Verify(unsigned)
	require.Error(t, err)
}

func TestUnknownRoleFallsBackToUser(t *testing.T) {
	p, err := NewTokenProvider("secret")
	require.NoError(t, err)
	token, err := p.Sign(Claims{UserID: "3", Role: "superuser"})
	require.NoError(t, err)

	sess, err := p.Verify(token)
	require.NoError(t, err)
	require.Equal(t, RoleUser, sess.Role)
	require.False(t, sess.Has(CapAdminPanel))
}

func TestNewTokenProviderRequiresSecret(t *testing.T) {
	_, err := NewTokenProvider("  ")
	require.ErrorIs(t, err, ErrMissingSecret)
}
