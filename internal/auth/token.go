package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// ErrMissingSecret is returned when a TokenProvider is built without a signing secret.
var ErrMissingSecret = errors.New("auth: jwt secret is required")

// Claims mirrors the payload the backend signs into its tokens.
type Claims struct {
	UserID         json.Number `json:"userId"`
	Username       string      `json:"username"`
	Role           string      `json:"role"`
	OrganizationID json.Number `json:"organizationId,omitempty"`
	jwt.RegisteredClaims
}

// TokenProvider verifies the backend's HS256 token from the authToken cookie
// or an Authorization bearer header.
type TokenProvider struct {
	secret []byte
	logger *zap.Logger
	now    func() time.Time
}

// TokenOption customises a TokenProvider.
type TokenOption func(*TokenProvider)

// WithTokenLogger sets the logger used for rejected tokens.
func WithTokenLogger(l *zap.Logger) TokenOption {
	return func(p *TokenProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTokenClock injects a custom clock, primarily for tests.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(p *TokenProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewTokenProvider builds a provider validating tokens signed with secret.
func NewTokenProvider(secret string, opts ...TokenOption) (*TokenProvider, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	p := &TokenProvider{secret: []byte(secret), logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Current implements Provider.
func (p *TokenProvider) Current(r *http.Request) *Session {
	raw := tokenFromRequest(r)
	if raw == "" {
		return nil
	}
	sess, err := p.Verify(raw)
	if err != nil {
		p.logger.Debug("token rejected", zap.Error(err))
		return nil
	}
	return sess
}

// Verify parses and validates a raw token.
func (p *TokenProvider) Verify(raw string) (*Session, error) {
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}
	now := p.now()
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return nil, errors.New("auth: token expired")
	}
	if claims.NotBefore != nil && now.Before(claims.NotBefore.Time) {
		return nil, errors.New("auth: token not yet valid")
	}

	userID, _ := claims.UserID.Int64()
	orgID, _ := claims.OrganizationID.Int64()
	return &Session{
		UserID:         userID,
		Username:       strings.TrimSpace(claims.Username),
		Role:           NormalizeRole(claims.Role),
		OrganizationID: orgID,
		Token:          raw,
	}, nil
}

// Sign issues a token for claims. It backs local tooling and tests.
func (p *TokenProvider) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func tokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
