package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is what a session token carries: the username and the sites the
// user may operate on.
type Claims struct {
	Ambulatori []string `json:"ambulatori"`
	jwt.RegisteredClaims
}

// AllowsSite reports whether the token grants access to a clinic site.
func (c *Claims) AllowsSite(site agenda.Site) bool {
	for _, a := range c.Ambulatori {
		if a == string(site) {
			return true
		}
	}
	return false
}

// Sites returns the granted sites in claim order.
func (c *Claims) Sites() []agenda.Site {
	out := make([]agenda.Site, 0, len(c.Ambulatori))
	for _, a := range c.Ambulatori {
		out = append(out, agenda.Site(a))
	}
	return out
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) Sign(username string, ambulatori []string) (string, error) {
	now := time.Now()
	claims := Claims{
		Ambulatori: ambulatori,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) Verify(tokenStr string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
