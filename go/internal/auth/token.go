package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

var (
	ErrInvalidToken = fmt.Errorf("invalid session token: %w", models.ErrUnauthenticated)
	ErrExpiredToken = fmt.Errorf("session token expired: %w", models.ErrUnauthenticated)
)

// Claims are carried inside a session token.
type Claims struct {
	OperatorID uuid.UUID `json:"sub"`
	Email      string    `json:"email"`
	ExpiresAt  int64     `json:"exp"`
}

// Expiry returns the expiry as a time.
func (c Claims) Expiry() time.Time {
	return time.Unix(c.ExpiresAt, 0)
}

// TokenIssuer signs and verifies HMAC-SHA256 session tokens of the form
// base64url(claims) "." base64url(mac).
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

// NewTokenIssuer creates an issuer. secret must not be empty.
func NewTokenIssuer(secret string, ttl time.Duration, clock clockwork.Clock) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, clock: clock}, nil
}

// Issue signs a token for op.
func (t *TokenIssuer) Issue(op *models.Operator) (string, Claims, error) {
	claims := Claims{
		OperatorID: op.ID,
		Email:      op.Email,
		ExpiresAt:  t.clock.Now().Add(t.ttl).Unix(),
	}
	body, err := json.Marshal(claims)
	if err != nil {
		return "", Claims{}, fmt.Errorf("failed to marshal claims: %w", err)
	}
	payload := base64.RawURLEncoding.EncodeToString(body)
	return payload + "." + t.sign(payload), claims, nil
}

// Verify checks the signature and expiry of token.
func (t *TokenIssuer) Verify(token string) (Claims, error) {
	payload, sig, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || payload == "" || sig == "" {
		return Claims{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(t.sign(payload))) {
		return Claims{}, ErrInvalidToken
	}

	body, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(body, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	if !t.clock.Now().Before(claims.Expiry()) {
		return Claims{}, ErrExpiredToken
	}
	return claims, nil
}

func (t *TokenIssuer) sign(payload string) string {
	h := hmac.New(sha256.New, t.secret)
	h.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
