package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session token lifetime.
const TTL = 30 * 24 * time.Hour

var (
	// ErrMalformed means the input is not a bearer token at all: a
	// missing or bad Authorization header, or a string that does not
	// parse as a JWT.
	ErrMalformed = errors.New("malformed token")
	// ErrExpired means the token parsed and the signature checked out,
	// but the expiry claim is in the past.
	ErrExpired = errors.New("token expired")
	// ErrInvalid covers everything else: wrong signature, wrong
	// signing method, unusable claims.
	ErrInvalid = errors.New("invalid token")
)

const bearerPrefix = "Bearer "

// Claims is the payload of a session token.
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 session tokens.
type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// Generate creates a signed session token for the user, valid for TTL.
func (m *Manager) Generate(userID uuid.UUID, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a raw token string and returns its claims.
// Failures map onto ErrMalformed, ErrExpired or ErrInvalid.
func (m *Manager) Verify(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrInvalid
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}

// VerifyHeader verifies a token carried in an "X-Authorization: Bearer
// <token>" header value. An absent or non-bearer header is ErrMalformed.
func (m *Manager) VerifyHeader(header string) (*Claims, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, ErrMalformed
	}
	return m.Verify(strings.TrimPrefix(header, bearerPrefix))
}
