package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// name of the cookie carrying the identity session
	SessionName = "biolink_session"

	sessionUserKey = "user_id"
	contextUserKey = "user_id"
	contextEmail   = "user_email"

	defaultTokenTTL = 7 * 24 * time.Hour
)

// represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Plan   string `json:"plan,omitempty"`
	jwt.RegisteredClaims
}

// signs and validates bearer tokens with a shared HMAC secret
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}
