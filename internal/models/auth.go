package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are carried in the session JWT. The registered ID (jti) is the
// session token stored in the sessions table.
type TokenClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

type Session struct {
	ID        int64
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
