package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/financefusion/api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "finance-fusion"

// TokenManager signs and verifies session JWTs. The jti claim carries the
// session token, so a JWT is only as valid as the sessions row behind it.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// GenerateSessionToken signs a JWT for the given session.
func (tm *TokenManager) GenerateSessionToken(userID int64, sessionToken string, expiresAt time.Time) (string, error) {
	now := tm.now()
	claims := &models.TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionToken,
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature, algorithm, issuer and expiry. Any failure
// is reported as models.ErrUnauthorized, or ErrSessionExpired for an
// otherwise valid token past its exp.
func (tm *TokenManager) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	if !token.Valid || claims.ID == "" || claims.UserID == 0 {
		return nil, models.ErrUnauthorized
	}

	return claims, nil
}
