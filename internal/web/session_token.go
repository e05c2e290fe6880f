package web

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/includeshubhamgenius/skill-share/internal/identity"
)

// ErrInvalidSessionToken covers every way a presented session token can fail.
var ErrInvalidSessionToken = errors.New("web.invalid_session_token")

// SessionClaims are embedded in the session cookie token.
type SessionClaims struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// MintSessionToken creates a signed HS256 session token for a provider session.
func MintSessionToken(session *identity.Session, issuer string, signingKey []byte, ttl time.Duration) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		UserID:        session.UserID,
		Email:         session.Email,
		EmailVerified: session.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt.Add(-30 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(signingKey)
	return signed, expiresAt, err
}

// ParseSessionToken validates a session token string and returns its claims.
func ParseSessionToken(tokenString string, issuer string, signingKey []byte) (*SessionClaims, error) {
	parsedToken, parseErr := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(parsed *jwt.Token) (interface{}, error) {
		return signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if parseErr != nil || parsedToken == nil || !parsedToken.Valid {
		return nil, ErrInvalidSessionToken
	}
	claims, ok := parsedToken.Claims.(*SessionClaims)
	if !ok || claims.Issuer != issuer {
		return nil, ErrInvalidSessionToken
	}
	return claims, nil
}
