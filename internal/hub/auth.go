package hub

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrBadToken reports a channel token that failed verification.
var ErrBadToken = errors.New("hub: invalid token")

// GenerateToken mints an HS256 channel token whose subject is the user
// identity. The login flow upstream does this; here it also backs tests
// and the command-line client.
func GenerateToken(secret, user string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   user,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("hub: sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies raw and returns the user identity it carries.
func ParseToken(secret, raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", ErrBadToken
	}
	if claims.Subject == "" {
		return "", ErrBadToken
	}
	return claims.Subject, nil
}
