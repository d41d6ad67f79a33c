package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken bundles a signed JWT with its absolute expiry so callers
// can forward both to the client.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// NewAccessToken signs a short-lived HS256 token carrying the user id in
// the `sub` claim and the user's role in a custom `role` claim. There is
// no refresh mechanism; clients log in again after expiry.
func NewAccessToken(secret string, userID uint64, role string, ttl time.Duration) (AccessToken, error) {
	now := time.Now()
	exp := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, ExpiresAt: exp}, nil
}
