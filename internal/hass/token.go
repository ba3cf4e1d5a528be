package hass

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenMissing = errors.New("hass: access token missing")

// TokenInfo is what can be read from a long-lived access token without the hub's key.
type TokenInfo struct {
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Expired   bool
}

// InspectToken decodes a hub access token without verifying its signature.
// Home Assistant long-lived tokens are JWTs; anything else returns an error.
func InspectToken(token string, now time.Time) (TokenInfo, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return TokenInfo{}, ErrTokenMissing
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, err
	}

	info := TokenInfo{Issuer: claims.Issuer}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
		info.Expired = !now.Before(info.ExpiresAt)
	}
	return info, nil
}
