package hass

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("hub-secret"))
	require.NoError(t, err)
	return token
}

func TestInspectTokenReadsExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	token := signToken(t, jwt.RegisteredClaims{
		Issuer:    "f1e2d3",
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
	})

	info, err := InspectToken(token, now)
	require.NoError(t, err)
	assert.Equal(t, "f1e2d3", info.Issuer)
	assert.False(t, info.Expired)
	assert.True(t, info.ExpiresAt.Equal(now.Add(24*time.Hour)))

	info, err = InspectToken(token, now.Add(48*time.Hour))
	require.NoError(t, err)
	assert.True(t, info.Expired)
}

func TestInspectTokenRejectsGarbage(t *testing.T) {
	_, err := InspectToken("  ", time.Now())
	assert.True(t, errors.Is(err, ErrTokenMissing))

	_, err = InspectToken("not-a-jwt", time.Now())
	assert.Error(t, err)
}
