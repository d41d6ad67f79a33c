package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "creator", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	parsed, err := jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.EqualValues(t, 42, claims["sub"])
	assert.Equal(t, "creator", claims["role"])
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)
}

func TestNewAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "listener", time.Hour)
	require.NoError(t, err)

	_, err = jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	assert.Error(t, err)
}

func TestNewObjectKeyFlat(t *testing.T) {
	key := NewObjectKey(KeyPrefixTrack, "my song/../x.mp3")
	assert.True(t, strings.HasPrefix(key, KeyPrefixTrack))
	assert.NotContains(t, key, "/")
	assert.NotContains(t, key, " ")

	other := NewObjectKey(KeyPrefixTrack, "my song/../x.mp3")
	assert.NotEqual(t, key, other)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("geheim123", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "geheim123"))
	assert.False(t, VerifyPassword(hash, "falsch"))
}
