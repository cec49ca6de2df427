package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, expiresAt, err := tm.GenerateToken("admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
	assert.Equal(t, "admin", claims.Subject)
}

func TestTokenRejection(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	t.Run("garbage token", func(t *testing.T) {
		_, err := tm.ParseToken("not.a.token")
		require.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", 60)
		token, _, err := other.GenerateToken("admin")
		require.NoError(t, err)

		_, err = tm.ParseToken(token)
		require.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		short := &TokenManager{secret: []byte("test-secret"), ttl: -time.Minute}
		token, _, err := short.GenerateToken("admin")
		require.NoError(t, err)

		_, err = tm.ParseToken(token)
		require.Error(t, err)
	})
}

func TestTokenManagerDefaults(t *testing.T) {
	tm := NewTokenManager("s", 0)
	assert.Equal(t, time.Hour, tm.ttl)
}
