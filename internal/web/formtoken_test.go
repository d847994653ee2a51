package web

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormTokensRoundTrip(t *testing.T) {
	tokens := NewFormTokens("secret", time.Hour)
	raw, err := tokens.Issue()
	require.NoError(t, err)
	assert.NoError(t, tokens.Verify(raw))
}

func TestFormTokensRejects(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	tokens := NewFormTokens("secret", time.Minute)
	tokens.now = func() time.Time { return now }

	raw, err := tokens.Issue()
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := *tokens
		later.now = func() time.Time { return now.Add(2 * time.Minute) }
		assert.ErrorIs(t, later.Verify(raw), errInvalidFormToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewFormTokens("different", time.Minute)
		other.now = tokens.now
		assert.ErrorIs(t, other.Verify(raw), errInvalidFormToken)
	})

	t.Run("empty and garbage", func(t *testing.T) {
		assert.ErrorIs(t, tokens.Verify(""), errInvalidFormToken)
		assert.ErrorIs(t, tokens.Verify("not.a.token"), errInvalidFormToken)
	})

	t.Run("wrong purpose", func(t *testing.T) {
		claims := formClaims{
			Purpose: "login",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			},
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		assert.ErrorIs(t, tokens.Verify(forged), errInvalidFormToken)
	})
}
