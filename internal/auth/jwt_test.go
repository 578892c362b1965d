package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewIssuer("secret", "morsel", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("u1", "alice")
	require.NoError(t, err)

	claims, err := issuer.Verify("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "morsel", claims.Issuer)
}

func TestIssuer_Rejections(t *testing.T) {
	issuer, err := NewIssuer("secret", "morsel", time.Hour)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewIssuer("other", "morsel", time.Hour)
		require.NoError(t, err)
		token, err := other.Issue("u1", "")
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		past, err := NewIssuer("secret", "morsel", time.Minute)
		require.NoError(t, err)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := past.Issue("u1", "")
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewIssuer("secret", "elsewhere", time.Hour)
		require.NoError(t, err)
		token, err := other.Issue("u1", "")
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "u1",
			"iss": "morsel",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Verify("not-a-token")
		assert.Error(t, err)
	})
}

func TestIssuer_Validation(t *testing.T) {
	_, err := NewIssuer("", "morsel", 0)
	assert.True(t, errors.Is(err, ErrMissingSecret))

	issuer, err := NewIssuer("secret", "", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, issuer.ttl)

	_, err = issuer.Issue(" ", "")
	assert.ErrorIs(t, err, ErrMissingSubject)
}
