package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	match, err := ComparePassword("secret1", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = ComparePassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestComparePasswordRejectsMalformedHash(t *testing.T) {
	_, err := ComparePassword("secret1", "not-a-hash")
	assert.Error(t, err)
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("user-1", "test-secret", time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestParseTokenWrongSecretIsInvalid(t *testing.T) {
	token, err := GenerateToken("user-1", "test-secret", time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseTokenExpiredIsDistinguished(t *testing.T) {
	token, err := GenerateToken("user-1", "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "test-secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestParseTokenGarbageIsInvalid(t *testing.T) {
	_, err := ParseToken("garbage.token.value", "test-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
