package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const activationSecret = "activation-test-secret"

func TestActivationTokenRoundTrip(t *testing.T) {
	pending := PendingUser{Name: "A", Email: "a@x.com", Password: "secret1"}

	token, code, err := NewActivationToken(pending, activationSecret)
	require.NoError(t, err)
	assert.Len(t, code, 4)

	got, err := VerifyActivationToken(token, code, activationSecret)
	require.NoError(t, err)
	assert.Equal(t, pending, *got)
}

func TestActivationCodeMismatch(t *testing.T) {
	token, code, err := NewActivationToken(PendingUser{Name: "A", Email: "a@x.com", Password: "secret1"}, activationSecret)
	require.NoError(t, err)

	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}

	_, err = VerifyActivationToken(token, wrong, activationSecret)
	assert.ErrorIs(t, err, ErrCodeMismatch)
}

func TestActivationTokenWrongSecret(t *testing.T) {
	token, code, err := NewActivationToken(PendingUser{Email: "a@x.com"}, activationSecret)
	require.NoError(t, err)

	_, err = VerifyActivationToken(token, code, "other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestActivationTokenEmptyCodeRejected(t *testing.T) {
	// A signed token carrying no code must not activate with an empty
	// supplied code.
	claims := activationClaims{
		User: PendingUser{Email: "a@x.com"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(activationSecret))
	require.NoError(t, err)

	_, err = VerifyActivationToken(token, "", activationSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestActivationTokenExpiry(t *testing.T) {
	claims := activationClaims{
		User:           PendingUser{Email: "a@x.com"},
		ActivationCode: "1234",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-10 * time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(activationSecret))
	require.NoError(t, err)

	// Expiry wins even when the supplied code would have matched.
	_, err = VerifyActivationToken(token, "1234", activationSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
