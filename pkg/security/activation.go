package security

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrCodeMismatch means the token verified but the supplied activation code
// differs from the embedded one.
var ErrCodeMismatch = errors.New("activation code mismatch")

// ActivationTokenTTL bounds the registration window. Expiry rides on the
// token's exp claim; there is no separate server-side clock check.
const ActivationTokenTTL = 5 * time.Minute

// PendingUser is the registration payload carried inside an activation
// token. No server-side state exists until the token is redeemed.
type PendingUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type activationClaims struct {
	User           PendingUser `json:"user"`
	ActivationCode string      `json:"activation_code"`
	jwt.RegisteredClaims
}

// NewActivationToken signs the pending registration together with a fresh
// 4-digit code. The token goes to the client, the code goes out of band;
// redemption requires both.
func NewActivationToken(user PendingUser, secret string) (token, code string, err error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", "", err
	}
	code = fmt.Sprintf("%04d", 1000+n.Int64())

	claims := activationClaims{
		User:           user,
		ActivationCode: code,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ActivationTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "edupress",
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}
	return token, code, nil
}

// VerifyActivationToken validates signature and expiry, then compares the
// embedded code against the supplied one.
func VerifyActivationToken(tokenString, suppliedCode, secret string) (*PendingUser, error) {
	token, err := jwt.ParseWithClaims(tokenString, &activationClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*activationClaims)
	if !ok || !token.Valid || claims.ActivationCode == "" {
		return nil, ErrTokenInvalid
	}

	if subtle.ConstantTimeCompare([]byte(claims.ActivationCode), []byte(suppliedCode)) != 1 {
		return nil, ErrCodeMismatch
	}

	return &claims.User, nil
}
