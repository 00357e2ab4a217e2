package security

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
)

// GenerateMFASecret generates a random Base32 string (compatible with TOTP secrets).
func GenerateMFASecret() (string, error) {
	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	// Google Authenticator requires Base32, not Base64
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// GetMFAQRCodeURI returns the URI for QR code generation (compatible with Google Authenticator).
func GetMFAQRCodeURI(email, secret string) string {
	issuer := "Edupress"
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		url.PathEscape(issuer), url.PathEscape(email), secret, url.QueryEscape(issuer))
}

// VerifyMFACode checks if the provided 6-digit code is valid for the given secret.
func VerifyMFACode(code, secret string) bool {
	return totp.Validate(code, secret)
}

// MFAChallengeTTL bounds the window between a password-verified login and
// the TOTP code submission.
const MFAChallengeTTL = 5 * time.Minute

const mfaChallengeStage = "mfa_challenge"

type mfaChallengeClaims struct {
	UserID string `json:"id"`
	Stage  string `json:"stage"`
	jwt.RegisteredClaims
}

// NewMFAChallengeToken binds a pending TOTP check to a login attempt that
// already passed the password check. Possession of the TOTP secret alone
// never opens a session; the challenge token must accompany the code.
func NewMFAChallengeToken(userID, secret string) (string, error) {
	claims := mfaChallengeClaims{
		UserID: userID,
		Stage:  mfaChallengeStage,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(MFAChallengeTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "edupress",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyMFAChallengeToken validates a challenge token and returns the user
// id it is bound to. The stage claim keeps other token kinds signed with
// the same secret from passing as a challenge.
func VerifyMFAChallengeToken(tokenString, secret string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &mfaChallengeClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*mfaChallengeClaims)
	if !ok || !token.Valid || claims.Stage != mfaChallengeStage || claims.UserID == "" {
		return "", ErrTokenInvalid
	}

	return claims.UserID, nil
}
