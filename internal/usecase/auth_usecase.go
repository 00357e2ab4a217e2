package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edupress/edupress/internal/config"
	"github.com/edupress/edupress/internal/domain"
	"github.com/edupress/edupress/pkg/security"
)

// TokenPair bundles the two signed credentials minted for a session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is the outcome of a successful credential check: either an
// opened session (Pair and User set) or a pending second factor
// (MFAChallenge set, everything else nil).
type LoginResult struct {
	Pair         *TokenPair
	User         *domain.User
	MFAChallenge string
}

// AuthUsecase owns the authentication and session lifecycle: registration,
// activation, login, token refresh and revocation.
type AuthUsecase struct {
	userRepo domain.UserRepository
	sessions domain.SessionRepository
	mailer   domain.Mailer
	auditLog domain.AuditLogger
	cfg      config.AuthConfig
	log      *zap.Logger
}

func NewAuthUsecase(u domain.UserRepository, s domain.SessionRepository, m domain.Mailer, a domain.AuditLogger, cfg config.AuthConfig, log *zap.Logger) *AuthUsecase {
	return &AuthUsecase{
		userRepo: u,
		sessions: s,
		mailer:   m,
		auditLog: a,
		cfg:      cfg,
		log:      log,
	}
}

// Register validates the payload and issues an activation token carrying the
// pending registration and a 4-digit code. No user record is created yet;
// the token itself is the only state.
func (u *AuthUsecase) Register(ctx context.Context, name, email, password string) (string, error) {
	if name == "" || !domain.ValidEmail(email) || len(password) < 6 {
		return "", domain.ErrInvalidInput
	}

	if _, err := u.userRepo.GetByEmail(ctx, email); err == nil {
		return "", domain.ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	pending := security.PendingUser{Name: name, Email: email, Password: password}
	token, code, err := security.NewActivationToken(pending, u.cfg.ActivationSecret)
	if err != nil {
		return "", err
	}

	if err := u.mailer.SendActivationMail(ctx, email, name, code); err != nil {
		return "", fmt.Errorf("failed to send activation mail: %w", err)
	}

	return token, nil
}

// Activate redeems an activation token. The embedded code must match the
// supplied one exactly; an expired token surfaces as
// security.ErrTokenExpired.
func (u *AuthUsecase) Activate(ctx context.Context, token, code string) error {
	pending, err := security.VerifyActivationToken(token, code, u.cfg.ActivationSecret)
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(pending.Password)
	if err != nil {
		return err
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsVerified:   true,
	}

	return u.userRepo.Create(ctx, user)
}

// Login validates credentials. Unknown email and wrong password produce the
// same error so responses never reveal whether an account exists. Accounts
// with TOTP enabled get a short-lived challenge token instead of a session;
// the session opens only after VerifyMFA.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		u.audit(ctx, "", "LOGIN_FAILED", map[string]interface{}{"email": email})
		return nil, domain.ErrInvalidCredentials
	}

	match, err := security.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		u.audit(ctx, user.ID, "LOGIN_FAILED", nil)
		return nil, domain.ErrInvalidCredentials
	}

	if user.MFAEnabled {
		challenge, err := security.NewMFAChallengeToken(user.ID, u.cfg.ActivationSecret)
		if err != nil {
			return nil, err
		}
		return &LoginResult{MFAChallenge: challenge}, nil
	}

	pair, err := u.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	u.audit(ctx, user.ID, "LOGIN_SUCCESS", nil)
	return &LoginResult{Pair: pair, User: user}, nil
}

// VerifyMFA completes a login for users with TOTP enabled. The challenge
// token proves the password check already happened; the TOTP code alone is
// not enough to open a session.
func (u *AuthUsecase) VerifyMFA(ctx context.Context, challengeToken, code string) (*TokenPair, *domain.User, error) {
	userID, err := security.VerifyMFAChallengeToken(challengeToken, u.cfg.ActivationSecret)
	if err != nil {
		return nil, nil, err
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if !security.VerifyMFACode(code, user.MFASecret) {
		u.audit(ctx, user.ID, "MFA_FAILED", nil)
		return nil, nil, domain.ErrInvalidMFACode
	}

	pair, err := u.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	u.audit(ctx, user.ID, "LOGIN_SUCCESS", nil)
	return pair, user, nil
}

// SocialAuth signs a user in through an external identity provider,
// creating the account on first sight. No password check happens here; a
// random unusable hash is stored so the account cannot be entered through
// the password path.
func (u *AuthUsecase) SocialAuth(ctx context.Context, name, email string, avatar domain.Avatar) (*TokenPair, *domain.User, error) {
	user, err := u.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		hash, hashErr := security.HashPassword(uuid.New().String())
		if hashErr != nil {
			return nil, nil, hashErr
		}
		user = &domain.User{
			ID:           uuid.New().String(),
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			Avatar:       avatar,
			Role:         domain.RoleUser,
			IsVerified:   true,
		}
		if err := u.userRepo.Create(ctx, user); err != nil {
			return nil, nil, err
		}
	} else if err != nil {
		return nil, nil, err
	}

	pair, err := u.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	u.audit(ctx, user.ID, "LOGIN_SUCCESS", nil)
	return pair, user, nil
}

// Refresh mints a new token pair from a refresh token. It deliberately
// re-derives everything from the cached session snapshot instead of the
// credential store: no session, no refresh. Logout wins over an otherwise
// valid refresh token.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *domain.User, error) {
	claims, err := security.ParseToken(refreshToken, u.cfg.RefreshTokenSecret)
	if err != nil {
		return nil, nil, err
	}

	user, err := u.sessions.Get(ctx, claims.UserID)
	if err != nil {
		u.audit(ctx, claims.UserID, "REFRESH_FAILED", nil)
		return nil, nil, err
	}

	pair, err := u.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Logout removes the server-side session. Access tokens for this user stop
// resolving immediately, regardless of their remaining lifetime.
func (u *AuthUsecase) Logout(ctx context.Context, userID string) error {
	return u.sessions.Remove(ctx, userID)
}

// SetupMFA generates and stores a pending TOTP secret and returns the
// otpauth URI for the client to render as a QR code.
func (u *AuthUsecase) SetupMFA(ctx context.Context, userID string) (secret, uri string, err error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", "", err
	}

	secret, err = security.GenerateMFASecret()
	if err != nil {
		return "", "", err
	}

	user.MFASecret = secret
	if err := u.userRepo.Update(ctx, user); err != nil {
		return "", "", err
	}

	return secret, security.GetMFAQRCodeURI(user.Email, secret), nil
}

// EnableMFA verifies the first code against the pending secret and turns
// the second factor on.
func (u *AuthUsecase) EnableMFA(ctx context.Context, userID, code string) error {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.MFASecret == "" || !security.VerifyMFACode(code, user.MFASecret) {
		return domain.ErrInvalidMFACode
	}

	user.MFAEnabled = true
	if err := u.userRepo.Update(ctx, user); err != nil {
		return err
	}

	return u.refreshSnapshot(ctx, user)
}

// openSession signs both tokens and writes the session snapshot. The
// snapshot write is not optional: without it the tokens would verify but
// every gated request would still be rejected.
func (u *AuthUsecase) openSession(ctx context.Context, user *domain.User) (*TokenPair, error) {
	accessToken, err := security.GenerateToken(user.ID, u.cfg.AccessTokenSecret, u.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := security.GenerateToken(user.ID, u.cfg.RefreshTokenSecret, u.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	if err := u.sessions.Put(ctx, user.ID, user, u.cfg.SessionTTL()); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// audit records a security event. Best effort: a failed audit write is
// logged but never blocks the auth flow.
func (u *AuthUsecase) audit(ctx context.Context, userID, event string, metadata map[string]interface{}) {
	if err := u.auditLog.LogSecurityEvent(ctx, userID, event, "", metadata); err != nil {
		u.log.Warn("audit write failed", zap.String("event", event), zap.Error(err))
	}
}

func (u *AuthUsecase) refreshSnapshot(ctx context.Context, user *domain.User) error {
	if err := u.sessions.Put(ctx, user.ID, user, u.cfg.SessionTTL()); err != nil {
		u.log.Warn("session snapshot refresh failed", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}
	return nil
}
