package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/edupress/edupress/internal/config"
	"github.com/edupress/edupress/internal/domain"
	"github.com/edupress/edupress/pkg/security"
)

// UserUsecase covers profile mutations. Every successful write re-puts the
// session snapshot so the cached identity never lags the store.
type UserUsecase struct {
	userRepo domain.UserRepository
	sessions domain.SessionRepository
	cfg      config.AuthConfig
	log      *zap.Logger
}

func NewUserUsecase(u domain.UserRepository, s domain.SessionRepository, cfg config.AuthConfig, log *zap.Logger) *UserUsecase {
	return &UserUsecase{
		userRepo: u,
		sessions: s,
		cfg:      cfg,
		log:      log,
	}
}

// Me returns the caller's profile. The session snapshot is authoritative
// here; it was refreshed by whichever mutation wrote last.
func (u *UserUsecase) Me(ctx context.Context, userID string) (*domain.User, error) {
	return u.sessions.Get(ctx, userID)
}

// UpdateInfo changes name and/or email. Role is deliberately not part of the
// payload: it is server-assigned only.
func (u *UserUsecase) UpdateInfo(ctx context.Context, userID, name, email string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		if !domain.ValidEmail(email) {
			return nil, domain.ErrInvalidInput
		}
		user.Email = email
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, u.putSnapshot(ctx, user)
}

// UpdatePassword rotates the password. The old one must verify first, and
// the new plaintext is hashed exactly once here; no other path touches the
// hash column.
func (u *UserUsecase) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return domain.ErrInvalidInput
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	match, err := security.ComparePassword(oldPassword, user.PasswordHash)
	if err != nil || !match {
		return domain.ErrInvalidCredentials
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if err := u.userRepo.Update(ctx, user); err != nil {
		return err
	}

	return u.putSnapshot(ctx, user)
}

// UpdateAvatar swaps the avatar reference. Upload/teardown of the binary
// itself happens in an external service; only the reference is stored.
func (u *UserUsecase) UpdateAvatar(ctx context.Context, userID string, avatar domain.Avatar) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Avatar = avatar
	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, u.putSnapshot(ctx, user)
}

func (u *UserUsecase) putSnapshot(ctx context.Context, user *domain.User) error {
	if err := u.sessions.Put(ctx, user.ID, user, u.cfg.SessionTTL()); err != nil {
		u.log.Warn("session snapshot update failed", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}
	return nil
}
