package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/edupress/edupress/internal/domain"
)

// PostgresUserRepo implements domain.UserRepository using PostgreSQL.
// Avatar and enrollment lists are stored as JSONB columns so the row stays a
// single document.
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo creates a new repository instance.
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, name, email, password_hash, avatar, role, is_verified, courses, mfa_enabled, COALESCE(mfa_secret, ''), created_at, updated_at`

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var avatar, courses []byte

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&avatar,
		&user.Role,
		&user.IsVerified,
		&courses,
		&user.MFAEnabled,
		&user.MFASecret,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if len(avatar) > 0 {
		if err := json.Unmarshal(avatar, &user.Avatar); err != nil {
			return nil, fmt.Errorf("decode avatar: %w", err)
		}
	}
	if len(courses) > 0 {
		if err := json.Unmarshal(courses, &user.Courses); err != nil {
			return nil, fmt.Errorf("decode courses: %w", err)
		}
	}

	return user, nil
}

// GetByEmail retrieves a user by their email address. This is the only
// lookup that legitimately needs the password hash (login path).
func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByID retrieves a user by their UUID.
func (r *PostgresUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// Create inserts a new user. A duplicate email surfaces as domain.ErrConflict.
func (r *PostgresUserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, avatar, role, is_verified, courses, mfa_enabled, mfa_secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	avatar, err := json.Marshal(user.Avatar)
	if err != nil {
		return err
	}
	courses, err := json.Marshal(user.Courses)
	if err != nil {
		return err
	}

	var mfaSecret sql.NullString
	if user.MFASecret != "" {
		mfaSecret.String = user.MFASecret
		mfaSecret.Valid = true
	}

	_, err = r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		avatar,
		user.Role,
		user.IsVerified,
		courses,
		user.MFAEnabled,
		mfaSecret,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// Update persists the mutated fields of an existing user. The password hash
// column is written as-is: hashing happens exactly once, in the usecase, when
// the password itself changes.
func (r *PostgresUserRepo) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, avatar = $4, courses = $5,
		    is_verified = $6, mfa_enabled = $7, mfa_secret = $8, updated_at = $9
		WHERE id = $10
	`

	user.UpdatedAt = time.Now()

	avatar, err := json.Marshal(user.Avatar)
	if err != nil {
		return err
	}
	courses, err := json.Marshal(user.Courses)
	if err != nil {
		return err
	}

	var mfaSecret sql.NullString
	if user.MFASecret != "" {
		mfaSecret.String = user.MFASecret
		mfaSecret.Valid = true
	}

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		avatar,
		courses,
		user.IsVerified,
		user.MFAEnabled,
		mfaSecret,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}
