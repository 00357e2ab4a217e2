package domain

import (
	"context"
	"regexp"
	"time"
)

// Roles assignable to a user. The role is set server-side only and is never
// accepted from update payloads.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

// ValidEmail reports whether the address has a plausible mailbox format.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Avatar references an externally stored profile image.
type Avatar struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// CourseRef records a course the user is enrolled in.
type CourseRef struct {
	CourseID string `json:"course_id"`
}

// User represents the central identity entity of the system.
type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"` // Never expose the password hash in JSON
	Avatar       Avatar      `json:"avatar"`
	Role         string      `json:"role"`
	IsVerified   bool        `json:"is_verified"`
	Courses      []CourseRef `json:"courses"`
	MFAEnabled   bool        `json:"mfa_enabled"`
	MFASecret    string      `json:"-"` // TOTP secret key
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Enrolled reports whether the user owns access to the given course.
func (u *User) Enrolled(courseID string) bool {
	for _, c := range u.Courses {
		if c.CourseID == courseID {
			return true
		}
	}
	return false
}

// AuthResponse defines the payload returned after a successful login.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user,omitempty"`
}

// UserRepository defines the contract for user data persistence.
// This interface is implemented in the 'internal/repository' package.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}

// SessionRepository is the server-side session store keyed by user id.
// A valid session is required for access-token-authenticated requests even
// when the token itself has not expired; removing the entry is the
// revocation point.
type SessionRepository interface {
	Put(ctx context.Context, userID string, user *User, ttl time.Duration) error
	Get(ctx context.Context, userID string) (*User, error)
	Remove(ctx context.Context, userID string) error
}

// CacheRepository is a byte-level key-value cache used for expensive read
// paths. ttl == 0 means no expiry.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// AuditLogger records security-relevant events (failed logins, failed MFA
// checks, refused refreshes) into an immutable trail. Writes are best
// effort; a failed audit write never blocks the auth flow itself.
type AuditLogger interface {
	LogSecurityEvent(ctx context.Context, userID, eventType, ip string, metadata map[string]interface{}) error
}

// Mailer delivers the account-activation code. Template rendering and
// transport live outside this core.
type Mailer interface {
	SendActivationMail(ctx context.Context, email, name, code string) error
}
