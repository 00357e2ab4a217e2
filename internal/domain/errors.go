package domain

import "errors"

// Error taxonomy shared across usecases. The delivery layer maps each kind
// onto the uniform {success:false, message} envelope and an HTTP status.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so responses never leak account existence.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthenticated means no usable access token was presented.
	ErrUnauthenticated = errors.New("login first to access this resource")

	// ErrSessionNotFound means the access token verified but the session
	// was revoked or evicted. Distinct from token expiry so clients know
	// whether to refresh or to log in again.
	ErrSessionNotFound = errors.New("session not found, please login again")

	// ErrForbidden means the caller is authenticated but its role is not
	// in the operation's allow-list.
	ErrForbidden = errors.New("role is not allowed to access this resource")

	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("email already exists")
	ErrInvalidInput = errors.New("invalid request payload")

	// ErrCacheMiss is returned by CacheRepository.Get for an absent key.
	ErrCacheMiss = errors.New("cache miss")

	ErrInvalidMFACode = errors.New("invalid mfa code")
)
