// Package common defines the sentinel errors and shared constants used
// across the account service. Callers should use errors.Is to match these
// values; lower layers wrap them with fmt.Errorf("...: %w", err).
package common

import "errors"

var (
	// Input errors, rejected before the store or cache is touched.
	ErrValidation = errors.New("validation error")

	// Business outcomes.
	ErrConflict           = errors.New("user with this username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("not found")

	// Token rejections. All of them mean "unauthenticated" to the caller.
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrInvalidScope    = errors.New("scope for the token is invalid")
	ErrUnauthenticated = errors.New("could not validate credentials")

	// Infrastructure faults.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrCacheUnavailable = errors.New("cache unavailable")
	ErrInternal         = errors.New("internal error")
)

// IsTokenError reports whether err is one of the token rejections.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrInvalidScope) ||
		errors.Is(err, ErrUnauthenticated)
}
