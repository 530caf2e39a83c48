package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing session token")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrExpiredToken       = errors.New("session token expired")

	ErrStoreUnavailable = errors.New("video store unavailable")
)

// IsUnauthenticated reports whether err is one of the token rejection kinds.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken)
}
