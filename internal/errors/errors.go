package errors

import (
	"errors"
	"fmt"
)

// Failure taxonomy for the request-authentication subsystem. Every
// verification failure surfaces as one of these sentinels (possibly
// wrapped); callers map categories onto HTTP statuses and never see a
// raw internal error across the trust boundary.
var (
	// Credential errors
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrRateLimited       = errors.New("rate limited")

	// Token errors
	ErrTokenMalformed    = errors.New("token malformed")
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrTokenExpired      = errors.New("token expired")
	ErrSessionMismatch   = errors.New("session mismatch")

	// Anti-forgery errors
	ErrCSRFMissing = errors.New("anti-forgery token missing")
	ErrCSRFInvalid = errors.New("anti-forgery token invalid")

	// Infrastructure errors. Store failures are internal: the throttle
	// fails open on them, token verification never does.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
