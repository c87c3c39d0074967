package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	errs "github.com/cloudclip/auth-service/internal/errors"
)

// RateLimitedError reports a blocked login attempt and how long the
// block remains. Unwraps to ErrRateLimited.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %ds", int(e.RetryAfter.Seconds()))
}

func (e *RateLimitedError) Unwrap() error {
	return errs.ErrRateLimited
}

// InvalidCredentialError reports a failed password check and the
// attempts left before a block. Unwraps to ErrInvalidCredential.
type InvalidCredentialError struct {
	Remaining int
}

func (e *InvalidCredentialError) Error() string {
	return fmt.Sprintf("invalid credential, %d attempts remaining", e.Remaining)
}

func (e *InvalidCredentialError) Unwrap() error {
	return errs.ErrInvalidCredential
}

// StatusForError maps a subsystem failure onto an HTTP status.
// Rate limiting is the only 429; missing login input is 400; every
// token or credential verification failure is an undifferentiated 401;
// anything unexpected is 500, never a silent success.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, errs.ErrMissingCredential):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrInvalidCredential),
		errors.Is(err, errs.ErrTokenMalformed),
		errors.Is(err, errs.ErrSignatureMismatch),
		errors.Is(err, errs.ErrTokenExpired),
		errors.Is(err, errs.ErrSessionMismatch),
		errors.Is(err, errs.ErrCSRFMissing),
		errors.Is(err, errs.ErrCSRFInvalid):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
