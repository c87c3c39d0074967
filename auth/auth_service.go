package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	errs "github.com/cloudclip/auth-service/internal/errors"
	"github.com/cloudclip/auth-service/throttle"
	"github.com/cloudclip/auth-service/token"
	"github.com/cloudclip/auth-service/token/guard"
	"github.com/cloudclip/auth-service/transport"
)

// Credentials is the token pair issued at login. SessionID appears in
// both tokens and is the only thing linking them; it is not persisted
// anywhere server side.
type Credentials struct {
	Token     string
	CSRFToken string
	SessionID string
	Type      string
}

// Verdict is the authorization decision returned to protected
// endpoints' business logic. Err carries the failing check when
// Authorized is false.
type Verdict struct {
	Authorized bool
	SessionID  string
	Type       string
	Err        error
}

// Deps holds the collaborator dependencies for the Service.
type Deps struct {
	Codec    *token.Codec       // bearer token issue/verify
	Guard    *guard.Guard       // anti-forgery token issue/verify
	Throttle *throttle.Throttle // login attempt gate, may be nil
}

// Service is the façade every protected endpoint consumes: it validates
// the shared secret at login, issues the token pair, and verifies
// bearer plus anti-forgery tokens on later requests. The server holds
// no session state; the tokens are the session.
type Service struct {
	secret      string // shared access password; empty enables open mode
	deps        Deps
	bearerTTL   string
	guardMaxAge time.Duration
	nowTime     func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithBearerTTL overrides the default 7d bearer token lifetime.
func WithBearerTTL(ttl string) ServiceOption {
	return func(s *Service) {
		s.bearerTTL = ttl
	}
}

// WithGuardMaxAge overrides the default 1h anti-forgery token max age.
func WithGuardMaxAge(maxAge time.Duration) ServiceOption {
	return func(s *Service) {
		s.guardMaxAge = maxAge
	}
}

// NewService initializes the authentication service. secret is the
// configured access password; empty means open mode. Throttle may be
// nil when no attempt store is bound.
func NewService(secret string, deps Deps, options ...ServiceOption) (*Service, error) {
	if deps.Codec == nil {
		return nil, errors.New("[NewService] token codec is required")
	}
	if deps.Guard == nil {
		return nil, errors.New("[NewService] anti-forgery guard is required")
	}

	s := &Service{
		secret:      secret,
		deps:        deps,
		bearerTTL:   "7d",
		guardMaxAge: guard.DefaultMaxAge,
		nowTime:     time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// OpenMode reports whether the deployment has no access password; in
// open mode every request is implicitly authenticated.
func (s *Service) OpenMode() bool {
	return s.secret == ""
}

// Login validates the submitted secret for the given client identifier
// and issues a bearer/guard token pair. Empty and wrong submissions
// both consume a throttle attempt; the throttle exists to stop
// automated probing, and an empty password is still a probe.
func (s *Service) Login(ctx context.Context, submittedSecret, clientID string) (*Credentials, error) {
	if s.OpenMode() {
		return s.issueCredentials(token.TypeNoPassword, clientID)
	}

	status := s.checkThrottle(ctx, clientID)
	if status.Blocked {
		return nil, &RateLimitedError{RetryAfter: status.RetryAfter}
	}

	if submittedSecret == "" {
		s.recordAttempt(ctx, clientID, false)
		return nil, errs.Wrapf(errs.ErrMissingCredential, "[Login] no password submitted")
	}

	// The secret is compared in plaintext over TLS; there is no hash at
	// rest. The comparison is still constant time to avoid a timing
	// oracle on the secret's prefix.
	if subtle.ConstantTimeCompare([]byte(submittedSecret), []byte(s.secret)) != 1 {
		s.recordAttempt(ctx, clientID, false)
		remaining := status.Remaining - 1
		if remaining < 0 {
			remaining = 0
		}
		return nil, &InvalidCredentialError{Remaining: remaining}
	}

	s.recordAttempt(ctx, clientID, true)
	return s.issueCredentials(token.TypePassword, clientID)
}

// Authorize verifies the credentials carried by a request under the
// endpoint's policy and returns a verdict. Only GET requests skip the
// anti-forgery check.
func (s *Service) Authorize(r *http.Request, policy Policy) Verdict {
	if s.OpenMode() {
		return Verdict{Authorized: true, Type: token.TypeNoPassword}
	}

	raw := transport.BearerFromRequest(r)
	if raw == "" {
		return Verdict{Err: errs.Wrapf(errs.ErrTokenMalformed, "[Authorize] no bearer token presented")}
	}

	claims, err := s.deps.Codec.Verify(raw)
	if err != nil {
		return Verdict{Err: err}
	}

	if !claims.Authenticated {
		return Verdict{Err: errs.Wrapf(errs.ErrInvalidCredential, "[Authorize] token carries no authentication")}
	}

	if policy != PolicyBearerOnly && r.Method != http.MethodGet {
		if err := s.verifyGuard(r, claims.SessionID, policy); err != nil {
			return Verdict{Err: err}
		}
	}

	return Verdict{Authorized: true, SessionID: claims.SessionID, Type: claims.Type}
}

// IssueGuardToken mints a fresh anti-forgery token for an
// already-verified session, without re-entering the password.
func (s *Service) IssueGuardToken(sessionID string) (string, error) {
	return s.deps.Guard.Issue(sessionID)
}

// Logout clears both credential cookies. The bearer token itself stays
// cryptographically valid until natural expiry; there is no server-side
// revocation list to consult.
func (s *Service) Logout(w http.ResponseWriter) {
	transport.ClearAuthCookie(w)
	transport.ClearCSRFCookie(w)
}

func (s *Service) verifyGuard(r *http.Request, sessionID string, policy Policy) error {
	guardToken, err := guard.FromRequest(r)
	if err != nil {
		return err
	}

	err = s.deps.Guard.Verify(guardToken, sessionID, s.guardMaxAge)
	if err != nil && policy == PolicyGraceWindow && errs.Is(err, errs.ErrTokenExpired) {
		// The grace window is bounded by the bearer token's own
		// lifetime; the guard token still has to be signed correctly
		// and bound to this session.
		if graceMaxAge, ttlErr := token.ParseTTL(s.bearerTTL); ttlErr == nil {
			err = s.deps.Guard.Verify(guardToken, sessionID, graceMaxAge)
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCSRFInvalid, err)
	}
	return nil
}

func (s *Service) issueCredentials(tokenType, clientID string) (*Credentials, error) {
	sessionID, err := newSessionID()
	if err != nil {
		return nil, errors.Wrap(err, "[Login] failed to generate session id")
	}

	bearer, err := s.deps.Codec.Issue(token.Claims{
		Authenticated: true,
		Type:          tokenType,
		ClientID:      clientID,
		SessionID:     sessionID,
	}, s.bearerTTL)
	if err != nil {
		return nil, errors.Wrap(err, "[Login] failed to issue bearer token")
	}

	guardToken, err := s.deps.Guard.Issue(sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "[Login] failed to issue guard token")
	}

	return &Credentials{
		Token:     bearer,
		CSRFToken: guardToken,
		SessionID: sessionID,
		Type:      tokenType,
	}, nil
}

func (s *Service) checkThrottle(ctx context.Context, clientID string) throttle.Status {
	if s.deps.Throttle == nil {
		return throttle.Status{Allowed: true, Remaining: throttle.DefaultOptions().MaxAttempts}
	}
	return s.deps.Throttle.Check(ctx, clientID)
}

func (s *Service) recordAttempt(ctx context.Context, clientID string, success bool) {
	if s.deps.Throttle == nil {
		return
	}
	s.deps.Throttle.Record(ctx, clientID, success)
}

// newSessionID returns a 128-bit random value, hex encoded.
func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
