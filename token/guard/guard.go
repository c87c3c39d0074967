package guard

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"

	errs "github.com/cloudclip/auth-service/internal/errors"
)

// DefaultMaxAge is how long an anti-forgery token stays valid.
const DefaultMaxAge = time.Hour

// AnonymousSession is embedded when a token is issued without a session.
const AnonymousSession = "anonymous"

// payload is the signed content of an anti-forgery token. Timestamp is
// unix milliseconds.
type payload struct {
	Timestamp int64  `json:"timestamp"`
	SessionID string `json:"sessionId"`
	Random    string `json:"random"`
}

// Guard issues and verifies anti-forgery tokens of the form
// base64url(payloadJSON).base64url(HMAC-SHA256 signature), bound to a
// session identifier. Verification is stateless: a captured token
// replays successfully within its max age for the same session. That is
// an accepted tradeoff of keeping no server-side nonce state.
type Guard struct {
	secret  []byte
	nowTime func() time.Time
}

// Option defines a function type to modify the Guard instance.
type Option func(*Guard)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(g *Guard) {
		g.nowTime = nowFunc
	}
}

// New creates a guard signing with the given secret. Callers fall back
// to the bearer-token secret when no dedicated one is configured.
func New(secret string, options ...Option) *Guard {
	g := &Guard{
		secret:  []byte(secret),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Issue creates a token bound to sessionID, or to the anonymous session
// when sessionID is empty.
func (g *Guard) Issue(sessionID string) (string, error) {
	if sessionID == "" {
		sessionID = AnonymousSession
	}

	random := make([]byte, 16)
	if _, err := rand.Read(random); err != nil {
		return "", errors.Wrap(err, "[Issue] failed to generate random bytes")
	}

	p := payload{
		Timestamp: g.nowTime().UnixMilli(),
		SessionID: sessionID,
		Random:    hex.EncodeToString(random),
	}

	payloadJSON, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "[Issue] failed to marshal payload")
	}

	return base64.RawURLEncoding.EncodeToString(payloadJSON) + "." + g.sign(payloadJSON), nil
}

// Verify checks a token's structure, signature, age and session
// binding, in that order. expectedSessionID is only enforced when
// non-empty.
func (g *Guard) Verify(token, expectedSessionID string, maxAge time.Duration) error {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return errs.Wrapf(errs.ErrTokenMalformed, "[Verify] expected 2 parts, got %d", len(parts))
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return errs.Wrapf(errs.ErrTokenMalformed, "[Verify] payload decode: %v", err)
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return errs.Wrapf(errs.ErrTokenMalformed, "[Verify] signature decode: %v", err)
	}

	mac := hmac.New(sha256.New, g.secret)
	mac.Write(payloadJSON)
	if !hmac.Equal(signature, mac.Sum(nil)) {
		return errs.Wrapf(errs.ErrSignatureMismatch, "[Verify] signature does not match payload")
	}

	var p payload
	if err := json.Unmarshal(payloadJSON, &p); err != nil {
		return errs.Wrapf(errs.ErrTokenMalformed, "[Verify] payload unmarshal: %v", err)
	}

	if g.nowTime().UnixMilli()-p.Timestamp > maxAge.Milliseconds() {
		return errs.Wrapf(errs.ErrTokenExpired, "[Verify] token older than %s", maxAge)
	}

	if expectedSessionID != "" && p.SessionID != expectedSessionID {
		return errs.Wrapf(errs.ErrSessionMismatch, "[Verify] token bound to a different session")
	}

	return nil
}

func (g *Guard) sign(data []byte) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(data)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
