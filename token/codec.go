package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	errs "github.com/cloudclip/auth-service/internal/errors"
)

// Token type claims. A "no-password" token marks a session issued while
// the deployment had no access password configured.
const (
	TypePassword   = "password"
	TypeNoPassword = "no-password"
)

// Claims carries the authentication assertions embedded in a bearer
// token. SessionID links the token to its matching anti-forgery token.
type Claims struct {
	Authenticated bool
	Type          string
	ClientID      string
	SessionID     string
	IssuedAt      int64
	ExpiresAt     int64
}

// Codec issues and verifies compact bearer tokens:
// base64url(header).base64url(payload).base64url(HMAC-SHA256 signature).
// It is a pure function of its input, the signing secret and the clock;
// there is no server-side token state.
type Codec struct {
	signer  Signer
	nowTime func() time.Time
}

// CodecOption defines a function type to modify the Codec instance.
type CodecOption func(*Codec)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowTime = nowFunc
	}
}

// NewCodec creates a codec signing with the given signer.
func NewCodec(signer Signer, options ...CodecOption) *Codec {
	c := &Codec{
		signer:  signer,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Issue builds and signs a bearer token. The expiry is always
// iat + ttl; an unparseable ttl is a construction error, not a token
// verification failure.
func (c *Codec) Issue(claims Claims, ttl string) (string, error) {
	d, err := ParseTTL(ttl)
	if err != nil {
		return "", errors.Wrap(err, "[Issue] invalid ttl")
	}

	now := c.nowTime()
	mapClaims := jwtlib.MapClaims{
		"authenticated": claims.Authenticated,
		"type":          claims.Type,
		"sessionId":     claims.SessionID,
		"iat":           now.Unix(),
		"exp":           now.Add(d).Unix(),
	}
	if claims.ClientID != "" {
		mapClaims["clientId"] = claims.ClientID
	}

	return c.signer.Sign(mapClaims)
}

// Verify parses a bearer token, checks its signature with a
// constant-time comparison and validates expiry. Failures map onto the
// subsystem taxonomy: ErrTokenMalformed, ErrSignatureMismatch,
// ErrTokenExpired. Verification never succeeds on an internal error.
func (c *Codec) Verify(raw string) (Claims, error) {
	parser := jwtlib.NewParser(
		jwtlib.WithTimeFunc(c.nowTime),
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
	)

	parsed, err := parser.Parse(raw, c.signer.GetVerificationKey)
	if err != nil {
		switch {
		case errors.Is(err, jwtlib.ErrTokenMalformed):
			return Claims{}, errs.Wrapf(errs.ErrTokenMalformed, "[Verify] %v", err)
		case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
			return Claims{}, errs.Wrapf(errs.ErrSignatureMismatch, "[Verify] %v", err)
		case errors.Is(err, jwtlib.ErrTokenExpired):
			return Claims{}, errs.Wrapf(errs.ErrTokenExpired, "[Verify] %v", err)
		default:
			return Claims{}, errs.Wrapf(errs.ErrTokenMalformed, "[Verify] %v", err)
		}
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return Claims{}, errs.Wrapf(errs.ErrTokenMalformed, "[Verify] error extracting claims")
	}

	authenticated, _ := mapClaims["authenticated"].(bool)
	tokenType, _ := mapClaims["type"].(string)
	clientID, _ := mapClaims["clientId"].(string)
	sessionID, _ := mapClaims["sessionId"].(string)
	iat, _ := mapClaims["iat"].(float64)
	exp, _ := mapClaims["exp"].(float64)

	return Claims{
		Authenticated: authenticated,
		Type:          tokenType,
		ClientID:      clientID,
		SessionID:     sessionID,
		IssuedAt:      int64(iat),
		ExpiresAt:     int64(exp),
	}, nil
}
