package token_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	errs "github.com/cloudclip/auth-service/internal/errors"
	"github.com/cloudclip/auth-service/token"
)

const testSecret = "test-signing-secret"

func newTestCodec(options ...token.CodecOption) *token.Codec {
	return token.NewCodec(token.NewHMACSigner(testSecret), options...)
}

func testClaims() token.Claims {
	return token.Claims{
		Authenticated: true,
		Type:          token.TypePassword,
		ClientID:      "1.2.3.4",
		SessionID:     "0123456789abcdef0123456789abcdef",
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec()

	raw, err := codec.Issue(testClaims(), "7d")
	require.NoError(t, err)
	require.Len(t, strings.Split(raw, "."), 3)

	claims, err := codec.Verify(raw)
	require.NoError(t, err)
	require.True(t, claims.Authenticated)
	require.Equal(t, token.TypePassword, claims.Type)
	require.Equal(t, "1.2.3.4", claims.ClientID)
	require.Equal(t, "0123456789abcdef0123456789abcdef", claims.SessionID)
	require.Equal(t, int64(7*24*3600), claims.ExpiresAt-claims.IssuedAt)
}

func TestIssueRejectsInvalidTTL(t *testing.T) {
	codec := newTestCodec()

	for _, ttl := range []string{"", "7w", "soon"} {
		_, err := codec.Issue(testClaims(), ttl)
		require.Error(t, err, "ttl %q", ttl)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	codec := newTestCodec()

	raw, err := codec.Issue(testClaims(), "1h")
	require.NoError(t, err)

	// Flip a character well inside the signature segment so the decoded
	// bytes are guaranteed to change.
	i := len(raw) - 10
	replacement := byte('A')
	if raw[i] == 'A' {
		replacement = 'B'
	}
	tampered := raw[:i] + string(replacement) + raw[i+1:]

	_, err = codec.Verify(tampered)
	require.ErrorIs(t, err, errs.ErrSignatureMismatch)
}

func TestVerifyTamperedPayload(t *testing.T) {
	codec := newTestCodec()

	raw, err := codec.Issue(testClaims(), "1h")
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	// Trailing whitespace keeps the JSON parseable but breaks the
	// signature over the original bytes.
	parts[1] = base64.RawURLEncoding.EncodeToString(append(payload, ' '))

	_, err = codec.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, errs.ErrSignatureMismatch)
}

func TestVerifyMalformed(t *testing.T) {
	codec := newTestCodec()

	for _, raw := range []string{"", "abc", "a.b", "a.b.c.d", "!!!.@@@.###"} {
		_, err := codec.Verify(raw)
		require.ErrorIs(t, err, errs.ErrTokenMalformed, "token %q", raw)
	}
}

func TestVerifyExpired(t *testing.T) {
	codec := newTestCodec()

	raw, err := codec.Issue(testClaims(), "-1")
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, errs.ErrTokenExpired)
}

func TestVerifyExpiredByClockAdvance(t *testing.T) {
	now := time.Now()
	current := now
	codec := newTestCodec(token.WithNowTime(func() time.Time { return current }))

	raw, err := codec.Issue(testClaims(), "1h")
	require.NoError(t, err)

	current = now.Add(30 * time.Minute)
	_, err = codec.Verify(raw)
	require.NoError(t, err)

	current = now.Add(2 * time.Hour)
	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, errs.ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	codec := newTestCodec()

	raw, err := codec.Issue(testClaims(), "1h")
	require.NoError(t, err)

	other := token.NewCodec(token.NewHMACSigner("a-different-secret"))
	_, err = other.Verify(raw)
	require.ErrorIs(t, err, errs.ErrSignatureMismatch)
}
