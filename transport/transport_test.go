package transport_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudclip/auth-service/transport"
)

func findCookie(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSetAuthCookieAttributes(t *testing.T) {
	rec := httptest.NewRecorder()
	transport.SetAuthCookie(rec, "bearer-token", transport.AuthCookieMaxAge)

	c := findCookie(t, rec.Result().Cookies(), transport.AuthCookieName)
	require.Equal(t, "bearer-token", c.Value)
	require.Equal(t, "/", c.Path)
	require.Equal(t, 604800, c.MaxAge)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestSetCSRFCookieIsScriptReadable(t *testing.T) {
	rec := httptest.NewRecorder()
	transport.SetCSRFCookie(rec, "guard-token", transport.CSRFCookieMaxAge)

	c := findCookie(t, rec.Result().Cookies(), transport.CSRFCookieName)
	require.Equal(t, "guard-token", c.Value)
	require.Equal(t, 3600, c.MaxAge)
	require.False(t, c.HttpOnly, "the anti-forgery cookie must stay script-readable")
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestBothCookiesCoexistOnOneResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	transport.SetAuthCookie(rec, "bearer-token", transport.AuthCookieMaxAge)
	transport.SetCSRFCookie(rec, "guard-token", transport.CSRFCookieMaxAge)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	findCookie(t, cookies, transport.AuthCookieName)
	findCookie(t, cookies, transport.CSRFCookieName)
}

func TestClearCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	transport.ClearAuthCookie(rec)
	transport.ClearCSRFCookie(rec)

	for _, name := range []string{transport.AuthCookieName, transport.CSRFCookieName} {
		c := findCookie(t, rec.Result().Cookies(), name)
		require.Empty(t, c.Value)
		require.Negative(t, c.MaxAge, "clearing instructs deletion via Max-Age=0")
	}
}

func TestBearerFromRequestCookieFirst(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/records", nil)
	r.AddCookie(&http.Cookie{Name: transport.AuthCookieName, Value: "cookie-token"})
	r.Header.Set("Authorization", "Bearer header-token")

	require.Equal(t, "cookie-token", transport.BearerFromRequest(r))
}

func TestBearerFromRequestAuthorizationHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/records", nil)
	r.Header.Set("Authorization", "Bearer header-token")

	require.Equal(t, "header-token", transport.BearerFromRequest(r))
}

func TestBearerFromRequestRejectsOtherSchemes(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/records", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	require.Empty(t, transport.BearerFromRequest(r))
}

func TestBearerFromRequestAbsent(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/records", nil)

	require.Empty(t, transport.BearerFromRequest(r))
}

func TestClientIdentifierPrecedence(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/auth", nil)
	r.Header.Set("CF-Connecting-IP", "198.51.100.1")
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 198.51.100.2")
	r.Header.Set("X-Real-IP", "192.0.2.9")

	require.Equal(t, "198.51.100.1", transport.ClientIdentifier(r))

	r.Header.Del("CF-Connecting-IP")
	require.Equal(t, "203.0.113.5", transport.ClientIdentifier(r))

	r.Header.Del("X-Forwarded-For")
	require.Equal(t, "192.0.2.9", transport.ClientIdentifier(r))

	r.Header.Del("X-Real-IP")
	require.Equal(t, transport.UnknownClient, transport.ClientIdentifier(r))
}
