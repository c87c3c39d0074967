// Package transport moves the two credential tokens between the server
// and its clients: secure same-site cookies for browsers, bearer and
// custom headers for programmatic clients.
package transport

import "net/http"

// Cookie names. The auth cookie is HttpOnly; the anti-forgery cookie
// must stay script-readable so the page can echo it back in the
// X-CSRF-Token header.
const (
	AuthCookieName = "cc_auth_token"
	CSRFCookieName = "cc_csrf_token"
)

// Default cookie lifetimes in seconds.
const (
	AuthCookieMaxAge = 7 * 24 * 60 * 60
	CSRFCookieMaxAge = 60 * 60
)

// SetAuthCookie attaches the bearer token to the response.
func SetAuthCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// SetCSRFCookie attaches the anti-forgery token to the response. Using
// http.SetCookie appends a second Set-Cookie header without clobbering
// an auth cookie set on the same response.
func SetCSRFCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearAuthCookie instructs the client to delete the bearer cookie by
// re-setting it with Max-Age=0.
func ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCSRFCookie instructs the client to delete the anti-forgery cookie.
func ClearCSRFCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// AuthCookie returns the bearer token carried in the request's cookie
// jar, or "".
func AuthCookie(r *http.Request) string {
	return cookieValue(r, AuthCookieName)
}

// CSRFCookie returns the anti-forgery token carried in the request's
// cookie jar, or "".
func CSRFCookie(r *http.Request) string {
	return cookieValue(r, CSRFCookieName)
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
