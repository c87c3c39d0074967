package transport

import (
	"net/http"
	"strings"
)

// UnknownClient is the identifier used when no trusted header names the
// client.
const UnknownClient = "unknown"

// BearerFromRequest extracts the bearer token, cookie first, then the
// Authorization header. The dual path lets one verification routine
// serve both browser clients (cookie jar) and programmatic clients
// (Authorization: Bearer).
func BearerFromRequest(r *http.Request) string {
	if token := AuthCookie(r); token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ClientIdentifier derives a throttling identifier from headers the
// edge proxy validated: the platform's true-client-IP header first,
// then the first forwarded-for entry, then X-Real-IP. Nothing the
// client can set directly is trusted without the edge in front.
func ClientIdentifier(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
		if first != "" {
			return first
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	return UnknownClient
}
