package server

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/cloudclip/auth-service/auth"
	errs "github.com/cloudclip/auth-service/internal/errors"
	"github.com/cloudclip/auth-service/transport"
)

// LoginHandler validates the submitted password and issues the token
// pair, both in the body (for clients without a cookie jar) and as
// cookies.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, authResponse{Success: false, Error: "invalid form body"})
			return
		}

		clientID := transport.ClientIdentifier(r)
		creds, err := s.auth.Login(r.Context(), r.PostFormValue("password"), clientID)
		if err != nil {
			s.writeLoginError(w, clientID, err)
			return
		}

		transport.SetAuthCookie(w, creds.Token, transport.AuthCookieMaxAge)
		transport.SetCSRFCookie(w, creds.CSRFToken, transport.CSRFCookieMaxAge)

		writeJSON(w, http.StatusOK, authResponse{
			Success:     true,
			Token:       creds.Token,
			CSRFToken:   creds.CSRFToken,
			UsesCookies: true,
		})
	}
}

func (s *Server) writeLoginError(w http.ResponseWriter, clientID string, err error) {
	var rateLimited *auth.RateLimitedError
	var invalidCred *auth.InvalidCredentialError

	switch {
	case errors.As(err, &rateLimited):
		writeJSON(w, http.StatusTooManyRequests, authResponse{
			Success:       false,
			Error:         "too many attempts",
			Blocked:       true,
			RemainingTime: int(rateLimited.RetryAfter.Seconds()),
		})
	case errors.As(err, &invalidCred):
		writeJSON(w, http.StatusUnauthorized, authResponse{
			Success:   false,
			Error:     "password incorrect",
			Remaining: invalidCred.Remaining,
		})
	case errors.Is(err, errs.ErrMissingCredential):
		writeJSON(w, http.StatusBadRequest, authResponse{
			Success: false,
			Error:   "password required",
		})
	default:
		log.Err(err).Str("client_id", clientID).Msg("Login failed unexpectedly")
		writeJSON(w, http.StatusInternalServerError, authResponse{
			Success: false,
			Error:   "login failed",
		})
	}
}

// AuthStatusHandler reports whether the deployment needs a password
// and, when the request carries a valid bearer token, the session's
// authentication state.
func (s *Server) AuthStatusHandler() http.HandlerFunc {
	type statusResponse struct {
		NeedsPassword bool   `json:"needs_password"`
		Authenticated bool   `json:"authenticated"`
		Type          string `json:"type,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{NeedsPassword: !s.auth.OpenMode()}

		if verdict := s.auth.Authorize(r, auth.PolicyBearerOnly); verdict.Authorized {
			resp.Authenticated = true
			resp.Type = verdict.Type
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// RefreshCSRFHandler re-issues a guard token for an already-valid
// bearer token's session, without re-entering the password. Verified
// bearer-only: a client refreshes precisely because its guard token
// has aged out.
func (s *Server) RefreshCSRFHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		verdict := s.auth.Authorize(r, auth.PolicyBearerOnly)
		if !verdict.Authorized {
			writeJSON(w, auth.StatusForError(verdict.Err), authResponse{
				Success: false,
				Error:   genericMessage(verdict.Err),
			})
			return
		}

		guardToken, err := s.auth.IssueGuardToken(verdict.SessionID)
		if err != nil {
			log.Err(err).Msg("Failed to issue guard token")
			writeJSON(w, http.StatusInternalServerError, authResponse{
				Success: false,
				Error:   "refresh failed",
			})
			return
		}

		transport.SetCSRFCookie(w, guardToken, transport.CSRFCookieMaxAge)
		writeJSON(w, http.StatusOK, authResponse{
			Success:   true,
			CSRFToken: guardToken,
		})
	}
}

// LogoutHandler clears both credential cookies. It does not revoke the
// bearer token: with no server-side session state, a copied token stays
// valid until natural expiry.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.auth.Logout(w)
		writeJSON(w, http.StatusOK, authResponse{Success: true})
	}
}
