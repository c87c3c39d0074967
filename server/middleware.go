package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cloudclip/auth-service/auth"
	"github.com/cloudclip/auth-service/transport"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySessionID stores the verified session identifier
	ContextKeySessionID ContextKey = "session_id"
	// ContextKeyTokenType stores the bearer token's type claim
	ContextKeyTokenType ContextKey = "token_type"
	// ContextKeyRequestID stores the per-request id for log correlation
	ContextKeyRequestID ContextKey = "request_id"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// RequireAuth wraps a protected endpoint with the authorization check
// under the given anti-forgery policy. The business logic behind it
// only ever sees requests with a verified session in context.
func (s *Server) RequireAuth(policy auth.Policy) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			verdict := s.auth.Authorize(r, policy)
			if !verdict.Authorized {
				log.Debug().
					Err(verdict.Err).
					Str("client_id", transport.ClientIdentifier(r)).
					Str("policy", policy.String()).
					Msg("Request rejected")
				writeJSON(w, auth.StatusForError(verdict.Err), authResponse{
					Success: false,
					Error:   genericMessage(verdict.Err),
				})
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySessionID, verdict.SessionID)
			ctx = context.WithValue(ctx, ContextKeyTokenType, verdict.Type)
			next(w, r.WithContext(ctx))
		}
	}
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		if s.env == "DEV" {
			log.Info().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("Request")
		}
		ctx := context.WithValue(r.Context(), ContextKeyRequestID, requestID)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("Handler panicked")
				writeJSON(w, http.StatusInternalServerError, authResponse{
					Success: false,
					Error:   "internal error",
				})
			}
		}()
		next(w, r)
	}
}
