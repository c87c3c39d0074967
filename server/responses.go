package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	errs "github.com/cloudclip/auth-service/internal/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

// authResponse is the wire contract shared by the auth endpoints.
type authResponse struct {
	Success       bool   `json:"success"`
	Token         string `json:"token,omitempty"`
	CSRFToken     string `json:"csrfToken,omitempty"`
	UsesCookies   bool   `json:"usesCookies,omitempty"`
	Error         string `json:"error,omitempty"`
	Blocked       bool   `json:"blocked,omitempty"`
	RemainingTime int    `json:"remainingTime,omitempty"`
	Remaining     int    `json:"remaining,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode response body")
	}
}

// genericMessage collapses a failure to its category — credential vs
// anti-forgery vs rate limit — so responses never reveal which check
// rejected the request.
func genericMessage(err error) string {
	switch {
	case errors.Is(err, errs.ErrRateLimited):
		return "too many attempts"
	case errors.Is(err, errs.ErrCSRFMissing),
		errors.Is(err, errs.ErrCSRFInvalid):
		return "invalid security token"
	default:
		return "authentication required"
	}
}
