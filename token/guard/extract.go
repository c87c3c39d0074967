package guard

import (
	"mime"
	"net/http"

	errs "github.com/cloudclip/auth-service/internal/errors"
)

// HeaderName is the request header carrying an anti-forgery token.
const HeaderName = "X-CSRF-Token"

// FieldName is the form field / query parameter carrying the token.
const FieldName = "csrf_token"

// FromRequest extracts an anti-forgery token from a request. Precedence:
// the X-CSRF-Token header, then the csrf_token form field on POST bodies
// (urlencoded or multipart only), then the csrf_token query parameter —
// the last for methods whose bodies cannot carry a field, e.g. DELETE.
// Returns ErrCSRFMissing when no source yields a token.
func FromRequest(r *http.Request) (string, error) {
	if token := r.Header.Get(HeaderName); token != "" {
		return token, nil
	}

	if r.Method == http.MethodPost {
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
			if token := r.PostFormValue(FieldName); token != "" {
				return token, nil
			}
		}
	}

	if token := r.URL.Query().Get(FieldName); token != "" {
		return token, nil
	}

	return "", errs.ErrCSRFMissing
}
