package config

import "time"

// SecurityConfig exposes the secrets and token lifetimes consumed by the
// authentication subsystem. All values come from the environment; the
// process never mutates them.
type SecurityConfig interface {
	// GetAccessPassword returns the shared access password. Empty means
	// the deployment runs in open mode: every request is authorized.
	GetAccessPassword() string

	// GetJWTSecret returns the bearer-token signing secret.
	GetJWTSecret() string

	// GetCSRFSecret returns the anti-forgery signing secret, falling
	// back to the bearer secret when unset.
	GetCSRFSecret() string

	GetBearerTokenTTL() string
	GetCSRFTokenMaxAge() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetAccessPassword() string {
	return GetEnv("ACCESS_PASSWORD", "")
}

func (Security) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "")
}

func (s Security) GetCSRFSecret() string {
	return GetEnv("CSRF_SECRET", s.GetJWTSecret())
}

func (Security) GetBearerTokenTTL() string {
	return GetEnv("AUTH_TOKEN_TTL", "7d")
}

func (Security) GetCSRFTokenMaxAge() time.Duration {
	return getDurationSeconds("CSRF_TOKEN_MAX_AGE_SECONDS", time.Hour)
}
