package server

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/cloudclip/auth-service/auth"
	"github.com/cloudclip/auth-service/internal/config"
)

// Server exposes the authentication subsystem over HTTP: login, auth
// status, guard-token refresh, logout, and the RequireAuth middleware
// that protected endpoints wrap themselves in.
type Server struct {
	env    string
	mux    *http.ServeMux
	config config.Config
	auth   *auth.Service
}

func New(cfg config.Config, authService *auth.Service) (*Server, error) {
	if authService == nil {
		return nil, errors.New("[Server New] auth service is required")
	}

	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		auth:   authService,
	}

	s.initRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	base := s.baseMiddleware()

	s.mux.HandleFunc("POST "+RouteAPIAuth, ChainMiddleware(s.LoginHandler(), base...))
	s.mux.HandleFunc("GET "+RouteAPIAuth, ChainMiddleware(s.AuthStatusHandler(), base...))
	s.mux.HandleFunc("POST "+RouteAPIAuthRefreshCSRF, ChainMiddleware(s.RefreshCSRFHandler(), base...))
	s.mux.HandleFunc("POST "+RouteAPIAuthLogout, ChainMiddleware(s.LogoutHandler(), base...))
}

func (s *Server) baseMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.RecoverMiddleware,
		s.LoggingMiddleware,
	}
}
