package server

// API routes. The record-storage surface mounts its own routes and
// consumes RequireAuth from here.
const (
	RouteAPIAuth            = "/api/auth"
	RouteAPIAuthRefreshCSRF = "/api/auth/refresh-csrf"
	RouteAPIAuthLogout      = "/api/auth/logout"
)
