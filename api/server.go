package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/logmux/logmux-core/service"
	"github.com/logmux/logmux-core/tenant"
)

// TenantHeader names the HTTP header carrying the tenant identifier. The
// server copies it into the request context; requests without it fail
// validation in the service layer before any connector runs.
const TenantHeader = "X-Tenant-ID"

// Server exposes the logging service over HTTP.
type Server struct {
	corsOrigin  string
	bearerToken string
	serve       func(*http.Server) error // optional override for tests
	logs        LogHandler
}

// NewServer wraps svc in an HTTP server configured from the environment:
// LOGMUX_CORS_ORIGIN (default "*") and LOGMUX_BEARER_TOKEN (empty disables
// auth).
func NewServer(svc *service.Service) *Server {
	corsOrigin := os.Getenv("LOGMUX_CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	return &Server{
		corsOrigin:  corsOrigin,
		bearerToken: strings.TrimSpace(os.Getenv("LOGMUX_BEARER_TOKEN")),
		logs:        LogHandler{svc: svc},
	}
}

// ServeHTTP implements http.Handler and dispatches to the log handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+TenantHeader)
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if !s.authorize(r) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if id := strings.TrimSpace(r.Header.Get(TenantHeader)); id != "" {
		r = r.WithContext(tenant.Into(r.Context(), id))
	}

	switch {
	case r.URL.Path == "/health" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case s.logs.handle(w, r):
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) authorize(r *http.Request) bool {
	if s.bearerToken == "" {
		return true
	}

	const prefix = "Bearer "
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, prefix) {
		return false
	}
	return strings.TrimSpace(authz[len(prefix):]) == s.bearerToken
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}

	serve := s.serve
	if serve == nil {
		serve = func(srv *http.Server) error { return srv.ListenAndServe() }
	}
	return serve(srv)
}
