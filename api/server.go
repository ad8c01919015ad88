// Package api serves an identity.Service and the role dashboards over
// JSON/HTTP. identity/remote is its client.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/aloks98/securevault/identity"
	"github.com/aloks98/securevault/internal/wire"
	"github.com/aloks98/securevault/middleware"
	"github.com/aloks98/securevault/ratelimit"
	"github.com/aloks98/securevault/rbac"
	"github.com/aloks98/securevault/token"
)

// Config configures a Server.
type Config struct {
	// Identity handles the /v1/auth endpoints. Required.
	Identity identity.Service

	// Directory resolves bearer tokens and lists users. Required.
	Directory identity.Directory

	// Issuer must be the issuer Identity signs tokens with.
	// Defaults to token.MockIssuer.
	Issuer token.Issuer

	// Policy defaults to rbac.DefaultPolicy.
	Policy *rbac.Policy

	// Limiter throttles /v1/auth requests per client IP. Nil disables it.
	Limiter ratelimit.Limiter

	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string

	Logger *zap.Logger
}

// Server is the SecureVault HTTP API.
type Server struct {
	identity  identity.Service
	directory identity.Directory
	policy    *rbac.Policy
	logger    *zap.Logger
	router    chi.Router
}

// New creates a Server and mounts its routes.
func New(cfg *Config) (*Server, error) {
	if cfg == nil || cfg.Identity == nil {
		return nil, errors.New("api: identity service is required")
	}
	if cfg.Directory == nil {
		return nil, errors.New("api: directory is required")
	}

	s := &Server{
		identity:  cfg.Identity,
		directory: cfg.Directory,
		policy:    cfg.Policy,
		logger:    cfg.Logger,
	}
	if s.policy == nil {
		s.policy = rbac.DefaultPolicy()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	issuer := cfg.Issuer
	if issuer == nil {
		issuer = token.NewMockIssuer()
	}

	authCfg := &middleware.Config{
		TokenExtractor: middleware.FirstOf(
			middleware.FromHeader("Authorization", "Bearer"),
			middleware.FromCookie("auth_token"),
		),
		ErrorHandler: s.authError,
	}
	resolver := &middleware.DirectoryResolver{Issuer: issuer, Directory: s.directory}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, wireError(wire.CodeNotFound, "Not found", nil))
	})

	r.Get("/healthz", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if cfg.Limiter != nil {
				r.Use(ratelimit.Middleware(cfg.Limiter, &ratelimit.Config{
					OnLimited: rateLimited,
					Logger:    s.logger,
				}))
			}
			r.Post("/login", s.login)
			r.Post("/signup", s.signup)
			r.Post("/password-reset", s.passwordReset)
			r.Post("/recover", s.recoverAccount)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(resolver, authCfg))
			r.Get("/me", s.me)
			r.Get("/dashboard", s.dashboard)
			r.Get("/tasks", s.tasks)
			r.With(middleware.RequirePermission(s.policy, "users:manage", authCfg)).
				Get("/admin/users", s.users)
		})
	})

	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer wraps s in an http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}
