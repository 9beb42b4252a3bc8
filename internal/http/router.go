package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/launchdeck/launchdeck/internal/config"
	accessfeature "github.com/launchdeck/launchdeck/internal/http/features/access"
	"github.com/launchdeck/launchdeck/internal/http/features/invitations"
	"github.com/launchdeck/launchdeck/internal/http/features/projects"
	"github.com/launchdeck/launchdeck/internal/http/features/verification"
	"github.com/launchdeck/launchdeck/internal/http/middleware"
	"github.com/launchdeck/launchdeck/internal/httputil"
	"github.com/launchdeck/launchdeck/internal/identity"
	"github.com/launchdeck/launchdeck/pkg/access"
	"github.com/launchdeck/launchdeck/pkg/invite"
	"github.com/launchdeck/launchdeck/pkg/project"
	"github.com/launchdeck/launchdeck/pkg/repository"
	"github.com/launchdeck/launchdeck/pkg/verify"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	Verifier        *identity.Verifier
	SessionBuilder  *identity.Builder
	Gate            *access.Gate
	InviteService   *invite.Service
	ProjectService  *project.Service
	VerifyService   *verify.Service
	CompaniesRepo   *repository.CompaniesRepository
	InviteSender    invitations.Sender
	AppBaseURL      string
	InviteTTL       time.Duration
	RateLimitConfig config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
	MaxBodySize     int64
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.MaxBodySize))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Create rate limiters for different endpoint types
	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	// Session resolution applies to everything below. It never rejects;
	// routes that need a principal enforce it themselves.
	sessionMiddleware := middleware.Session(cfg.Verifier, cfg.SessionBuilder)

	// Routing and authorization decisions
	accessHandler := accessfeature.NewHandler(cfg.Logger, cfg.Gate)
	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Get("/v1/access/route", accessHandler.Route)
		r.With(middleware.RequireSession()).Post("/v1/access/authorize", accessHandler.Authorize)
	})

	// Invitation lifecycle
	invitationsHandler := invitations.NewHandler(
		cfg.Logger,
		cfg.InviteService,
		cfg.CompaniesRepo,
		cfg.InviteSender,
		cfg.AppBaseURL,
		cfg.InviteTTL,
	)
	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Use(middleware.RequireSession())
		r.Post("/v1/invitations", invitationsHandler.Create)
		r.Delete("/v1/invitations/{id}", invitationsHandler.Revoke)
	})
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["redeem"])
		r.Use(sessionMiddleware)
		r.Use(middleware.RequireSession())
		r.Post("/v1/invitations/redeem", invitationsHandler.Redeem)
	})

	// Project creation
	projectsHandler := projects.NewHandler(cfg.Logger, cfg.ProjectService)
	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Use(middleware.RequireSession())
		r.Post("/v1/projects", projectsHandler.Create)
	})

	// Email verification codes
	verificationHandler := verification.NewHandler(cfg.Logger, cfg.VerifyService)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["verify"])
		r.Use(sessionMiddleware)
		r.Use(middleware.RequireSession())
		r.Post("/v1/verification/codes", verificationHandler.IssueCode)
		r.Post("/v1/verification/confirm", verificationHandler.Confirm)
	})

	return r
}
