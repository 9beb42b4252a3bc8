// Package launchdeck provides the tenant access core for a multi-tenant
// SaaS: post-login routing, role-based authorization, invitation
// lifecycle, email verification codes and slugged project creation.
//
// Setup:
//
//  1. Run migrations from migrations/ folder using your preferred tool
//  2. Create a Core instance and mount its routes
//
// Basic usage:
//
//	db, _ := sql.Open("postgres", "postgres://localhost/myapp?sslmode=disable")
//
//	core, err := launchdeck.New(launchdeck.Config{
//	    DB:        db,
//	    JWTSecret: "your-secret-key-at-least-32-chars",
//	})
//	if err != nil {
//	    log.Fatal(err) // Will fail if migrations haven't been run
//	}
//
//	r := chi.NewRouter()
//	r.Mount("/v1", core.Router())
//	http.ListenAndServe(":8080", r)
package launchdeck

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	accessfeature "github.com/launchdeck/launchdeck/internal/http/features/access"
	"github.com/launchdeck/launchdeck/internal/http/features/invitations"
	"github.com/launchdeck/launchdeck/internal/http/features/projects"
	"github.com/launchdeck/launchdeck/internal/http/features/verification"
	"github.com/launchdeck/launchdeck/internal/http/middleware"
	"github.com/launchdeck/launchdeck/internal/identity"
	"github.com/launchdeck/launchdeck/internal/notification"
	"github.com/launchdeck/launchdeck/pkg/access"
	"github.com/launchdeck/launchdeck/pkg/domain"
	"github.com/launchdeck/launchdeck/pkg/invite"
	"github.com/launchdeck/launchdeck/pkg/project"
	"github.com/launchdeck/launchdeck/pkg/repository"
	"github.com/launchdeck/launchdeck/pkg/verify"
)

// Config holds the configuration for the embeddable core.
type Config struct {
	// DB is the database connection (required).
	DB *sql.DB

	// JWTSecret is the secret used to verify identity provider access
	// tokens (required, min 32 chars).
	JWTSecret string

	// JWTIssuer is the expected issuer claim (default: "launchdeck").
	JWTIssuer string

	// AppBaseURL is used to build invitation links (default: "http://localhost:8080").
	AppBaseURL string

	// InviteTTL is the lifetime of invitation tokens (default: 7 days).
	InviteTTL time.Duration

	// CodeTTL is the lifetime of verification codes (default: 15 minutes).
	CodeTTL time.Duration

	// CodeDigits is the length of verification codes (default: 6).
	CodeDigits int

	// Email enables SMTP delivery of codes and invitation links.
	// When nil, deliveries are written to the log instead.
	Email *notification.EmailConfig

	// Logger is the structured logger (default: JSON to stdout).
	Logger *slog.Logger
}

// Core wires the repositories, services and handlers together.
type Core struct {
	config          Config
	db              *sql.DB
	companiesRepo   *repository.CompaniesRepository
	membershipsRepo *repository.MembershipsRepository
	invitationsRepo *repository.InvitationsRepository
	projectsRepo    *repository.ProjectsRepository
	codesRepo       *repository.VerificationCodesRepository
	verifier        *identity.Verifier
	sessionBuilder  *identity.Builder
	gate            *access.Gate
	inviteService   *invite.Service
	projectService  *project.Service
	verifyService   *verify.Service
	sender          sender
}

type sender interface {
	SendVerificationCode(to, code string) error
	SendInvitation(to, companyName, inviteURL string) error
}

// New creates a new core instance with the given configuration.
// Returns an error if required database tables don't exist.
// Run migrations first - see migrations/ folder for SQL files.
func New(cfg Config) (*Core, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	// Validate schema exists
	if err := validateSchema(cfg.DB); err != nil {
		return nil, err
	}

	// Initialize repositories
	companiesRepo := repository.NewCompaniesRepository(cfg.DB)
	membershipsRepo := repository.NewMembershipsRepository(cfg.DB)
	invitationsRepo := repository.NewInvitationsRepository(cfg.DB)
	projectsRepo := repository.NewProjectsRepository(cfg.DB)
	codesRepo := repository.NewVerificationCodesRepository(cfg.DB)

	var snd sender
	if cfg.Email != nil {
		snd = notification.NewEmailService(*cfg.Email)
	} else {
		snd = notification.NewLogService(cfg.Logger)
	}

	gate := access.NewGate(membershipsRepo)

	return &Core{
		config:          cfg,
		db:              cfg.DB,
		companiesRepo:   companiesRepo,
		membershipsRepo: membershipsRepo,
		invitationsRepo: invitationsRepo,
		projectsRepo:    projectsRepo,
		codesRepo:       codesRepo,
		verifier:        identity.NewVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer),
		sessionBuilder:  identity.NewBuilder(companiesRepo, membershipsRepo),
		gate:            gate,
		inviteService:   invite.NewService(cfg.DB, gate, companiesRepo, invitationsRepo, membershipsRepo),
		projectService:  project.NewService(gate, projectsRepo),
		verifyService: verify.NewService(verify.Config{
			CodeTTL:    cfg.CodeTTL,
			CodeDigits: cfg.CodeDigits,
		}, cfg.DB, codesRepo, snd),
		sender: snd,
	}, nil
}

// Router returns a chi router with all core routes.
// Mount this on your main router:
//
//	r := chi.NewRouter()
//	r.Mount("/v1", core.Router())
//
// Routes:
//
//	GET    /access/route          - Classify the session and pick a destination
//	POST   /access/authorize      - Evaluate one action against a scope (protected)
//	POST   /invitations           - Issue an invitation (protected)
//	POST   /invitations/redeem    - Redeem an invitation token (protected)
//	DELETE /invitations/{id}      - Revoke a pending invitation (protected)
//	POST   /projects              - Create a project with a unique slug (protected)
//	POST   /verification/codes    - Issue a verification code (protected)
//	POST   /verification/confirm  - Confirm a verification code (protected)
func (c *Core) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(c.SessionMiddleware())

	accessHandler := accessfeature.NewHandler(c.config.Logger, c.gate)
	r.Get("/access/route", accessHandler.Route)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession())

		r.Post("/access/authorize", accessHandler.Authorize)

		invitationsHandler := invitations.NewHandler(
			c.config.Logger,
			c.inviteService,
			c.companiesRepo,
			c.sender,
			c.config.AppBaseURL,
			c.config.InviteTTL,
		)
		r.Post("/invitations", invitationsHandler.Create)
		r.Post("/invitations/redeem", invitationsHandler.Redeem)
		r.Delete("/invitations/{id}", invitationsHandler.Revoke)

		projectsHandler := projects.NewHandler(c.config.Logger, c.projectService)
		r.Post("/projects", projectsHandler.Create)

		verificationHandler := verification.NewHandler(c.config.Logger, c.verifyService)
		r.Post("/verification/codes", verificationHandler.IssueCode)
		r.Post("/verification/confirm", verificationHandler.Confirm)
	})

	return r
}

// Gate returns the authorization gate for direct use in your own handlers.
func (c *Core) Gate() *access.Gate {
	return c.gate
}

// SessionMiddleware returns middleware that resolves the caller's session
// snapshot. Anonymous requests pass through without a session.
// Use this to protect your own routes together with RequireSession:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(core.SessionMiddleware())
//	    r.Get("/protected", handler)
//	})
func (c *Core) SessionMiddleware() func(http.Handler) http.Handler {
	return middleware.Session(c.verifier, c.sessionBuilder)
}

// RequireSession returns middleware that rejects requests without a
// resolved session. Use after SessionMiddleware.
func (c *Core) RequireSession() func(http.Handler) http.Handler {
	return middleware.RequireSession()
}

// GetSession extracts the session snapshot from a request.
// Use after SessionMiddleware:
//
//	session, ok := launchdeck.GetSession(r)
func GetSession(r *http.Request) (*domain.Session, bool) {
	return middleware.GetSession(r.Context())
}

// HealthHandler returns a simple health check handler.
func (c *Core) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}

// Handler returns an http.Handler for mounting with http.StripPrefix.
// This is useful when using standard library ServeMux:
//
//	mux := http.NewServeMux()
//	mux.Handle("/v1/", http.StripPrefix("/v1", core.Handler()))
func (c *Core) Handler() http.Handler {
	return c.Router()
}

func validateConfig(cfg *Config) error {
	if cfg.DB == nil {
		return errors.New("launchdeck: DB is required")
	}
	if cfg.JWTSecret == "" {
		return errors.New("launchdeck: JWTSecret is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return errors.New("launchdeck: JWTSecret must be at least 32 characters")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "launchdeck"
	}
	if cfg.AppBaseURL == "" {
		cfg.AppBaseURL = "http://localhost:8080"
	}
	if cfg.InviteTTL == 0 {
		cfg.InviteTTL = 7 * 24 * time.Hour
	}
	if cfg.CodeTTL == 0 {
		cfg.CodeTTL = 15 * time.Minute
	}
	if cfg.CodeDigits == 0 {
		cfg.CodeDigits = 6
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
}

// validateSchema checks that required database tables exist.
func validateSchema(db *sql.DB) error {
	requiredTables := []string{
		"companies", "workspaces", "memberships", "workspace_memberships",
		"invitations", "projects", "verification_codes",
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	`

	for _, table := range requiredTables {
		var name string
		err := db.QueryRow(query, table).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("launchdeck: missing table '%s' - run migrations first (see migrations/ folder)", table)
		}
		if err != nil {
			return fmt.Errorf("launchdeck: failed to check schema: %w", err)
		}
	}

	return nil
}
