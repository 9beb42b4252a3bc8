package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/launchdeck/launchdeck/internal/config"
	httpserver "github.com/launchdeck/launchdeck/internal/http"
	"github.com/launchdeck/launchdeck/internal/identity"
	"github.com/launchdeck/launchdeck/internal/notification"
	"github.com/launchdeck/launchdeck/pkg/access"
	"github.com/launchdeck/launchdeck/pkg/invite"
	"github.com/launchdeck/launchdeck/pkg/project"
	"github.com/launchdeck/launchdeck/pkg/repository"
	"github.com/launchdeck/launchdeck/pkg/verify"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Initialize repositories
	companiesRepo := repository.NewCompaniesRepository(db)
	membershipsRepo := repository.NewMembershipsRepository(db)
	invitationsRepo := repository.NewInvitationsRepository(db)
	projectsRepo := repository.NewProjectsRepository(db)
	codesRepo := repository.NewVerificationCodesRepository(db)

	// Initialize sender; fall back to log delivery without SMTP
	var sender interface {
		SendVerificationCode(to, code string) error
		SendInvitation(to, companyName, inviteURL string) error
	}
	if cfg.Email.Host != "" {
		sender = notification.NewEmailService(notification.EmailConfig{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			User:     cfg.Email.User,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
		})
		logger.Info("email delivery enabled")
	} else {
		sender = notification.NewLogService(logger)
		logger.Warn("SMTP not configured, deliveries are logged only")
	}

	// Initialize services
	gate := access.NewGate(membershipsRepo)
	inviteService := invite.NewService(db, gate, companiesRepo, invitationsRepo, membershipsRepo)
	projectService := project.NewService(gate, projectsRepo)
	verifyService := verify.NewService(verify.Config{
		CodeTTL:    cfg.VerificationCodeTTL,
		CodeDigits: cfg.VerificationCodeDigits,
	}, db, codesRepo, sender)

	verifier := identity.NewVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer)
	sessionBuilder := identity.NewBuilder(companiesRepo, membershipsRepo)

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          logger,
		Verifier:        verifier,
		SessionBuilder:  sessionBuilder,
		Gate:            gate,
		InviteService:   inviteService,
		ProjectService:  projectService,
		VerifyService:   verifyService,
		CompaniesRepo:   companiesRepo,
		InviteSender:    sender,
		AppBaseURL:      cfg.AppBaseURL,
		InviteTTL:       cfg.InviteTTL,
		RateLimitConfig: cfg.RateLimit,
		SecurityHeaders: cfg.SecurityHeaders,
		MaxBodySize:     cfg.MaxRequestBodySize,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
