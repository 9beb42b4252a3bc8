package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool

	// Redeem covers invitation redemption attempts.
	RedeemRequestsPerWindow int
	RedeemWindowMinutes     int

	// Verify covers verification code issue/confirm attempts. Codes are
	// six digits; without a limit they are guessable.
	VerifyRequestsPerWindow int
	VerifyWindowMinutes     int
}

// SecurityHeadersConfig holds security header configuration.
type SecurityHeadersConfig struct {
	Enabled            bool
	CSP                string
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// EmailConfig holds SMTP configuration. Leave Host empty to log codes and
// invite links instead of sending mail.
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Identity provider access tokens are validated with this shared
	// secret; launchdeck never issues tokens itself.
	JWTSecret string
	JWTIssuer string

	// Invitations
	InviteTTL time.Duration

	// Verification codes
	VerificationCodeTTL    time.Duration
	VerificationCodeDigits int

	// App
	AppBaseURL         string
	MaxRequestBodySize int64

	RateLimit       RateLimitConfig
	SecurityHeaders SecurityHeadersConfig
	Email           EmailConfig
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "launchdeck"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT defaults
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "launchdeck"),

		InviteTTL: getEnvDuration("INVITE_TTL", 7*24*time.Hour),

		VerificationCodeTTL:    getEnvDuration("VERIFICATION_CODE_TTL", 15*time.Minute),
		VerificationCodeDigits: getEnvInt("VERIFICATION_CODE_DIGITS", 6),

		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:8080"),
		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),

		RateLimit: RateLimitConfig{
			Enabled:                 getEnvBool("RATE_LIMIT_ENABLED", true),
			RedeemRequestsPerWindow: getEnvInt("RATE_LIMIT_REDEEM_REQUESTS", 10),
			RedeemWindowMinutes:     getEnvInt("RATE_LIMIT_REDEEM_WINDOW_MINUTES", 15),
			VerifyRequestsPerWindow: getEnvInt("RATE_LIMIT_VERIFY_REQUESTS", 5),
			VerifyWindowMinutes:     getEnvInt("RATE_LIMIT_VERIFY_WINDOW_MINUTES", 15),
		},

		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			CSP:                getEnv("SECURITY_CSP", "default-src 'none'; frame-ancestors 'none'"),
			HSTSMaxAge:         getEnvInt("SECURITY_HSTS_MAX_AGE", 31536000),
			FrameOptions:       getEnv("SECURITY_FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: getEnv("SECURITY_CONTENT_TYPE_OPTIONS", "nosniff"),
			XSSProtection:      getEnv("SECURITY_XSS_PROTECTION", "1; mode=block"),
			ReferrerPolicy:     getEnv("SECURITY_REFERRER_POLICY", "strict-origin-when-cross-origin"),
			PermissionsPolicy:  getEnv("SECURITY_PERMISSIONS_POLICY", ""),
		},

		Email: EmailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@launchdeck.example"),
			FromName: getEnv("SMTP_FROM_NAME", "Launchdeck"),
		},
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
