// Package verify issues and confirms the one-time numeric codes used to
// prove email ownership before a session may leave the verification flow.
package verify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/pkg/domain"
	"github.com/launchdeck/launchdeck/pkg/repository"
	"github.com/launchdeck/launchdeck/pkg/token"
)

// Defaults applied when Config leaves fields zero.
const (
	DefaultCodeTTL    = 15 * time.Minute
	DefaultCodeDigits = 6
)

// Config holds verification code configuration.
type Config struct {
	CodeTTL    time.Duration
	CodeDigits int
}

// Sender delivers a verification code. Email transport is an external
// collaborator; the service only depends on this interface.
type Sender interface {
	SendVerificationCode(to, code string) error
}

// Service issues and confirms verification codes.
type Service struct {
	config Config
	db     *sql.DB
	codes  *repository.VerificationCodesRepository
	sender Sender
}

// NewService creates a new verification service.
func NewService(config Config, db *sql.DB, codes *repository.VerificationCodesRepository, sender Sender) *Service {
	if config.CodeTTL == 0 {
		config.CodeTTL = DefaultCodeTTL
	}
	if config.CodeDigits == 0 {
		config.CodeDigits = DefaultCodeDigits
	}
	return &Service{config: config, db: db, codes: codes, sender: sender}
}

// Issue generates a fresh code for the address, invalidating any code
// issued earlier, and hands it to the sender. The raw code is returned to
// the caller once and never retrievable afterwards.
func (s *Service) Issue(ctx context.Context, email string) (string, error) {
	email = domain.NormalizeEmail(email)

	code, err := token.GenerateNumericCode(s.config.CodeDigits)
	if err != nil {
		return "", err
	}
	digest, err := hashCode(code)
	if err != nil {
		return "", err
	}

	now := time.Now()
	record := &domain.VerificationCode{
		ID:         uuid.New(),
		Email:      email,
		CodeDigest: digest,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.config.CodeTTL),
	}

	err = repository.Tx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.codes.ConsumeActiveTx(ctx, tx, email); err != nil {
			return fmt.Errorf("consume active codes: %w", err)
		}
		if err := s.codes.CreateTx(ctx, tx, record); err != nil {
			return fmt.Errorf("create code: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if s.sender != nil {
		if err := s.sender.SendVerificationCode(email, code); err != nil {
			return "", fmt.Errorf("send code: %w", err)
		}
	}
	return code, nil
}

// Confirm checks a submitted code and consumes it on success. A code that
// does not match the latest issued one reports ErrCodeInvalid; callers
// learn nothing about whether the address has a pending code at all.
func (s *Service) Confirm(ctx context.Context, email, code string) error {
	email = domain.NormalizeEmail(email)

	record, err := s.codes.GetLatestByEmail(ctx, email)
	if err != nil {
		return err
	}

	now := time.Now()
	if !record.IsValid(now) {
		if record.ConsumedAt != nil {
			return domain.ErrCodeConsumed
		}
		return domain.ErrCodeExpired
	}

	if !verifyCode(code, record.CodeDigest) {
		return domain.ErrCodeInvalid
	}

	consumed, err := s.codes.MarkConsumed(ctx, record.ID)
	if err != nil {
		return fmt.Errorf("consume code: %w", err)
	}
	if !consumed {
		return domain.ErrCodeConsumed
	}
	return nil
}
