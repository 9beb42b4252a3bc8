package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/pkg/domain"
)

// VerificationCodesRepository handles email verification code persistence.
type VerificationCodesRepository struct {
	db *sql.DB
}

// NewVerificationCodesRepository creates a new verification codes
// repository.
func NewVerificationCodesRepository(db *sql.DB) *VerificationCodesRepository {
	return &VerificationCodesRepository{db: db}
}

// CreateTx inserts a verification code within a transaction.
func (r *VerificationCodesRepository) CreateTx(ctx context.Context, q Querier, code *domain.VerificationCode) error {
	query := `
		INSERT INTO verification_codes (id, email, code_digest, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.ExecContext(ctx, query,
		code.ID,
		code.Email,
		code.CodeDigest,
		code.CreatedAt,
		code.ExpiresAt,
	)
	return err
}

// ConsumeActiveTx marks any still-valid codes for the email consumed, so
// issuing a new code invalidates the old one.
func (r *VerificationCodesRepository) ConsumeActiveTx(ctx context.Context, q Querier, email string) error {
	query := `
		UPDATE verification_codes
		SET consumed_at = NOW()
		WHERE email = $1 AND consumed_at IS NULL AND expires_at > NOW()
	`
	_, err := q.ExecContext(ctx, query, email)
	return err
}

// GetLatestByEmail returns the most recently issued code for the email.
func (r *VerificationCodesRepository) GetLatestByEmail(ctx context.Context, email string) (*domain.VerificationCode, error) {
	query := `
		SELECT id, email, code_digest, created_at, expires_at, consumed_at
		FROM verification_codes
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var code domain.VerificationCode
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&code.ID,
		&code.Email,
		&code.CodeDigest,
		&code.CreatedAt,
		&code.ExpiresAt,
		&code.ConsumedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCodeInvalid
		}
		return nil, err
	}
	return &code, nil
}

// MarkConsumed consumes a code. The guard makes concurrent confirmations
// race-safe: only one caller sees rows > 0.
func (r *VerificationCodesRepository) MarkConsumed(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE verification_codes
		SET consumed_at = NOW()
		WHERE id = $1 AND consumed_at IS NULL AND expires_at > NOW()
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
