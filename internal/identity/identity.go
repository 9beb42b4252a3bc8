// Package identity adapts the external identity provider to the core: it
// validates access tokens and assembles the per-request session snapshot
// the routing and authorization decisions consume.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/pkg/domain"
	"github.com/launchdeck/launchdeck/pkg/repository"
)

// ErrInvalidToken is returned for tokens that fail signature, issuer or
// shape validation.
var ErrInvalidToken = errors.New("invalid access token")

// Claims are the verified claims carried by an identity provider access
// token.
type Claims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	CompanyID     string `json:"company_id,omitempty"`
}

// Verifier validates identity provider access tokens.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a verifier for tokens signed with the shared secret.
func NewVerifier(secret []byte, issuer string) *Verifier {
	return &Verifier{secret: secret, issuer: issuer}
}

// Parse validates a token string and returns its claims.
func (v *Verifier) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer))
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Builder assembles a domain.Session from verified claims plus membership
// state. The snapshot is rebuilt on every request; nothing is cached.
type Builder struct {
	companies   *repository.CompaniesRepository
	memberships *repository.MembershipsRepository
}

// NewBuilder creates a session builder.
func NewBuilder(companies *repository.CompaniesRepository, memberships *repository.MembershipsRepository) *Builder {
	return &Builder{companies: companies, memberships: memberships}
}

// Build resolves the principal's company context and workspace roles. A
// user with no company yields a session that routes to onboarding; a
// stale company claim is treated the same way rather than failing the
// request.
func (b *Builder) Build(ctx context.Context, claims *Claims) (*domain.Session, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	session := &domain.Session{
		UserID:        userID,
		Email:         domain.NormalizeEmail(claims.Email),
		EmailVerified: claims.EmailVerified,
	}

	companyID, found, err := b.resolveCompany(ctx, claims, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return session, nil
	}

	company, err := b.companies.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, domain.ErrCompanyNotFound) {
			return session, nil
		}
		return nil, fmt.Errorf("load company: %w", err)
	}

	session.CompanyID = &company.ID
	createdBy := company.CreatedBy
	session.CompanyCreatedBy = &createdBy

	hasWorkspace, err := b.companies.HasActiveWorkspace(ctx, company.ID)
	if err != nil {
		return nil, fmt.Errorf("check workspaces: %w", err)
	}
	session.CompanyOnboarded = company.Onboarded() && hasWorkspace

	session.Workspaces, err = b.memberships.ListWorkspaceAccess(ctx, userID, company.ID)
	if err != nil {
		return nil, fmt.Errorf("list workspace access: %w", err)
	}
	return session, nil
}

func (b *Builder) resolveCompany(ctx context.Context, claims *Claims, userID uuid.UUID) (uuid.UUID, bool, error) {
	if claims.CompanyID != "" {
		id, err := uuid.Parse(claims.CompanyID)
		if err != nil {
			return uuid.Nil, false, ErrInvalidToken
		}
		return id, true, nil
	}
	id, found, err := b.memberships.FindPrimaryCompany(ctx, userID)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("find primary company: %w", err)
	}
	return id, found, nil
}
