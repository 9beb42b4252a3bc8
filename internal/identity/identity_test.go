package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/pkg/repository"
)

const testIssuer = "launchdeck-test"

var testSecret = []byte("test-secret-key-for-identity")

func signToken(t *testing.T, claims *Claims, secret []byte) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func testClaims(userID uuid.UUID) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email:         "User@Example.com",
		EmailVerified: true,
	}
}

func TestVerifierParse(t *testing.T) {
	v := NewVerifier(testSecret, testIssuer)
	userID := uuid.New()

	claims, err := v.Parse(signToken(t, testClaims(userID), testSecret))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Subject != userID.String() {
		t.Errorf("Subject = %q, want %q", claims.Subject, userID)
	}
	if !claims.EmailVerified {
		t.Error("EmailVerified = false, want true")
	}
}

func TestVerifierParseRejects(t *testing.T) {
	v := NewVerifier(testSecret, testIssuer)
	userID := uuid.New()

	wrongIssuer := testClaims(userID)
	wrongIssuer.Issuer = "someone-else"

	expired := testClaims(userID)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signToken(t, testClaims(userID), []byte("other-secret"))},
		{"wrong issuer", signToken(t, wrongIssuer, testSecret)},
		{"expired", signToken(t, expired, testSecret)},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func newTestBuilder(t *testing.T) (*Builder, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBuilder(repository.NewCompaniesRepository(db), repository.NewMembershipsRepository(db)), mock
}

func TestBuildWithoutCompany(t *testing.T) {
	b, mock := newTestBuilder(t)
	userID := uuid.New()

	mock.ExpectQuery("FROM memberships").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"company_id"}))

	session, err := b.Build(context.Background(), testClaims(userID))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if session.CompanyID != nil {
		t.Errorf("CompanyID = %v, want nil", session.CompanyID)
	}
	if session.Email != "user@example.com" {
		t.Errorf("Email = %q, want normalized", session.Email)
	}
}

func TestBuildWithCompany(t *testing.T) {
	b, mock := newTestBuilder(t)
	userID := uuid.New()
	companyID := uuid.New()
	createdBy := uuid.New()
	wsID := uuid.New()
	now := time.Now()

	claims := testClaims(userID)
	claims.CompanyID = companyID.String()

	mock.ExpectQuery("FROM companies").
		WithArgs(companyID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "slug", "created_by", "onboarded_at", "created_at", "updated_at", "deleted_at",
		}).AddRow(companyID, "Acme", "acme", createdBy, now, now, now, nil))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(companyID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("FROM workspace_memberships").
		WithArgs(userID, companyID).
		WillReturnRows(sqlmock.NewRows([]string{"workspace_id", "role"}).AddRow(wsID, "writer"))

	session, err := b.Build(context.Background(), claims)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if session.CompanyID == nil || *session.CompanyID != companyID {
		t.Fatalf("CompanyID = %v, want %s", session.CompanyID, companyID)
	}
	if !session.CompanyOnboarded {
		t.Error("CompanyOnboarded = false, want true")
	}
	if len(session.Workspaces) != 1 || session.Workspaces[0].WorkspaceID != wsID {
		t.Errorf("Workspaces = %v, want one entry for %s", session.Workspaces, wsID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBuildStaleCompanyClaim(t *testing.T) {
	b, mock := newTestBuilder(t)
	userID := uuid.New()
	companyID := uuid.New()

	claims := testClaims(userID)
	claims.CompanyID = companyID.String()

	mock.ExpectQuery("FROM companies").
		WithArgs(companyID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "slug", "created_by", "onboarded_at", "created_at", "updated_at", "deleted_at",
		}))

	session, err := b.Build(context.Background(), claims)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if session.CompanyID != nil {
		t.Errorf("CompanyID = %v, want nil for stale claim", session.CompanyID)
	}
}

func TestBuildBadSubject(t *testing.T) {
	b, _ := newTestBuilder(t)
	claims := testClaims(uuid.New())
	claims.Subject = "not-a-uuid"

	if _, err := b.Build(context.Background(), claims); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Build() error = %v, want ErrInvalidToken", err)
	}
}
