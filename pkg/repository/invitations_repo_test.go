package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/pkg/domain"
	"github.com/lib/pq"
)

func TestGetByTokenDigestMapsNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM invitations WHERE token_digest").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewInvitationsRepository(db)
	_, err = repo.GetByTokenDigest(context.Background(), "deadbeef")
	if !errors.Is(err, domain.ErrInviteNotFound) {
		t.Errorf("GetByTokenDigest() error = %v, want ErrInviteNotFound", err)
	}
}

func TestMarkRedeemedTxReportsCompareAndSet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewInvitationsRepository(db)
	id, redeemer := uuid.New(), uuid.New()

	mock.ExpectExec("UPDATE invitations").
		WithArgs(id, redeemer).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.MarkRedeemedTx(context.Background(), db, id, redeemer)
	if err != nil || !ok {
		t.Errorf("MarkRedeemedTx() = (%v, %v), want (true, nil)", ok, err)
	}

	mock.ExpectExec("UPDATE invitations").
		WithArgs(id, redeemer).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.MarkRedeemedTx(context.Background(), db, id, redeemer)
	if err != nil || ok {
		t.Errorf("MarkRedeemedTx() = (%v, %v), want (false, nil) when the guard fails", ok, err)
	}
}

func TestSupersedeActiveTxMatchesNullableWorkspace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewInvitationsRepository(db)
	companyID := uuid.New()

	mock.ExpectExec("UPDATE invitations").
		WithArgs(companyID, "a@example.com", nil).
		WillReturnResult(sqlmock.NewResult(0, 2))
	if err := repo.SupersedeActiveTx(context.Background(), db, companyID, nil, "a@example.com"); err != nil {
		t.Errorf("SupersedeActiveTx() error = %v", err)
	}

	wsID := uuid.New()
	mock.ExpectExec("UPDATE invitations").
		WithArgs(companyID, "a@example.com", &wsID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.SupersedeActiveTx(context.Background(), db, companyID, &wsID, "a@example.com"); err != nil {
		t.Errorf("SupersedeActiveTx() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListByCompanyScansAllFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	companyID := uuid.New()
	wsID := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "company_id", "workspace_id", "email", "invited_role", "token_digest",
		"invited_by", "created_at", "expires_at", "redeemed_at", "redeemed_by",
		"superseded_at", "revoked_at",
	}).
		AddRow(uuid.New().String(), companyID.String(), wsID.String(), "a@example.com", "writer",
			"digest-a", uuid.New().String(), now, now.Add(time.Hour), nil, nil, nil, nil).
		AddRow(uuid.New().String(), companyID.String(), nil, "b@example.com", "admin",
			"digest-b", uuid.New().String(), now, now.Add(time.Hour), nil, nil, now, nil)

	mock.ExpectQuery("FROM invitations WHERE company_id").WillReturnRows(rows)

	repo := NewInvitationsRepository(db)
	invitations, err := repo.ListByCompany(context.Background(), companyID)
	if err != nil {
		t.Fatalf("ListByCompany() error = %v", err)
	}
	if len(invitations) != 2 {
		t.Fatalf("len = %d, want 2", len(invitations))
	}
	if !invitations[0].IsWorkspaceInvite() {
		t.Error("first invitation should be workspace-scoped")
	}
	if invitations[1].Status(now) != domain.InvitationStatusSuperseded {
		t.Errorf("second invitation status = %q, want superseded", invitations[1].Status(now))
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", &pq.Error{Code: "23505"}, true},
		{"wrapped unique violation", errors.Join(errors.New("insert"), &pq.Error{Code: "23505"}), true},
		{"other pq error", &pq.Error{Code: "23503"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}
