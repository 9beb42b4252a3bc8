package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/internal/http/middleware"
	"github.com/launchdeck/launchdeck/pkg/domain"
)

func withSession(req *http.Request, s *domain.Session) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.SessionKey, s)
	return req.WithContext(ctx)
}

func TestIssueCodeRequiresSession(t *testing.T) {
	handler := &Handler{}

	req := httptest.NewRequest(http.MethodPost, "/v1/verification/codes", nil)
	rec := httptest.NewRecorder()

	handler.IssueCode(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestIssueCodeAlreadyVerified(t *testing.T) {
	handler := &Handler{}

	req := httptest.NewRequest(http.MethodPost, "/v1/verification/codes", nil)
	req = withSession(req, &domain.Session{
		UserID:        uuid.New(),
		Email:         "user@example.com",
		EmailVerified: true,
	})
	rec := httptest.NewRecorder()

	handler.IssueCode(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var response map[string]string
	json.NewDecoder(rec.Body).Decode(&response)
	if response["error"] != "email already verified" {
		t.Errorf("Error = %q, want %q", response["error"], "email already verified")
	}
}

func TestConfirmValidation(t *testing.T) {
	handler := &Handler{}
	session := &domain.Session{UserID: uuid.New(), Email: "user@example.com"}

	tests := []struct {
		name          string
		body          string
		expectedError string
	}{
		{
			name:          "empty body",
			body:          `{}`,
			expectedError: "code is required",
		},
		{
			name:          "invalid json",
			body:          `{invalid}`,
			expectedError: "invalid request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/verification/confirm", bytes.NewBufferString(tt.body))
			req = withSession(req, session)
			rec := httptest.NewRecorder()

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Validation should have failed before reaching service")
				}
			}()

			handler.Confirm(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("Status code = %d, want %d", rec.Code, http.StatusBadRequest)
			}

			var response map[string]string
			json.NewDecoder(rec.Body).Decode(&response)
			if response["error"] != tt.expectedError {
				t.Errorf("Error = %q, want %q", response["error"], tt.expectedError)
			}
		})
	}
}
