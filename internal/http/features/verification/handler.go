package verification

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/launchdeck/launchdeck/internal/http/middleware"
	"github.com/launchdeck/launchdeck/internal/httputil"
	"github.com/launchdeck/launchdeck/pkg/domain"
	"github.com/launchdeck/launchdeck/pkg/verify"
)

type Handler struct {
	logger        *slog.Logger
	verifyService *verify.Service
}

func NewHandler(logger *slog.Logger, verifyService *verify.Service) *Handler {
	return &Handler{
		logger:        logger,
		verifyService: verifyService,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

// IssueCode issues a fresh verification code for the caller's email,
// superseding any previous active code. The response is the same whether
// or not delivery succeeded, so the endpoint cannot be used as an oracle.
// POST /v1/verification/codes
// Requires authentication.
func (h *Handler) IssueCode(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if session.EmailVerified {
		httputil.Error(w, http.StatusBadRequest, "email already verified")
		return
	}

	if _, err := h.verifyService.Issue(r.Context(), session.Email); err != nil {
		h.logger.Error("failed to issue verification code", "error", err, "user_id", session.UserID)
		httputil.Error(w, http.StatusInternalServerError, "failed to issue verification code")
		return
	}

	h.logger.Info("verification code issued", "user_id", session.UserID)

	httputil.JSON(w, http.StatusOK, MessageResponse{
		Message: "Verification code sent",
	})
}

type ConfirmRequest struct {
	Code string `json:"code"`
}

// Confirm checks a verification code for the caller's email.
// POST /v1/verification/confirm
// Requires authentication.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Code == "" {
		httputil.Error(w, http.StatusBadRequest, "code is required")
		return
	}

	if err := h.verifyService.Confirm(r.Context(), session.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, domain.ErrCodeInvalid):
			httputil.Error(w, http.StatusBadRequest, "invalid verification code")
		case errors.Is(err, domain.ErrCodeExpired):
			httputil.Error(w, http.StatusBadRequest, "verification code expired")
		case errors.Is(err, domain.ErrCodeConsumed):
			httputil.Error(w, http.StatusBadRequest, "verification code already used")
		default:
			h.logger.Error("failed to confirm verification code", "error", err, "user_id", session.UserID)
			httputil.Error(w, http.StatusInternalServerError, "verification failed")
		}
		return
	}

	h.logger.Info("email verified", "user_id", session.UserID)

	httputil.JSON(w, http.StatusOK, MessageResponse{
		Message: "Email verified successfully",
	})
}
