package invitations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/internal/http/middleware"
	"github.com/launchdeck/launchdeck/internal/httputil"
	"github.com/launchdeck/launchdeck/pkg/domain"
	"github.com/launchdeck/launchdeck/pkg/invite"
	"github.com/launchdeck/launchdeck/pkg/repository"
)

// Sender delivers the invitation link to the invitee.
type Sender interface {
	SendInvitation(to, companyName, inviteURL string) error
}

type Handler struct {
	logger        *slog.Logger
	inviteService *invite.Service
	companies     *repository.CompaniesRepository
	sender        Sender
	appBaseURL    string
	defaultTTL    time.Duration
}

func NewHandler(
	logger *slog.Logger,
	inviteService *invite.Service,
	companies *repository.CompaniesRepository,
	sender Sender,
	appBaseURL string,
	defaultTTL time.Duration,
) *Handler {
	return &Handler{
		logger:        logger,
		inviteService: inviteService,
		companies:     companies,
		sender:        sender,
		appBaseURL:    appBaseURL,
		defaultTTL:    defaultTTL,
	}
}

type CreateRequest struct {
	WorkspaceID *string `json:"workspace_id,omitempty"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	TTLHours    int     `json:"ttl_hours,omitempty"`
}

type InvitationResponse struct {
	ID          string  `json:"id"`
	CompanyID   string  `json:"company_id"`
	WorkspaceID *string `json:"workspace_id,omitempty"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	ExpiresAt   string  `json:"expires_at"`
}

// Create issues an invitation for the caller's company and emails the
// invite link. The raw token leaves the process only inside that link.
// POST /v1/invitations
// Requires authentication.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if session.CompanyID == nil {
		httputil.Error(w, http.StatusForbidden, "no company membership")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Email == "" {
		httputil.Error(w, http.StatusBadRequest, "email is required")
		return
	}
	if req.Role == "" {
		httputil.Error(w, http.StatusBadRequest, "role is required")
		return
	}

	in := invite.CreateInput{
		CompanyID: *session.CompanyID,
		Email:     req.Email,
		Role:      req.Role,
		TTL:       h.defaultTTL,
	}
	if req.WorkspaceID != nil {
		wsID, err := uuid.Parse(*req.WorkspaceID)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid workspace_id")
			return
		}
		in.WorkspaceID = &wsID
	}
	if req.TTLHours > 0 {
		in.TTL = time.Duration(req.TTLHours) * time.Hour
	}

	rawToken, inv, err := h.inviteService.Create(r.Context(), session, in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotReady):
			httputil.Error(w, http.StatusForbidden, "account setup incomplete")
		case errors.Is(err, domain.ErrInsufficientPrivilege):
			httputil.Error(w, http.StatusForbidden, "insufficient privilege to invite")
		case errors.Is(err, domain.ErrInvalidRoleUpgrade):
			httputil.Error(w, http.StatusBadRequest, "invalid role for invitation")
		case errors.Is(err, domain.ErrWorkspaceNotFound):
			httputil.Error(w, http.StatusNotFound, "workspace not found")
		default:
			h.logger.Error("failed to create invitation", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "failed to create invitation")
		}
		return
	}

	h.deliver(r.Context(), inv, rawToken)

	h.logger.Info("invitation created",
		"invitation_id", inv.ID,
		"company_id", inv.CompanyID,
		"invited_by", inv.InvitedBy,
	)

	httputil.JSON(w, http.StatusCreated, toResponse(inv))
}

// deliver emails the invite link. Delivery failure does not fail the
// request; the invitation already exists and can be re-sent.
func (h *Handler) deliver(ctx context.Context, inv *domain.Invitation, rawToken string) {
	companyName := "your team"
	if company, err := h.companies.GetByID(ctx, inv.CompanyID); err == nil {
		companyName = company.Name
	}

	inviteURL := fmt.Sprintf("%s/invitations/accept?token=%s", h.appBaseURL, rawToken)
	if err := h.sender.SendInvitation(inv.Email, companyName, inviteURL); err != nil {
		h.logger.Error("failed to send invitation email", "error", err, "invitation_id", inv.ID)
	}
}

type RedeemRequest struct {
	Token string `json:"token"`
}

type RedeemResponse struct {
	CompanyID   string  `json:"company_id"`
	WorkspaceID *string `json:"workspace_id,omitempty"`
	Role        string  `json:"role"`
	RoleChanged bool    `json:"role_changed"`
}

// Redeem consumes an invitation token for the caller.
// POST /v1/invitations/redeem
// Requires authentication.
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Token == "" {
		httputil.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	result, err := h.inviteService.Redeem(r.Context(), req.Token, session.UserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInviteNotFound):
			httputil.Error(w, http.StatusBadRequest, "invalid invitation")
		case errors.Is(err, domain.ErrInviteExpired):
			httputil.Error(w, http.StatusBadRequest, "invitation expired")
		case errors.Is(err, domain.ErrInviteAlreadyRedeemed):
			httputil.Error(w, http.StatusConflict, "invitation already redeemed")
		default:
			h.logger.Error("failed to redeem invitation", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "failed to redeem invitation")
		}
		return
	}

	inv := result.Invitation
	h.logger.Info("invitation redeemed",
		"invitation_id", inv.ID,
		"company_id", inv.CompanyID,
		"user_id", session.UserID,
		"role_changed", result.RoleChanged,
	)

	resp := RedeemResponse{
		CompanyID:   inv.CompanyID.String(),
		Role:        inv.InvitedRole,
		RoleChanged: result.RoleChanged,
	}
	if inv.WorkspaceID != nil {
		id := inv.WorkspaceID.String()
		resp.WorkspaceID = &id
	}

	httputil.JSON(w, http.StatusOK, resp)
}

type RevokeResponse struct {
	Revoked bool `json:"revoked"`
}

// Revoke cancels a pending invitation. Revoking an invitation that is
// already in a terminal state reports revoked=false rather than failing.
// DELETE /v1/invitations/{id}
// Requires authentication.
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	invitationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid invitation id")
		return
	}

	revoked, err := h.inviteService.Revoke(r.Context(), session, invitationID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInviteNotFound):
			httputil.Error(w, http.StatusNotFound, "invitation not found")
		case errors.Is(err, domain.ErrNotReady):
			httputil.Error(w, http.StatusForbidden, "account setup incomplete")
		case errors.Is(err, domain.ErrInsufficientPrivilege):
			httputil.Error(w, http.StatusForbidden, "insufficient privilege to revoke")
		default:
			h.logger.Error("failed to revoke invitation", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "failed to revoke invitation")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, RevokeResponse{Revoked: revoked})
}

func toResponse(inv *domain.Invitation) InvitationResponse {
	resp := InvitationResponse{
		ID:        inv.ID.String(),
		CompanyID: inv.CompanyID.String(),
		Email:     inv.Email,
		Role:      inv.InvitedRole,
		ExpiresAt: inv.ExpiresAt.Format(time.RFC3339),
	}
	if inv.WorkspaceID != nil {
		id := inv.WorkspaceID.String()
		resp.WorkspaceID = &id
	}
	return resp
}
