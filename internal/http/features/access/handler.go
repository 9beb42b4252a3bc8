package access

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/internal/http/middleware"
	"github.com/launchdeck/launchdeck/internal/httputil"
	"github.com/launchdeck/launchdeck/pkg/access"
)

type Handler struct {
	logger *slog.Logger
	gate   *access.Gate
}

func NewHandler(logger *slog.Logger, gate *access.Gate) *Handler {
	return &Handler{
		logger: logger,
		gate:   gate,
	}
}

type RouteResponse struct {
	State       string  `json:"state"`
	Destination string  `json:"destination,omitempty"`
	ReturnTo    string  `json:"return_to,omitempty"`
	WorkspaceID *string `json:"workspace_id,omitempty"`
	Redirect    string  `json:"redirect"`
}

// Route classifies the caller's session and says where the client should
// send them next.
// GET /v1/access/route
func (h *Handler) Route(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSession(r.Context())

	outcome := access.Route(session, r.URL.Query().Get("return_to"))

	resp := RouteResponse{
		State:       string(outcome.State),
		Destination: outcome.Destination,
		ReturnTo:    outcome.ReturnTo,
		Redirect:    outcome.RedirectPath(),
	}
	if outcome.WorkspaceID != nil {
		id := outcome.WorkspaceID.String()
		resp.WorkspaceID = &id
	}

	httputil.JSON(w, http.StatusOK, resp)
}

type AuthorizeRequest struct {
	Action    string `json:"action"`
	ScopeKind string `json:"scope_kind"`
	ScopeID   string `json:"scope_id"`
}

type AuthorizeResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Authorize evaluates a single action against a scope for the caller.
// POST /v1/access/authorize
// Requires authentication.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req AuthorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request")
		return
	}

	scopeID, err := uuid.Parse(req.ScopeID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid scope_id")
		return
	}

	var scope access.Scope
	switch access.ScopeKind(req.ScopeKind) {
	case access.ScopeCompany:
		scope = access.CompanyScope(scopeID)
	case access.ScopeWorkspace:
		scope = access.WorkspaceScope(scopeID)
	default:
		httputil.Error(w, http.StatusBadRequest, "invalid scope_kind")
		return
	}

	decision, err := h.gate.Authorize(r.Context(), session, access.Action(req.Action), scope)
	if err != nil {
		h.logger.Error("authorization check failed", "error", err, "action", req.Action)
		httputil.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}

	httputil.JSON(w, http.StatusOK, AuthorizeResponse{
		Allowed: decision.Allowed,
		Reason:  string(decision.Reason),
	})
}
