package projects

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/internal/http/middleware"
	"github.com/launchdeck/launchdeck/internal/httputil"
	"github.com/launchdeck/launchdeck/pkg/domain"
	"github.com/launchdeck/launchdeck/pkg/project"
)

type Handler struct {
	logger         *slog.Logger
	projectService *project.Service
}

func NewHandler(logger *slog.Logger, projectService *project.Service) *Handler {
	return &Handler{
		logger:         logger,
		projectService: projectService,
	}
}

type CreateRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
}

type ProjectResponse struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
}

// Create creates a project in a workspace with a collision-free slug.
// POST /v1/projects
// Requires authentication.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	workspaceID, err := uuid.Parse(req.WorkspaceID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace_id")
		return
	}

	p, err := h.projectService.Create(r.Context(), session, workspaceID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotReady):
			httputil.Error(w, http.StatusForbidden, "account setup incomplete")
		case errors.Is(err, domain.ErrInsufficientPrivilege):
			httputil.Error(w, http.StatusForbidden, "insufficient privilege to create projects")
		case errors.Is(err, domain.ErrSlugAllocationExhausted):
			h.logger.Error("slug allocation exhausted", "workspace_id", workspaceID, "name", req.Name)
			httputil.Error(w, http.StatusConflict, "could not allocate a unique name")
		default:
			h.logger.Error("failed to create project", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "failed to create project")
		}
		return
	}

	h.logger.Info("project created", "project_id", p.ID, "workspace_id", p.WorkspaceID, "slug", p.Slug)

	httputil.JSON(w, http.StatusCreated, ProjectResponse{
		ID:          p.ID.String(),
		WorkspaceID: p.WorkspaceID.String(),
		Name:        p.Name,
		Slug:        p.Slug,
	})
}
