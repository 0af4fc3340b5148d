package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/usecase"
)

// projectUsecaser is the subset of ProjectUsecase the handler needs.
type projectUsecaser interface {
	CreateProject(ctx context.Context, input usecase.CreateProjectInput) (*domain.Project, error)
	GetOwnedProject(ctx context.Context, id, ownerID string) (*domain.Project, error)
	ListProjects(ctx context.Context, ownerID string, limit int, cursor string) (usecase.ListProjectsResult, error)
	UpdateProject(ctx context.Context, id, ownerID string, input usecase.UpdateProjectInput) (*domain.Project, error)
}

type ProjectHandler struct {
	projects projectUsecaser
	logger   *slog.Logger
}

func NewProjectHandler(projects projectUsecaser, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		logger:   logger.With("component", "project_handler"),
	}
}

type createProjectRequest struct {
	MainDomain     string  `json:"main_domain" binding:"required"`
	CredentialsRef *string `json:"credentials_ref"`
	WebhookURL     string  `json:"webhook_url"`
	NotifyByEmail  bool    `json:"notify_by_email"`
}

// POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), usecase.CreateProjectInput{
		OwnerID:        c.GetString("userID"),
		MainDomain:     req.MainDomain,
		CredentialsRef: req.CredentialsRef,
		WebhookURL:     req.WebhookURL,
		NotifyByEmail:  req.NotifyByEmail,
	})
	if err != nil {
		h.logger.Error("create project", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, project)
}

// GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.GetOwnedProject(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// GET /projects?limit=&cursor=
func (h *ProjectHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	result, err := h.projects.ListProjects(c.Request.Context(), c.GetString("userID"), limit, c.Query("cursor"))
	if err != nil {
		h.logger.Error("list projects", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": result.Projects, "next_cursor": result.NextCursor})
}

type updateProjectRequest struct {
	WebhookURL     string  `json:"webhook_url"`
	NotifyByEmail  bool    `json:"notify_by_email"`
	CredentialsRef *string `json:"credentials_ref"`
}

// PATCH /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.UpdateProject(c.Request.Context(), c.Param("id"), c.GetString("userID"), usecase.UpdateProjectInput{
		WebhookURL:     req.WebhookURL,
		NotifyByEmail:  req.NotifyByEmail,
		CredentialsRef: req.CredentialsRef,
	})
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": errProjectNotFound})
		return
	}
	h.logger.Error("project lookup", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
}
