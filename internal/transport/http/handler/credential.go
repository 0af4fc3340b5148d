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

// credentialUsecaser is the subset of CredentialUsecase the handler needs.
type credentialUsecaser interface {
	AddCredential(ctx context.Context, input usecase.AddCredentialInput) (*domain.Credential, error)
	List(ctx context.Context) ([]*domain.Credential, error)
	Disable(ctx context.Context, id string) error
	Enable(ctx context.Context, id string) error
}

type CredentialHandler struct {
	credentials credentialUsecaser
	logger      *slog.Logger
}

func NewCredentialHandler(credentials credentialUsecaser, logger *slog.Logger) *CredentialHandler {
	return &CredentialHandler{
		credentials: credentials,
		logger:      logger.With("component", "credential_handler"),
	}
}

type addCredentialRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	KeyMaterial string `json:"key_material" binding:"required"`
	DailyQuota  int    `json:"daily_quota"`
}

// POST /v1/credentials
func (h *CredentialHandler) Add(c *gin.Context) {
	var req addCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cred, err := h.credentials.AddCredential(c.Request.Context(), usecase.AddCredentialInput{
		Name:        req.Name,
		Email:       req.Email,
		KeyMaterial: req.KeyMaterial,
		DailyQuota:  req.DailyQuota,
	})
	if err != nil {
		h.logger.Error("add credential", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.JSON(http.StatusCreated, redactCredential(cred))
}

// GET /v1/credentials
func (h *CredentialHandler) List(c *gin.Context) {
	creds, err := h.credentials.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list credentials", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	redacted := make([]gin.H, 0, len(creds))
	for _, cred := range creds {
		redacted = append(redacted, redactCredential(cred))
	}
	c.JSON(http.StatusOK, gin.H{"credentials": redacted})
}

// POST /v1/credentials/:id/disable
func (h *CredentialHandler) Disable(c *gin.Context) {
	if err := h.credentials.Disable(c.Request.Context(), c.Param("id")); err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// POST /v1/credentials/:id/enable
func (h *CredentialHandler) Enable(c *gin.Context) {
	if err := h.credentials.Enable(c.Request.Context(), c.Param("id")); err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *CredentialHandler) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrCredentialNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "credential not found"})
		return
	}
	h.logger.Error("credential lookup", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
}

// redactCredential strips key_material from the API response; it is a
// secret blob that should never leave the service.
func redactCredential(c *domain.Credential) gin.H {
	return gin.H{
		"id":              c.ID,
		"name":            c.Name,
		"email":           c.Email,
		"daily_quota":     c.DailyQuota,
		"used_today":      c.UsedToday,
		"is_active":       c.IsActive,
		"rate_limited":    c.RateLimited,
		"remaining_quota": c.RemainingQuota(),
		"created_at":      c.CreatedAt,
		"updated_at":      c.UpdatedAt,
	}
}
