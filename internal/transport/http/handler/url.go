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

// urlUsecaser is the subset of URLUsecase the handler needs.
type urlUsecaser interface {
	GetOwnedURL(ctx context.Context, id, ownerID string) (*domain.URL, error)
	ListByProject(ctx context.Context, projectID, ownerID string, limit int, cursor string) (usecase.ListURLsResult, error)
	ListLogs(ctx context.Context, urlID, ownerID string, limit int) ([]*domain.IndexingLog, error)
}

// submitter is the subset of SubmissionDispatcher the handler needs.
type submitter interface {
	SubmitURLs(ctx context.Context, userID, projectID string, texts []string, indexNowConfig *domain.IndexNowConfig) ([]*domain.URL, error)
}

type URLHandler struct {
	urls     urlUsecaser
	submitter submitter
	logger   *slog.Logger
}

func NewURLHandler(urls urlUsecaser, submitter submitter, logger *slog.Logger) *URLHandler {
	return &URLHandler{
		urls:      urls,
		submitter: submitter,
		logger:    logger.With("component", "url_handler"),
	}
}

type submitURLsRequest struct {
	URLs           []string              `json:"urls" binding:"required,min=1,dive,required"`
	IndexNowConfig *domain.IndexNowConfig `json:"indexnow_config"`
}

// POST /projects/:id/urls
func (h *URLHandler) Submit(c *gin.Context) {
	var req submitURLsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	urls, err := h.submitter.SubmitURLs(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.URLs, req.IndexNowConfig)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientCredits) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": errInsufficientFunds})
			return
		}
		if errors.Is(err, domain.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errProjectNotFound})
			return
		}
		h.logger.Error("submit urls", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"urls": urls})
}

// GET /projects/:id/urls?limit=&cursor=
func (h *URLHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	result, err := h.urls.ListByProject(c.Request.Context(), c.Param("id"), c.GetString("userID"), limit, c.Query("cursor"))
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"urls": result.URLs, "next_cursor": result.NextCursor})
}

// GET /urls/:urlID
func (h *URLHandler) Get(c *gin.Context) {
	u, err := h.urls.GetOwnedURL(c.Request.Context(), c.Param("urlID"), c.GetString("userID"))
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GET /urls/:urlID/logs?limit=
func (h *URLHandler) Logs(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	logs, err := h.urls.ListLogs(c.Request.Context(), c.Param("urlID"), c.GetString("userID"), limit)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *URLHandler) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": errProjectNotFound})
		return
	}
	if errors.Is(err, domain.ErrURLNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": errURLNotFound})
		return
	}
	h.logger.Error("url lookup", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
}
