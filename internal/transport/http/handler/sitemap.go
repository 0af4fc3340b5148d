package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/indexpulse/core/internal/domain"
)

// sitemapImporter is the subset of SitemapImporter the handler needs.
type sitemapImporter interface {
	ImportFromProjectDomain(ctx context.Context, userID, projectID, sitemapURL string) ([]*domain.URL, error)
}

type SitemapHandler struct {
	importer sitemapImporter
	logger   *slog.Logger
}

func NewSitemapHandler(importer sitemapImporter, logger *slog.Logger) *SitemapHandler {
	return &SitemapHandler{importer: importer, logger: logger.With("component", "sitemap_handler")}
}

type importSitemapRequest struct {
	SitemapURL string `json:"sitemap_url"`
}

// POST /projects/:id/import-sitemap
func (h *SitemapHandler) Import(c *gin.Context) {
	var req importSitemapRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	urls, err := h.importer.ImportFromProjectDomain(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.SitemapURL)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientCredits) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": errInsufficientFunds})
			return
		}
		if errors.Is(err, domain.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errProjectNotFound})
			return
		}
		h.logger.Error("import sitemap", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"urls": urls})
}
