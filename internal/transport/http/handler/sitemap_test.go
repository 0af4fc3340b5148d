package handler_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/transport/http/handler"
)

type fakeSitemapImporter struct {
	importFromProjectDomain func(ctx context.Context, userID, projectID, sitemapURL string) ([]*domain.URL, error)
}

func (f *fakeSitemapImporter) ImportFromProjectDomain(ctx context.Context, userID, projectID, sitemapURL string) ([]*domain.URL, error) {
	return f.importFromProjectDomain(ctx, userID, projectID, sitemapURL)
}

func newSitemapTestEngine(importer *fakeSitemapImporter) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewSitemapHandler(importer, logger)

	r := gin.New()
	r.POST("/projects/:id/import-sitemap", func(c *gin.Context) {
		c.Set("userID", "user-1")
		h.Import(c)
	})
	return r
}

func TestSitemapImportEmptyBodyStillDispatches(t *testing.T) {
	var capturedSitemapURL string
	importer := &fakeSitemapImporter{
		importFromProjectDomain: func(_ context.Context, _, _, sitemapURL string) ([]*domain.URL, error) {
			capturedSitemapURL = sitemapURL
			return []*domain.URL{{ID: "url-1"}}, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects/proj-1/import-sitemap", nil)
	newSitemapTestEngine(importer).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", w.Code, w.Body.String())
	}
	if capturedSitemapURL != "" {
		t.Errorf("sitemapURL = %q, want empty for discovery path", capturedSitemapURL)
	}
}

func TestSitemapImportMalformedJSONReturns400(t *testing.T) {
	importer := &fakeSitemapImporter{}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects/proj-1/import-sitemap", strings.NewReader(`{bad`))
	req.Header.Set("Content-Type", "application/json")
	newSitemapTestEngine(importer).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSitemapImportExplicitURLIsForwarded(t *testing.T) {
	var capturedSitemapURL string
	importer := &fakeSitemapImporter{
		importFromProjectDomain: func(_ context.Context, _, _, sitemapURL string) ([]*domain.URL, error) {
			capturedSitemapURL = sitemapURL
			return nil, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects/proj-1/import-sitemap",
		strings.NewReader(`{"sitemap_url":"https://example.com/sitemap.xml"}`))
	req.Header.Set("Content-Type", "application/json")
	newSitemapTestEngine(importer).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if capturedSitemapURL != "https://example.com/sitemap.xml" {
		t.Errorf("sitemapURL = %q", capturedSitemapURL)
	}
}

func TestSitemapImportInsufficientCreditsReturns402(t *testing.T) {
	importer := &fakeSitemapImporter{
		importFromProjectDomain: func(context.Context, string, string, string) ([]*domain.URL, error) {
			return nil, domain.ErrInsufficientCredits
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects/proj-1/import-sitemap", nil)
	newSitemapTestEngine(importer).ServeHTTP(w, req)

	if w.Code != http.StatusPaymentRequired {
		t.Errorf("status = %d, want 402", w.Code)
	}
}

func TestSitemapImportProjectNotFoundReturns404(t *testing.T) {
	importer := &fakeSitemapImporter{
		importFromProjectDomain: func(context.Context, string, string, string) ([]*domain.URL, error) {
			return nil, domain.ErrProjectNotFound
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects/proj-1/import-sitemap", nil)
	newSitemapTestEngine(importer).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSitemapImportUnexpectedErrorReturns500(t *testing.T) {
	importer := &fakeSitemapImporter{
		importFromProjectDomain: func(context.Context, string, string, string) ([]*domain.URL, error) {
			return nil, errors.New("sitemap fetch timed out")
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects/proj-1/import-sitemap", nil)
	newSitemapTestEngine(importer).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
