package usecase

import (
	"context"
	"fmt"

	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/repository"
	"github.com/indexpulse/core/internal/sitemap"
)

// sitemapFetcher is the subset of sitemap.Fetcher the importer needs.
type sitemapFetcher interface {
	DiscoverAndFetch(ctx context.Context, domain string) ([]string, error)
	FetchURL(ctx context.Context, sitemapURL string) ([]string, error)
}

// urlSubmitter is the subset of SubmissionDispatcher the importer needs.
type urlSubmitter interface {
	SubmitURLs(ctx context.Context, userID, projectID string, texts []string, indexNowConfig *domain.IndexNowConfig) ([]*domain.URL, error)
}

// SitemapImporter bulk-adds URLs to a project from its sitemap through
// the same debit+dispatch path as a manual submission: discovery only
// produces a URL list, the dispatcher still owns credit checks,
// pre-check, and enqueue.
type SitemapImporter struct {
	fetcher    sitemapFetcher
	dispatcher urlSubmitter
	projects   repository.ProjectRepository
}

func NewSitemapImporter(fetcher *sitemap.Fetcher, dispatcher *SubmissionDispatcher, projects repository.ProjectRepository) *SitemapImporter {
	return &SitemapImporter{fetcher: fetcher, dispatcher: dispatcher, projects: projects}
}

// ImportFromProjectDomain discovers the project's sitemap from its
// main_domain and submits every URL found. sitemapURL, if non-empty,
// is fetched directly instead of probing the standard candidate paths.
func (i *SitemapImporter) ImportFromProjectDomain(ctx context.Context, userID, projectID, sitemapURL string) ([]*domain.URL, error) {
	project, err := i.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project.OwnerID != userID {
		return nil, domain.ErrProjectNotFound
	}

	var urls []string
	if sitemapURL != "" {
		urls, err = i.fetcher.FetchURL(ctx, sitemapURL)
	} else {
		urls, err = i.fetcher.DiscoverAndFetch(ctx, project.MainDomain)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}
	if len(urls) == 0 {
		return nil, nil
	}

	return i.dispatcher.SubmitURLs(ctx, userID, projectID, urls, nil)
}
