package usecase

import (
	"context"
	"fmt"

	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/repository"
)

// URLUsecase is the read-side glue for the REST surface; writes to a
// URL's lifecycle all go through SubmissionDispatcher or the scheduler.
type URLUsecase struct {
	urls     repository.URLRepository
	projects repository.ProjectRepository
	logs     repository.IndexingLogRepository
}

func NewURLUsecase(urls repository.URLRepository, projects repository.ProjectRepository, logs repository.IndexingLogRepository) *URLUsecase {
	return &URLUsecase{urls: urls, projects: projects, logs: logs}
}

func (u *URLUsecase) GetOwnedURL(ctx context.Context, id, ownerID string) (*domain.URL, error) {
	url, err := u.urls.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get url: %w", err)
	}
	if err := u.verifyOwnership(ctx, url.ProjectRef, ownerID); err != nil {
		return nil, err
	}
	return url, nil
}

type ListURLsResult struct {
	URLs       []*domain.URL
	NextCursor string
}

func (u *URLUsecase) ListByProject(ctx context.Context, projectID, ownerID string, limit int, cursor string) (ListURLsResult, error) {
	if err := u.verifyOwnership(ctx, projectID, ownerID); err != nil {
		return ListURLsResult{}, err
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	urls, next, err := u.urls.ListByProject(ctx, projectID, limit, cursor)
	if err != nil {
		return ListURLsResult{}, fmt.Errorf("list urls: %w", err)
	}
	return ListURLsResult{URLs: urls, NextCursor: next}, nil
}

func (u *URLUsecase) ListLogs(ctx context.Context, urlID, ownerID string, limit int) ([]*domain.IndexingLog, error) {
	if _, err := u.GetOwnedURL(ctx, urlID, ownerID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	logs, err := u.logs.ListByURL(ctx, urlID, limit)
	if err != nil {
		return nil, fmt.Errorf("list indexing logs: %w", err)
	}
	return logs, nil
}

func (u *URLUsecase) verifyOwnership(ctx context.Context, projectID, ownerID string) error {
	p, err := u.projects.GetByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	if p.OwnerID != ownerID {
		return domain.ErrProjectNotFound
	}
	return nil
}
