package usecase

import (
	"context"
	"fmt"

	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/repository"
)

// ProjectUsecase owns project CRUD and the ownership check every other
// project-scoped usecase relies on.
type ProjectUsecase struct {
	repo repository.ProjectRepository
}

func NewProjectUsecase(repo repository.ProjectRepository) *ProjectUsecase {
	return &ProjectUsecase{repo: repo}
}

type CreateProjectInput struct {
	OwnerID        string
	MainDomain     string
	CredentialsRef *string
	WebhookURL     string
	NotifyByEmail  bool
}

func (u *ProjectUsecase) CreateProject(ctx context.Context, input CreateProjectInput) (*domain.Project, error) {
	p := &domain.Project{
		OwnerID:        input.OwnerID,
		MainDomain:     input.MainDomain,
		CredentialsRef: input.CredentialsRef,
		WebhookURL:     input.WebhookURL,
		NotifyByEmail:  input.NotifyByEmail,
	}
	if err := u.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// GetOwnedProject returns the project only if ownerID actually owns it,
// so a handler can 404 instead of leaking another user's project.
func (u *ProjectUsecase) GetOwnedProject(ctx context.Context, id, ownerID string) (*domain.Project, error) {
	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if p.OwnerID != ownerID {
		return nil, domain.ErrProjectNotFound
	}
	return p, nil
}

type ListProjectsResult struct {
	Projects   []*domain.Project
	NextCursor string
}

func (u *ProjectUsecase) ListProjects(ctx context.Context, ownerID string, limit int, cursor string) (ListProjectsResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	projects, next, err := u.repo.ListByOwner(ctx, ownerID, limit, cursor)
	if err != nil {
		return ListProjectsResult{}, fmt.Errorf("list projects: %w", err)
	}
	return ListProjectsResult{Projects: projects, NextCursor: next}, nil
}

type UpdateProjectInput struct {
	WebhookURL     string
	NotifyByEmail  bool
	CredentialsRef *string
}

func (u *ProjectUsecase) UpdateProject(ctx context.Context, id, ownerID string, input UpdateProjectInput) (*domain.Project, error) {
	p, err := u.GetOwnedProject(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	p.WebhookURL = input.WebhookURL
	p.NotifyByEmail = input.NotifyByEmail
	p.CredentialsRef = input.CredentialsRef
	if err := u.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}
