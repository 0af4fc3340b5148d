package postgres

import (
	"encoding/base64"
	"encoding/json"

	"context"
	"errors"
	"fmt"
	"time"

	"github.com/indexpulse/core/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	query := `
		INSERT INTO projects (owner_id, main_domain, credentials_ref, webhook_url, notify_by_email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, owner_id, main_domain, credentials_ref, webhook_url, notify_by_email, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query, p.OwnerID, p.MainDomain, p.CredentialsRef, p.WebhookURL, p.NotifyByEmail)
	created, err := scanProject(row)
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `
		SELECT id, owner_id, main_domain, credentials_ref, webhook_url, notify_by_email, created_at, updated_at
		FROM projects WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	return scanProject(row)
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE projects
		SET main_domain = $2, credentials_ref = $3, webhook_url = $4, notify_by_email = $5, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.MainDomain, p.CredentialsRef, p.WebhookURL, p.NotifyByEmail,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

type projectCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string, limit int, cursor string) ([]*domain.Project, string, error) {
	args := []any{ownerID}
	where := "owner_id = $1"

	if cursor != "" {
		c, err := decodeProjectCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("decode cursor: %w", err)
		}
		args = append(args, c.CreatedAt, c.ID)
		where += " AND (created_at, id) < ($2, $3)"
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, owner_id, main_domain, credentials_ref, webhook_url, notify_by_email, created_at, updated_at
		FROM projects
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`, where, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, "", err
		}
		projects = append(projects, p)
	}

	var next string
	if len(projects) == limit {
		last := projects[len(projects)-1]
		next = encodeProjectCursor(projectCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return projects, next, nil
}

func encodeProjectCursor(c projectCursor) string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeProjectCursor(s string) (projectCursor, error) {
	var c projectCursor
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return c, err
	}
	return c, json.Unmarshal(b, &c)
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.MainDomain, &p.CredentialsRef, &p.WebhookURL, &p.NotifyByEmail,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &p, nil
}
