package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/indexpulse/core/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CredentialRepository struct {
	pool *pgxpool.Pool
}

func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

const credentialColumns = `
	id, name, email, key_material, daily_quota, used_today,
	is_active, rate_limited, last_reset_at, created_at, updated_at`

func (r *CredentialRepository) Create(ctx context.Context, c *domain.Credential) error {
	query := `
		INSERT INTO credentials (name, email, key_material, daily_quota, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING ` + credentialColumns

	row := r.pool.QueryRow(ctx, query, c.Name, c.Email, c.KeyMaterial, c.DailyQuota)
	created, err := scanCredential(row)
	if err != nil {
		return err
	}
	*c = *created
	return nil
}

func (r *CredentialRepository) GetByID(ctx context.Context, id string) (*domain.Credential, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE id = $1`, id)
	return scanCredential(row)
}

func (r *CredentialRepository) List(ctx context.Context) ([]*domain.Credential, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+credentialColumns+` FROM credentials ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []*domain.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

// NextAvailable mirrors the original service account manager's
// least-used-first selection (ORDER BY used_today ASC), locked so two
// concurrent submitters never pick the same credential before either
// commits its IncrementUsage.
func (r *CredentialRepository) NextAvailable(ctx context.Context) (*domain.Credential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM credentials
		WHERE is_active AND NOT rate_limited AND used_today < daily_quota
		ORDER BY used_today ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED`

	row := r.pool.QueryRow(ctx, query)
	c, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			return nil, domain.ErrNoCredentialAvailable
		}
		return nil, err
	}
	return c, nil
}

func (r *CredentialRepository) IncrementUsage(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE credentials SET used_today = used_today + 1, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *CredentialRepository) SetRateLimited(ctx context.Context, id string, rateLimited bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE credentials SET rate_limited = $2, updated_at = NOW() WHERE id = $1`, id, rateLimited)
	return err
}

func (r *CredentialRepository) Disable(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE credentials SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *CredentialRepository) Enable(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE credentials SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *CredentialRepository) ResetAllQuotas(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE credentials
		SET used_today = 0, rate_limited = FALSE, last_reset_at = NOW(), updated_at = NOW()`)
	return err
}

func scanCredential(row rowScanner) (*domain.Credential, error) {
	var c domain.Credential
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.KeyMaterial, &c.DailyQuota, &c.UsedToday,
		&c.IsActive, &c.RateLimited, &c.LastResetAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}
	return &c, nil
}
