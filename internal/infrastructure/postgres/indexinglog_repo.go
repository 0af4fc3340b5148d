package postgres

import (
	"context"
	"fmt"

	"github.com/indexpulse/core/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IndexingLogRepository struct {
	pool *pgxpool.Pool
}

func NewIndexingLogRepository(pool *pgxpool.Pool) *IndexingLogRepository {
	return &IndexingLogRepository{pool: pool}
}

func (r *IndexingLogRepository) Create(ctx context.Context, l *domain.IndexingLog) error {
	query := `
		INSERT INTO indexing_logs (url_ref, method, status, response_code, response_body, credentials_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, url_ref, method, status, response_code, response_body, credentials_ref, created_at`

	row := r.pool.QueryRow(ctx, query, l.URLRef, l.Method, l.Status, l.ResponseCode, l.ResponseBody, l.CredentialsRef)
	created, err := scanIndexingLog(row)
	if err != nil {
		return err
	}
	*l = *created
	return nil
}

func (r *IndexingLogRepository) ListByURL(ctx context.Context, urlID string, limit int) ([]*domain.IndexingLog, error) {
	query := `
		SELECT id, url_ref, method, status, response_code, response_body, credentials_ref, created_at
		FROM indexing_logs
		WHERE url_ref = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, urlID, limit)
	if err != nil {
		return nil, fmt.Errorf("list indexing logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.IndexingLog
	for rows.Next() {
		l, err := scanIndexingLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func scanIndexingLog(row rowScanner) (*domain.IndexingLog, error) {
	var l domain.IndexingLog
	err := row.Scan(&l.ID, &l.URLRef, &l.Method, &l.Status, &l.ResponseCode, &l.ResponseBody, &l.CredentialsRef, &l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan indexing log: %w", err)
	}
	return &l, nil
}
