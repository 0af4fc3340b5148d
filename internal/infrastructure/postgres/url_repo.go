package postgres

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/indexpulse/core/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type URLRepository struct {
	pool *pgxpool.Pool
}

func NewURLRepository(pool *pgxpool.Pool) *URLRepository {
	return &URLRepository{pool: pool}
}

const urlColumns = `
	id, project_ref, text, status,
	indexnow_attempts, pingomatic_attempts, websub_attempts,
	archiveorg_attempts, backlink_attempts, googleapi_attempts,
	indexnow_last_status, pingomatic_last_status, websub_last_status,
	archiveorg_last_status, backlink_last_status, googleapi_last_status,
	is_indexed, indexed_at, indexed_title, indexed_snippet,
	last_checked_at, check_count, check_method,
	credit_debited, credit_refunded, pre_indexed, verified_not_indexed,
	submitted_at, created_at, updated_at`

func (r *URLRepository) Create(ctx context.Context, u *domain.URL) error {
	query := `
		INSERT INTO urls (project_ref, text, status, pre_indexed)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + urlColumns

	row := r.pool.QueryRow(ctx, query, u.ProjectRef, u.Text, u.Status, u.PreIndexed)
	created, err := scanURL(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateURL
		}
		return err
	}
	*u = *created
	return nil
}

func (r *URLRepository) GetByID(ctx context.Context, id string) (*domain.URL, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+urlColumns+` FROM urls WHERE id = $1`, id)
	return scanURL(row)
}

type urlCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

func (r *URLRepository) ListByProject(ctx context.Context, projectID string, limit int, cursor string) ([]*domain.URL, string, error) {
	args := []any{projectID}
	where := "project_ref = $1"

	if cursor != "" {
		var c urlCursor
		b, err := base64.RawURLEncoding.DecodeString(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("decode cursor: %w", err)
		}
		if err := json.Unmarshal(b, &c); err != nil {
			return nil, "", fmt.Errorf("decode cursor: %w", err)
		}
		args = append(args, c.CreatedAt, c.ID)
		where += " AND (created_at, id) < ($2, $3)"
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT %s FROM urls WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d`,
		urlColumns, where, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("list urls: %w", err)
	}
	defer rows.Close()

	var urls []*domain.URL
	for rows.Next() {
		u, err := scanURL(rows)
		if err != nil {
			return nil, "", err
		}
		urls = append(urls, u)
	}

	var next string
	if len(urls) == limit {
		last := urls[len(urls)-1]
		b, _ := json.Marshal(urlCursor{CreatedAt: last.CreatedAt, ID: last.ID})
		next = base64.RawURLEncoding.EncodeToString(b)
	}
	return urls, next, nil
}

func (r *URLRepository) UpdateStatus(ctx context.Context, id string, status domain.URLStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE urls SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *URLRepository) MarkSubmitted(ctx context.Context, id string, submittedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE urls SET status = $2, submitted_at = $3, updated_at = NOW() WHERE id = $1`,
		id, domain.URLStatusSubmitted, submittedAt)
	return err
}

func (r *URLRepository) SetPreIndexed(ctx context.Context, id string, preIndexed bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE urls SET pre_indexed = $2, updated_at = NOW() WHERE id = $1`, id, preIndexed)
	return err
}

// RecordMethodAttempt increments the named method's counter column and
// records its last status in a single statement; the column name is
// chosen from a fixed switch, never interpolated from caller input.
func (r *URLRepository) RecordMethodAttempt(ctx context.Context, id string, method domain.Method, lastStatus string) error {
	attemptsCol, statusCol, err := methodColumns(method)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE urls
		SET %s = %s + 1, %s = $2, updated_at = NOW()
		WHERE id = $1`, attemptsCol, attemptsCol, statusCol)

	_, err = r.pool.Exec(ctx, query, id, lastStatus)
	return err
}

func methodColumns(m domain.Method) (attempts, status string, err error) {
	switch m {
	case domain.MethodIndexNow:
		return "indexnow_attempts", "indexnow_last_status", nil
	case domain.MethodPingomatic:
		return "pingomatic_attempts", "pingomatic_last_status", nil
	case domain.MethodWebSub:
		return "websub_attempts", "websub_last_status", nil
	case domain.MethodArchiveOrg:
		return "archiveorg_attempts", "archiveorg_last_status", nil
	case domain.MethodBacklink:
		return "backlink_attempts", "backlink_last_status", nil
	case domain.MethodGoogleAPI:
		return "googleapi_attempts", "googleapi_last_status", nil
	default:
		return "", "", fmt.Errorf("unknown method %q", m)
	}
}

func (r *URLRepository) MarkIndexed(ctx context.Context, id string, title, snippet string, checkedAt time.Time, checkMethod string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE urls
		SET status = $2, is_indexed = TRUE, indexed_at = $3, indexed_title = $4, indexed_snippet = $5,
		    last_checked_at = $3, check_count = check_count + 1, check_method = $6, updated_at = NOW()
		WHERE id = $1`,
		id, domain.URLStatusIndexed, checkedAt, title, snippet, checkMethod,
	)
	return err
}

func (r *URLRepository) MarkCheckedNotIndexed(ctx context.Context, id string, checkedAt time.Time, checkMethod string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE urls
		SET status = $2, last_checked_at = $3, check_count = check_count + 1, check_method = $4, updated_at = NOW()
		WHERE id = $1`,
		id, domain.URLStatusNotIndexed, checkedAt, checkMethod,
	)
	return err
}

// RecordCheckAttempt stamps last_checked_at/check_count/check_method
// without touching status, for a verification pass whose result was
// inconclusive (probes.VerdictUnknown) and must leave status alone.
func (r *URLRepository) RecordCheckAttempt(ctx context.Context, id string, checkedAt time.Time, checkMethod string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE urls
		SET last_checked_at = $2, check_count = check_count + 1, check_method = $3, updated_at = NOW()
		WHERE id = $1`,
		id, checkedAt, checkMethod,
	)
	return err
}

func (r *URLRepository) SetCreditDebited(ctx context.Context, id string, debited bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE urls SET credit_debited = $2, updated_at = NOW() WHERE id = $1`, id, debited)
	return err
}

func (r *URLRepository) SetCreditRefunded(ctx context.Context, id string, refunded bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE urls SET credit_refunded = $2, updated_at = NOW() WHERE id = $1`, id, refunded)
	return err
}

func (r *URLRepository) SetVerifiedNotIndexed(ctx context.Context, id string, verified bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE urls SET verified_not_indexed = $2, updated_at = NOW() WHERE id = $1`, id, verified)
	return err
}

// ClaimPendingBatch is modeled on the teacher's job claim query: FOR
// UPDATE SKIP LOCKED lets multiple dispatcher replicas run concurrently
// without double-submitting the same URL.
func (r *URLRepository) ClaimPendingBatch(ctx context.Context, limit int) ([]*domain.URL, error) {
	query := fmt.Sprintf(`
		UPDATE urls
		SET status = '%s', submitted_at = NOW(), updated_at = NOW()
		WHERE id IN (
			SELECT id FROM urls
			WHERE status = '%s'
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING %s`, domain.URLStatusSubmitted, domain.URLStatusPending, urlColumns)

	return r.queryURLs(ctx, query, limit)
}

func (r *URLRepository) ClaimForVerification(ctx context.Context, minAge, maxAge time.Duration, limit int) ([]*domain.URL, error) {
	args := []any{minAge.String(), limit}
	ageClause := `submitted_at <= NOW() - $1::interval`
	if maxAge > 0 {
		args = []any{minAge.String(), maxAge.String(), limit}
		ageClause = `submitted_at <= NOW() - $1::interval AND submitted_at > NOW() - $2::interval`
	}

	// Claims by locking the row with an UPDATE ... RETURNING (same
	// concurrency-safe pattern as ClaimPendingBatch) but only bumps
	// updated_at: status is left exactly as found so the per-URL
	// promotion logic in the verification scheduler is the only thing
	// that ever moves a URL between submitted/indexing/verifying.
	query := fmt.Sprintf(`
		UPDATE urls
		SET updated_at = NOW()
		WHERE id IN (
			SELECT id FROM urls
			WHERE status IN ('%s', '%s', '%s', '%s')
			  AND NOT is_indexed
			  AND %s
			ORDER BY submitted_at ASC NULLS LAST
			LIMIT $%d
			FOR UPDATE SKIP LOCKED
		)
		RETURNING %s`,
		domain.URLStatusSubmitted, domain.URLStatusIndexing, domain.URLStatusVerifying, domain.URLStatusNotIndexed,
		ageClause, len(args), urlColumns)

	return r.queryURLs(ctx, query, args...)
}

func (r *URLRepository) ClaimForRefundSweep(ctx context.Context, age time.Duration, limit int) ([]*domain.URL, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM urls
		WHERE credit_debited AND NOT credit_refunded AND NOT is_indexed
		  AND submitted_at <= NOW() - $1::interval
		ORDER BY submitted_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED`, urlColumns)

	return r.queryURLs(ctx, query, age.String(), limit)
}

func (r *URLRepository) queryURLs(ctx context.Context, query string, args ...any) ([]*domain.URL, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query urls: %w", err)
	}
	defer rows.Close()

	var urls []*domain.URL
	for rows.Next() {
		u, err := scanURL(rows)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

func scanURL(row rowScanner) (*domain.URL, error) {
	var u domain.URL
	err := row.Scan(
		&u.ID, &u.ProjectRef, &u.Text, &u.Status,
		&u.IndexNowAttempts, &u.PingomaticAttempts, &u.WebSubAttempts,
		&u.ArchiveOrgAttempts, &u.BacklinkAttempts, &u.GoogleAPIAttempts,
		&u.IndexNowLastStatus, &u.PingomaticLastStatus, &u.WebSubLastStatus,
		&u.ArchiveOrgLastStatus, &u.BacklinkLastStatus, &u.GoogleAPILastStatus,
		&u.IsIndexed, &u.IndexedAt, &u.IndexedTitle, &u.IndexedSnippet,
		&u.LastCheckedAt, &u.CheckCount, &u.CheckMethod,
		&u.CreditDebited, &u.CreditRefunded, &u.PreIndexed, &u.VerifiedNotIndexed,
		&u.SubmittedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrURLNotFound
		}
		return nil, fmt.Errorf("scan url: %w", err)
	}
	return &u, nil
}
