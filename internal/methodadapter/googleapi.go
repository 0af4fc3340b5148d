package methodadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2/google"

	"github.com/indexpulse/core/internal/credentials"
	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/repository"
)

const (
	indexingAPIEndpoint = "https://indexing.googleapis.com/v3/urlNotifications:publish"
	indexingAPIScope    = "https://www.googleapis.com/auth/indexing"
)

// GoogleAPI calls the Google Indexing API directly, the highest-trust
// submission method but also the most quota-constrained. Unlike the
// other adapters it needs a credential, so it resolves one per call
// through the shared pool using the job's project, honoring the same
// pinned-override rule as the probe chain.
type GoogleAPI struct {
	httpClient *http.Client
	pool       *credentials.Pool
	projects   repository.ProjectRepository
}

func NewGoogleAPI(httpClient *http.Client, pool *credentials.Pool, projects repository.ProjectRepository) *GoogleAPI {
	return &GoogleAPI{httpClient: httpClient, pool: pool, projects: projects}
}

type publishRequest struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

func (a *GoogleAPI) Submit(ctx context.Context, target string, job domain.QueueJob) (Outcome, error) {
	project, err := a.projects.GetByID(ctx, job.ProjectID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load project for google api submit: %w", err)
	}

	cred, err := a.pool.AcquireForProject(ctx, project)
	if err != nil {
		return Outcome{}, fmt.Errorf("acquire credential: %w", err)
	}

	bearer, err := indexingTokenSource(ctx, cred.KeyMaterial)
	if err != nil {
		return Outcome{}, fmt.Errorf("obtain bearer token: %w", err)
	}

	body, err := json.Marshal(publishRequest{URL: target, Type: "URL_UPDATED"})
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal publish request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, indexingAPIEndpoint, bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("build indexing api request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("indexing api request: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if err := a.pool.ReportAPIError(ctx, cred.ID, resp.StatusCode); err != nil {
		return Outcome{}, fmt.Errorf("report credential api error: %w", err)
	}

	return Outcome{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}, nil
}

// indexingTokenSource exchanges a service-account key blob for a bearer
// token scoped to the Indexing API's publish endpoint.
func indexingTokenSource(ctx context.Context, keyMaterial string) (string, error) {
	cfg, err := google.JWTConfigFromJSON([]byte(keyMaterial), indexingAPIScope)
	if err != nil {
		return "", fmt.Errorf("parse service account key: %w", err)
	}
	token, err := cfg.TokenSource(ctx).Token()
	if err != nil {
		return "", fmt.Errorf("fetch oauth token: %w", err)
	}
	return token.AccessToken, nil
}
