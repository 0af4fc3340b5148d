package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/indexpulse/core/internal/credentials"
	"github.com/indexpulse/core/internal/domain"
	"golang.org/x/oauth2/google"
)

const searchConsoleScope = "https://www.googleapis.com/auth/webmasters.readonly"

// Builder assembles a per-project Checker: the project's own credential
// when one is configured, otherwise the pool's least-used credential,
// followed by best-effort custom search and the always-present
// fallback.
type Builder struct {
	pool       *credentials.Pool
	httpClient *http.Client
	cache      *credentials.PropertyCache
	cseAPIKey  string
	cseID      string
}

func NewBuilder(pool *credentials.Pool, httpClient *http.Client, cache *credentials.PropertyCache, cseAPIKey, cseID string) *Builder {
	return &Builder{pool: pool, httpClient: httpClient, cache: cache, cseAPIKey: cseAPIKey, cseID: cseID}
}

// Build has the usecase.CheckerBuilder signature; callers typically pass
// b.Build as the usecase.CheckerBuilder value.
func (b *Builder) Build(ctx context.Context, project *domain.Project) *Checker {
	var chain []Probe

	if cred, err := b.acquireFor(ctx, project); err == nil && cred != nil {
		chain = append(chain, NewAuthoritative(b.httpClient, tokenSource, propertyList, b.cache, cred.ID, cred.KeyMaterial))
	}
	if b.cseAPIKey != "" && b.cseID != "" {
		chain = append(chain, NewBestEffort(b.httpClient, b.cseAPIKey, b.cseID))
	}
	chain = append(chain, NewFallback())

	return NewChecker(chain...)
}

func (b *Builder) acquireFor(ctx context.Context, project *domain.Project) (*domain.Credential, error) {
	if b.pool == nil {
		return nil, domain.ErrNoCredentialAvailable
	}
	return b.pool.AcquireForProject(ctx, project)
}

// tokenSource exchanges a service-account key blob for a bearer token
// scoped to the URL inspection API, the same JWT-assertion flow the
// original service account manager used via google-auth's credentials.
func tokenSource(ctx context.Context, keyMaterial string) (string, error) {
	cfg, err := google.JWTConfigFromJSON([]byte(keyMaterial), searchConsoleScope)
	if err != nil {
		return "", fmt.Errorf("parse service account key: %w", err)
	}
	token, err := cfg.TokenSource(ctx).Token()
	if err != nil {
		return "", fmt.Errorf("fetch oauth token: %w", err)
	}
	return token.AccessToken, nil
}

// propertyList fetches the set of Search Console properties the
// credential has verified access to.
func propertyList(ctx context.Context, keyMaterial, bearer string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://searchconsole.googleapis.com/webmasters/v3/sites", nil)
	if err != nil {
		return nil, fmt.Errorf("build sites request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		SiteEntry []struct {
			SiteURL string `json:"siteUrl"`
		} `json:"siteEntry"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode sites response: %w", err)
	}

	sites := make([]string, 0, len(out.SiteEntry))
	for _, s := range out.SiteEntry {
		sites = append(sites, s.SiteURL)
	}
	return sites, nil
}
