package methodadapter

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/indexpulse/core/internal/domain"
)

const archiveOrgBase = "https://web.archive.org/save/"

// ArchiveOrg asks the Wayback Machine to capture the URL. A capture
// doesn't affect search-engine indexation directly, but it is a common
// secondary discovery signal crawlers pick up on.
type ArchiveOrg struct {
	httpClient *http.Client
}

func NewArchiveOrg(httpClient *http.Client) *ArchiveOrg {
	return &ArchiveOrg{httpClient: httpClient}
}

func (a *ArchiveOrg) Submit(ctx context.Context, target string, _ domain.QueueJob) (Outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveOrgBase+target, nil)
	if err != nil {
		return Outcome{}, fmt.Errorf("build archive.org request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("archive.org request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return Outcome{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
	}, nil
}
