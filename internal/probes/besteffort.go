package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const customSearchEndpoint = "https://www.googleapis.com/customsearch/v1"

// BestEffort issues a site-restricted custom-search query and treats a
// non-empty result set as proof of indexation. It carries back
// title/snippet as display evidence when a match is found.
type BestEffort struct {
	httpClient *http.Client
	apiKey     string
	cseID      string
}

func NewBestEffort(httpClient *http.Client, apiKey, cseID string) *BestEffort {
	return &BestEffort{httpClient: httpClient, apiKey: apiKey, cseID: cseID}
}

type customSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

func (b *BestEffort) Check(ctx context.Context, target string) (Result, error) {
	q := url.Values{}
	q.Set("q", "site:"+target)
	q.Set("cx", b.cseID)
	q.Set("key", b.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, customSearchEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Result{Indexed: VerdictUnknown, Method: "best_effort"}, fmt.Errorf("build custom search request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return Result{Indexed: VerdictUnknown, Method: "best_effort"}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Indexed: VerdictUnknown, Method: "best_effort"}, nil
	}

	var out customSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{Indexed: VerdictUnknown, Method: "best_effort"}, nil
	}

	if len(out.Items) == 0 {
		return Result{Indexed: VerdictNo, Method: "best_effort"}, nil
	}
	first := out.Items[0]
	return Result{Indexed: VerdictYes, Method: "best_effort", Title: first.Title, Snippet: first.Snippet}, nil
}
