package methodadapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/indexpulse/core/internal/domain"
)

// Backlink pings the simple GET-based IndexNow forms Bing and Yandex
// expose directly (as opposed to the JSON POST form used by IndexNow
// proper) — a second, independent path to the same search engines.
type Backlink struct {
	httpClient *http.Client
	endpoints  []string
	key        string
}

func NewBacklink(httpClient *http.Client, endpoints []string, key string) *Backlink {
	if len(endpoints) == 0 {
		endpoints = []string{
			"https://www.bing.com/indexnow",
			"https://yandex.com/indexnow",
		}
	}
	return &Backlink{httpClient: httpClient, endpoints: endpoints, key: key}
}

func (a *Backlink) Submit(ctx context.Context, target string, _ domain.QueueJob) (Outcome, error) {
	var last Outcome
	for _, endpoint := range a.endpoints {
		q := url.Values{}
		q.Set("url", target)
		q.Set("key", a.key)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
		if err != nil {
			return Outcome{}, fmt.Errorf("build backlink request: %w", err)
		}

		resp, err := a.httpClient.Do(req)
		if err != nil {
			continue
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		last = Outcome{
			Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
		if last.Success {
			return last, nil
		}
	}
	return last, nil
}
