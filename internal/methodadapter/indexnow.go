package methodadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/indexpulse/core/internal/domain"
)

// IndexNow submits to the first configured IndexNow endpoint (Bing's
// by default). One submission notifies all participating search
// engines; any further endpoints in the list are not called, and a
// project's IndexNowConfig changes only the host and key, not the
// endpoint.
type IndexNow struct {
	httpClient  *http.Client
	endpoints   []string
	defaultKey  string
	defaultHost string
}

func NewIndexNow(httpClient *http.Client, endpoints []string, defaultKey, defaultHost string) *IndexNow {
	if len(endpoints) == 0 {
		endpoints = []string{"https://www.bing.com/indexnow"}
	}
	return &IndexNow{httpClient: httpClient, endpoints: endpoints, defaultKey: defaultKey, defaultHost: defaultHost}
}

type indexNowPayload struct {
	Host        string   `json:"host"`
	Key         string   `json:"key"`
	KeyLocation string   `json:"keyLocation"`
	URLList     []string `json:"urlList"`
}

func (a *IndexNow) Submit(ctx context.Context, target string, job domain.QueueJob) (Outcome, error) {
	host, key, keyLocation := a.defaultHost, a.defaultKey, ""
	if job.IndexNowConfig != nil {
		host = job.IndexNowConfig.Host
		key = job.IndexNowConfig.APIKey
		keyLocation = job.IndexNowConfig.KeyLocation
	}

	body, err := json.Marshal(indexNowPayload{Host: host, Key: key, KeyLocation: keyLocation, URLList: []string{target}})
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal indexnow payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoints[0], bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("build indexnow request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("indexnow request: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	return Outcome{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}, nil
}
