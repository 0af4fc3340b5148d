package methodadapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/indexpulse/core/internal/domain"
)

const websubHub = "https://pubsubhubbub.appspot.com/"

// WebSub pings the Google-operated PubSubHubbub hub, which then
// fetches the URL's feed and notifies subscribers.
type WebSub struct {
	httpClient *http.Client
}

func NewWebSub(httpClient *http.Client) *WebSub {
	return &WebSub{httpClient: httpClient}
}

func (a *WebSub) Submit(ctx context.Context, target string, _ domain.QueueJob) (Outcome, error) {
	form := url.Values{}
	form.Set("hub.mode", "publish")
	form.Set("hub.url", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, websubHub, strings.NewReader(form.Encode()))
	if err != nil {
		return Outcome{}, fmt.Errorf("build websub request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("websub request: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	return Outcome{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}
