package methodadapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/indexpulse/core/internal/domain"
)

const pingomaticEndpoint = "http://rpc.pingomatic.com/"

// Pingomatic notifies the ping-o-matic aggregator via its XML-RPC
// weblogUpdates.ping method, the same mechanism blog publishing
// platforms use to announce new posts.
type Pingomatic struct {
	httpClient *http.Client
}

func NewPingomatic(httpClient *http.Client) *Pingomatic {
	return &Pingomatic{httpClient: httpClient}
}

const pingomaticBodyTemplate = `<?xml version="1.0"?>
<methodCall>
  <methodName>weblogUpdates.ping</methodName>
  <params>
    <param><value><string>%s</string></value></param>
    <param><value><string>%s</string></value></param>
  </params>
</methodCall>`

func (a *Pingomatic) Submit(ctx context.Context, target string, _ domain.QueueJob) (Outcome, error) {
	body := fmt.Sprintf(pingomaticBodyTemplate, target, target)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pingomaticEndpoint, strings.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("build pingomatic request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("pingomatic request: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	return Outcome{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}, nil
}
