package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	neturl "net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// Webhook POSTs an indexed event to a project-configured URL, signing
// the body with HMAC-SHA256 so the receiver can verify it came from us,
// the same pattern the Stripe webhook handler verifies in reverse.
// Deliveries run through a per-destination-host circuit breaker so a
// dead customer endpoint can't back up the verification sweep behind
// it.
type Webhook struct {
	httpClient *http.Client
	secret     []byte

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func NewWebhook(httpClient *http.Client, secret []byte) *Webhook {
	return &Webhook{httpClient: httpClient, secret: secret, breakers: make(map[string]*gobreaker.CircuitBreaker)}
}

type webhookPayload struct {
	Event     string `json:"event"`
	URLID     string `json:"url_id"`
	URLText   string `json:"url"`
	ProjectID string `json:"project_id"`
	Timestamp int64  `json:"timestamp"`
}

func (w *Webhook) NotifyIndexed(ctx context.Context, event IndexedEvent) error {
	if event.Project.WebhookURL == "" {
		return nil
	}

	payload := webhookPayload{
		Event:     "url.indexed",
		URLID:     event.URL.ID,
		URLText:   event.URL.Text,
		ProjectID: event.Project.ID,
		Timestamp: time.Now().Unix(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	mac := hmac.New(sha256.New, w.secret)
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	breaker := w.breakerFor(event.Project.WebhookURL)
	_, err = breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, event.Project.WebhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Signature-SHA256", signature)

		resp, err := w.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("webhook destination returned %d", resp.StatusCode)
		}
		return nil, nil
	})
	return err
}

func (w *Webhook) breakerFor(url string) *gobreaker.CircuitBreaker {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := url
	if u, err := neturl.Parse(url); err == nil && u.Host != "" {
		key = u.Host
	}
	if b, ok := w.breakers[key]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        key,
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 10
		},
	})
	w.breakers[key] = b
	return b
}
