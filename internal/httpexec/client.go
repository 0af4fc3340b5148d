// Package httpexec holds the outbound HTTP client shared by every
// method adapter and probe, generalized from the scheduler's executor:
// one pooled client with a bounded-redirect policy, timeouts applied
// per call via context rather than per destination.
package httpexec

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"
)

// NewClient builds the pooled client every adapter and probe shares.
// Per-call timeouts come from the context passed to each request; the
// client-level Timeout is only a safety net against a hung transport.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Minute,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		},
	}
}
