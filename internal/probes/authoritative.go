package probes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/indexpulse/core/internal/credentials"
)

const inspectionEndpoint = "https://searchconsole.googleapis.com/v1/urlInspection/index:inspect"

// Authoritative uses the owner's search-console URL-inspection API.
// Which "property" covers a given URL's host is discovered by
// enumerating the properties owned by the credential and matching on
// host suffix; the property list is cached per credential since it
// rarely changes and costs a full API round trip to fetch.
type Authoritative struct {
	httpClient   *http.Client
	tokenSource  func(ctx context.Context, keyMaterial string) (string, error)
	propertyList func(ctx context.Context, keyMaterial, bearer string) ([]string, error)
	cache        *credentials.PropertyCache
	credentialID string
	keyMaterial  string
}

func NewAuthoritative(
	httpClient *http.Client,
	tokenSource func(ctx context.Context, keyMaterial string) (string, error),
	propertyList func(ctx context.Context, keyMaterial, bearer string) ([]string, error),
	cache *credentials.PropertyCache,
	credentialID, keyMaterial string,
) *Authoritative {
	return &Authoritative{
		httpClient:   httpClient,
		tokenSource:  tokenSource,
		propertyList: propertyList,
		cache:        cache,
		credentialID: credentialID,
		keyMaterial:  keyMaterial,
	}
}

type inspectRequest struct {
	InspectionURL string `json:"inspectionUrl"`
	SiteURL       string `json:"siteUrl"`
}

type inspectResponse struct {
	InspectionResult struct {
		IndexStatusResult struct {
			Verdict string `json:"verdict"`
		} `json:"indexStatusResult"`
	} `json:"inspectionResult"`
}

func (a *Authoritative) Check(ctx context.Context, url string) (Result, error) {
	bearer, err := a.tokenSource(ctx, a.keyMaterial)
	if err != nil {
		return Result{Indexed: VerdictUnknown, Method: "authoritative"}, fmt.Errorf("obtain bearer token: %w", err)
	}

	property, ok := a.matchProperty(ctx, url, bearer)
	if !ok {
		return Result{Indexed: VerdictUnknown, Method: "authoritative"}, nil
	}

	body, err := json.Marshal(inspectRequest{InspectionURL: url, SiteURL: property})
	if err != nil {
		return Result{Indexed: VerdictUnknown, Method: "authoritative"}, fmt.Errorf("marshal inspection request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inspectionEndpoint, bytes.NewReader(body))
	if err != nil {
		return Result{Indexed: VerdictUnknown, Method: "authoritative"}, fmt.Errorf("build inspection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Result{Indexed: VerdictUnknown, Method: "authoritative"}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Indexed: VerdictUnknown, Method: "authoritative"}, nil
	}

	var out inspectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{Indexed: VerdictUnknown, Method: "authoritative"}, nil
	}

	verdict := VerdictNo
	if out.InspectionResult.IndexStatusResult.Verdict == "PASS" {
		verdict = VerdictYes
	}
	return Result{Indexed: verdict, Method: "authoritative"}, nil
}

func (a *Authoritative) matchProperty(ctx context.Context, url, bearer string) (string, bool) {
	properties, ok := a.cache.Get(a.credentialID)
	if !ok {
		fetched, err := a.propertyList(ctx, a.keyMaterial, bearer)
		if err != nil {
			return "", false
		}
		properties = fetched
		a.cache.Set(a.credentialID, properties)
	}

	host := hostOf(url)
	for _, p := range properties {
		propHost := hostOf(strings.TrimPrefix(p, "sc-domain:"))
		if propHost != "" && (host == propHost || strings.HasSuffix(host, "."+propHost)) {
			return p, true
		}
	}
	return "", false
}

func hostOf(rawURL string) string {
	u := strings.TrimPrefix(rawURL, "https://")
	u = strings.TrimPrefix(u, "http://")
	if idx := strings.IndexByte(u, '/'); idx >= 0 {
		u = u[:idx]
	}
	return u
}
