// Package sitemap fetches and parses a site's sitemap (or sitemap
// index) to bulk-discover URLs for import, grounded on the original
// service's gsc_sitemaps helpers but narrowed to the read-only
// discovery/parse path: no Search Console "list registered sitemaps"
// call, since that belongs to the probe credential chain, not here.
package sitemap

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// candidatePaths are probed in order against a bare domain when the
// caller doesn't already know its sitemap URL.
var candidatePaths = []string{
	"/sitemap_index.xml",
	"/sitemap-index.xml",
	"/sitemap.xml",
	"/wp-sitemap.xml",
}

var ErrNoSitemapFound = errors.New("no sitemap found at any candidate path")

type urlEntry struct {
	Loc string `xml:"loc"`
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type sitemapEntry struct {
	Loc string `xml:"loc"`
}

type sitemapIndex struct {
	XMLName  xml.Name       `xml:"sitemapindex"`
	Sitemaps []sitemapEntry `xml:"sitemap"`
}

// Fetcher discovers and parses sitemaps over HTTP. One level of
// recursion into a sitemap index is supported; a child that is itself
// an index is skipped rather than recursed into further, bounding the
// total number of outbound requests per import.
type Fetcher struct {
	httpClient *http.Client
	maxURLs    int
}

func NewFetcher(httpClient *http.Client, maxURLs int) *Fetcher {
	return &Fetcher{httpClient: httpClient, maxURLs: maxURLs}
}

// DiscoverAndFetch probes the standard sitemap locations under domain
// and returns every <loc> URL found, capped at maxURLs.
func (f *Fetcher) DiscoverAndFetch(ctx context.Context, domain string) ([]string, error) {
	domain = strings.TrimSuffix(domain, "/")
	for _, path := range candidatePaths {
		urls, err := f.FetchURL(ctx, domain+path)
		if err == nil {
			return urls, nil
		}
	}
	return nil, ErrNoSitemapFound
}

// FetchURL fetches a known sitemap (or sitemap index) URL directly and
// returns every <loc> URL found, capped at maxURLs.
func (f *Fetcher) FetchURL(ctx context.Context, sitemapURL string) ([]string, error) {
	root, err := f.fetchXML(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	switch doc := root.(type) {
	case *urlSet:
		return f.collectLocs(doc.URLs), nil
	case *sitemapIndex:
		var urls []string
		for _, child := range doc.Sitemaps {
			if len(urls) >= f.maxURLs {
				break
			}
			childURLs, err := f.fetchChildURLSet(ctx, child.Loc)
			if err != nil {
				continue
			}
			urls = append(urls, childURLs...)
		}
		if len(urls) > f.maxURLs {
			urls = urls[:f.maxURLs]
		}
		return urls, nil
	default:
		return nil, fmt.Errorf("unrecognized sitemap document at %s", sitemapURL)
	}
}

// fetchChildURLSet fetches one entry of a sitemap index. A child that
// is itself an index is not recursed into further.
func (f *Fetcher) fetchChildURLSet(ctx context.Context, loc string) ([]string, error) {
	root, err := f.fetchXML(ctx, loc)
	if err != nil {
		return nil, err
	}
	doc, ok := root.(*urlSet)
	if !ok {
		return nil, fmt.Errorf("child sitemap %s is not a urlset", loc)
	}
	return f.collectLocs(doc.URLs), nil
}

func (f *Fetcher) collectLocs(entries []urlEntry) []string {
	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		loc := strings.TrimSpace(e.Loc)
		if loc == "" {
			continue
		}
		urls = append(urls, loc)
		if len(urls) >= f.maxURLs {
			break
		}
	}
	return urls
}

// fetchXML fetches sitemapURL and unmarshals it as either a urlset or
// a sitemapindex, returning whichever matched.
func (f *Fetcher) fetchXML(ctx context.Context, sitemapURL string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build sitemap request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap %s returned status %d", sitemapURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read sitemap body: %w", err)
	}
	trimmed := strings.TrimLeft(string(body), " \t\r\n\xef\xbb\xbf")

	var index sitemapIndex
	if err := xml.Unmarshal([]byte(trimmed), &index); err == nil && index.XMLName.Local == "sitemapindex" {
		return &index, nil
	}

	var set urlSet
	if err := xml.Unmarshal([]byte(trimmed), &set); err == nil && set.XMLName.Local == "urlset" {
		return &set, nil
	}

	return nil, fmt.Errorf("sitemap %s is neither a urlset nor a sitemapindex", sitemapURL)
}
