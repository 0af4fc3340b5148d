package sitemap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchURLReadsURLSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/a</loc></url>
  <url><loc>https://example.com/b</loc></url>
</urlset>`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), 100)
	urls, err := f.FetchURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchURL: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://example.com/a" || urls[1] != "https://example.com/b" {
		t.Fatalf("unexpected urls: %v", urls)
	}
}

func TestFetchURLRecursesIntoIndex(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap_index.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>CHILD_URL/child.xml</loc></sitemap>
</sitemapindex>`))
	})
	mux.HandleFunc("/child.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/child-page</loc></url>
</urlset>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	// rewrite placeholder now that we know the server's base URL
	mux.HandleFunc("/sitemap_index_real.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>` + srv.URL + `/child.xml</loc></sitemap>
</sitemapindex>`))
	})

	f := NewFetcher(srv.Client(), 100)
	urls, err := f.FetchURL(context.Background(), srv.URL+"/sitemap_index_real.xml")
	if err != nil {
		t.Fatalf("FetchURL: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://example.com/child-page" {
		t.Fatalf("unexpected urls: %v", urls)
	}
}

func TestFetchURLCapsAtMaxURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/a</loc></url>
  <url><loc>https://example.com/b</loc></url>
  <url><loc>https://example.com/c</loc></url>
</urlset>`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), 2)
	urls, err := f.FetchURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchURL: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d", len(urls))
	}
}

func TestDiscoverAndFetchReturnsErrWhenNoCandidateMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), 100)
	_, err := f.DiscoverAndFetch(context.Background(), srv.URL)
	if err != ErrNoSitemapFound {
		t.Fatalf("expected ErrNoSitemapFound, got %v", err)
	}
}
