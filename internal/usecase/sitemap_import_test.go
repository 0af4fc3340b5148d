package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/indexpulse/core/internal/domain"
)

type fakeSitemapFetcher struct {
	discoverAndFetch func(ctx context.Context, domain string) ([]string, error)
	fetchURL         func(ctx context.Context, sitemapURL string) ([]string, error)
}

func (f *fakeSitemapFetcher) DiscoverAndFetch(ctx context.Context, domain string) ([]string, error) {
	return f.discoverAndFetch(ctx, domain)
}

func (f *fakeSitemapFetcher) FetchURL(ctx context.Context, sitemapURL string) ([]string, error) {
	return f.fetchURL(ctx, sitemapURL)
}

type fakeURLSubmitter struct {
	submitURLs func(ctx context.Context, userID, projectID string, texts []string, cfg *domain.IndexNowConfig) ([]*domain.URL, error)
}

func (f *fakeURLSubmitter) SubmitURLs(ctx context.Context, userID, projectID string, texts []string, cfg *domain.IndexNowConfig) ([]*domain.URL, error) {
	return f.submitURLs(ctx, userID, projectID, texts, cfg)
}

type fakeSitemapProjectRepo struct {
	getByID func(ctx context.Context, id string) (*domain.Project, error)
}

func (r *fakeSitemapProjectRepo) Create(context.Context, *domain.Project) error { return nil }
func (r *fakeSitemapProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return r.getByID(ctx, id)
}
func (r *fakeSitemapProjectRepo) ListByOwner(context.Context, string, int, string) ([]*domain.Project, string, error) {
	return nil, "", nil
}
func (r *fakeSitemapProjectRepo) Update(context.Context, *domain.Project) error { return nil }

const (
	sitemapTestUserID    = "user-1"
	sitemapTestProjectID = "project-1"
)

func testProject() *domain.Project {
	return &domain.Project{ID: sitemapTestProjectID, OwnerID: sitemapTestUserID, MainDomain: "https://example.com"}
}

func TestImportFromProjectDomainDiscoversWhenNoSitemapURLGiven(t *testing.T) {
	var discoveredDomain string
	fetcher := &fakeSitemapFetcher{
		discoverAndFetch: func(_ context.Context, d string) ([]string, error) {
			discoveredDomain = d
			return []string{"https://example.com/a", "https://example.com/b"}, nil
		},
	}
	var submittedTexts []string
	dispatcher := &fakeURLSubmitter{
		submitURLs: func(_ context.Context, _, _ string, texts []string, _ *domain.IndexNowConfig) ([]*domain.URL, error) {
			submittedTexts = texts
			return []*domain.URL{{ID: "url-1"}, {ID: "url-2"}}, nil
		},
	}
	projects := &fakeSitemapProjectRepo{getByID: func(context.Context, string) (*domain.Project, error) { return testProject(), nil }}

	importer := &SitemapImporter{fetcher: fetcher, dispatcher: dispatcher, projects: projects}

	urls, err := importer.ImportFromProjectDomain(context.Background(), sitemapTestUserID, sitemapTestProjectID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if discoveredDomain != "https://example.com" {
		t.Errorf("discovered domain = %q, want project's main domain", discoveredDomain)
	}
	if len(submittedTexts) != 2 {
		t.Fatalf("submitted %d texts, want 2", len(submittedTexts))
	}
	if len(urls) != 2 {
		t.Fatalf("got %d urls, want 2", len(urls))
	}
}

func TestImportFromProjectDomainFetchesExplicitSitemapURL(t *testing.T) {
	var fetchedURL string
	fetcher := &fakeSitemapFetcher{
		discoverAndFetch: func(context.Context, string) ([]string, error) {
			t.Fatal("should not discover when an explicit sitemap URL is given")
			return nil, nil
		},
		fetchURL: func(_ context.Context, u string) ([]string, error) {
			fetchedURL = u
			return []string{"https://example.com/a"}, nil
		},
	}
	dispatcher := &fakeURLSubmitter{
		submitURLs: func(_ context.Context, _, _ string, _ []string, _ *domain.IndexNowConfig) ([]*domain.URL, error) {
			return []*domain.URL{{ID: "url-1"}}, nil
		},
	}
	projects := &fakeSitemapProjectRepo{getByID: func(context.Context, string) (*domain.Project, error) { return testProject(), nil }}

	importer := &SitemapImporter{fetcher: fetcher, dispatcher: dispatcher, projects: projects}

	const explicit = "https://example.com/custom-sitemap.xml"
	if _, err := importer.ImportFromProjectDomain(context.Background(), sitemapTestUserID, sitemapTestProjectID, explicit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetchedURL != explicit {
		t.Errorf("fetched URL = %q, want %q", fetchedURL, explicit)
	}
}

func TestImportFromProjectDomainRejectsNonOwner(t *testing.T) {
	fetcher := &fakeSitemapFetcher{}
	dispatcher := &fakeURLSubmitter{
		submitURLs: func(context.Context, string, string, []string, *domain.IndexNowConfig) ([]*domain.URL, error) {
			t.Fatal("should not dispatch when the caller doesn't own the project")
			return nil, nil
		},
	}
	projects := &fakeSitemapProjectRepo{getByID: func(context.Context, string) (*domain.Project, error) { return testProject(), nil }}

	importer := &SitemapImporter{fetcher: fetcher, dispatcher: dispatcher, projects: projects}

	_, err := importer.ImportFromProjectDomain(context.Background(), "someone-else", sitemapTestProjectID, "")
	if !errors.Is(err, domain.ErrProjectNotFound) {
		t.Errorf("want ErrProjectNotFound, got %v", err)
	}
}

func TestImportFromProjectDomainReturnsNilWhenSitemapEmpty(t *testing.T) {
	fetcher := &fakeSitemapFetcher{
		discoverAndFetch: func(context.Context, string) ([]string, error) { return nil, nil },
	}
	dispatcher := &fakeURLSubmitter{
		submitURLs: func(context.Context, string, string, []string, *domain.IndexNowConfig) ([]*domain.URL, error) {
			t.Fatal("should not dispatch when the sitemap has no URLs")
			return nil, nil
		},
	}
	projects := &fakeSitemapProjectRepo{getByID: func(context.Context, string) (*domain.Project, error) { return testProject(), nil }}

	importer := &SitemapImporter{fetcher: fetcher, dispatcher: dispatcher, projects: projects}

	urls, err := importer.ImportFromProjectDomain(context.Background(), sitemapTestUserID, sitemapTestProjectID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if urls != nil {
		t.Fatalf("want nil urls, got %v", urls)
	}
}
