// seed inserts a test user, a project, and a batch of URLs into the
// local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/infrastructure/postgres"
)

const seedUserEmail = "dev@indexpulse.local"

var seedURLs = []string{
	"https://example.com/",
	"https://example.com/blog/post-1",
	"https://example.com/blog/post-2",
	"https://example.com/pricing",
	"https://example.com/docs/getting-started",
	"https://example.com/docs/api-reference",
	"https://example.com/about",
	"https://example.com/careers",
	"https://example.com/blog/post-3",
	"https://example.com/changelog",
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	projects := postgres.NewProjectRepository(pool)
	urls := postgres.NewURLRepository(pool)
	credits := postgres.NewCreditRepository(pool)

	user, err := users.FindOrCreate(ctx, seedUserEmail)
	if err != nil {
		log.Fatalf("find or create user: %v", err)
	}

	if _, err := credits.Grant(ctx, user.ID, 500, domain.TransactionBonus); err != nil {
		log.Fatalf("grant seed credits: %v", err)
	}

	project := &domain.Project{
		OwnerID:       user.ID,
		MainDomain:    "https://example.com",
		NotifyByEmail: false,
	}
	if err := projects.Create(ctx, project); err != nil {
		log.Fatalf("create project: %v", err)
	}

	var inserted int
	var urlIDs []string
	for _, text := range seedURLs {
		u := &domain.URL{
			ProjectRef: project.ID,
			Text:       text,
			Status:     domain.URLStatusPending,
		}
		if err := urls.Create(ctx, u); err != nil {
			log.Fatalf("insert url %s: %v", text, err)
		}
		urlIDs = append(urlIDs, u.ID)
		inserted++
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User ID:       %s  (%s)\n", user.ID, seedUserEmail)
	fmt.Printf("  Project ID:    %s  (%s)\n", project.ID, project.MainDomain)
	fmt.Printf("  Credits:       500\n")
	fmt.Printf("  URLs created:  %d\n", inserted)
	fmt.Println()

	if len(urlIDs) > 0 {
		fmt.Println("  Sample URL IDs:")
		limit := 5
		if len(urlIDs) < limit {
			limit = len(urlIDs)
		}
		for _, id := range urlIDs[:limit] {
			fmt.Printf("    %s\n", id)
		}
	}

	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — request a magic link for the seed user:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/auth/magic-link -d '{\"email\":%q}'\n", seedUserEmail)
	fmt.Println()
	fmt.Println("  Step 2 — submit the project's URLs for indexation:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/v1/projects/%s/urls \\\n", project.ID)
	fmt.Println(`      -H "Authorization: Bearer $JWT" -d '{"urls":["https://example.com/new-page"]}'`)
	fmt.Println()
	fmt.Println("  Step 3 — wait for the worker to dispatch and verify, then check status:")
	fmt.Println()
	fmt.Printf("    curl -s http://localhost:8080/v1/projects/%s/urls -H \"Authorization: Bearer $JWT\"\n", project.ID)
}
