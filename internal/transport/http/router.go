package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	sloggin "github.com/samber/slog-gin"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/indexpulse/core/docs"
	"github.com/indexpulse/core/internal/health"
	"github.com/indexpulse/core/internal/repository"
	"github.com/indexpulse/core/internal/transport/http/handler"
	"github.com/indexpulse/core/internal/transport/http/middleware"
)

// Handlers bundles every REST handler the router wires; kept as one
// struct so NewRouter's signature doesn't grow with every new surface.
type Handlers struct {
	Auth       *handler.AuthHandler
	Project    *handler.ProjectHandler
	URL        *handler.URLHandler
	Credit     *handler.CreditHandler
	Credential *handler.CredentialHandler
	Stripe     *handler.StripeHandler
	Sitemap    *handler.SitemapHandler
}

// NewRouter wires the public auth/webhook surface, the authenticated
// project/url/credit surface, the admin-only credential surface, and
// the operational endpoints (health, metrics, swagger).
func NewRouter(h Handlers, users repository.UserRepository, checker *health.Checker, jwtKey []byte, corsOrigins []string, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sloggin.New(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(adaptHTTPMiddleware(corsMiddleware(corsOrigins)))
	r.Use(adaptHTTPMiddleware(httprate.LimitByIP(100, time.Minute)))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, checker.Liveness(c.Request.Context())) })
	r.GET("/readyz", func(c *gin.Context) {
		result := checker.Readiness(c.Request.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, result)
	})
	r.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))))

	r.POST("/auth/magic-link", h.Auth.RequestMagicLink)
	r.GET("/auth/verify", h.Auth.Verify)
	r.POST("/webhooks/stripe", h.Stripe.Handle)

	authed := r.Group("/v1", middleware.Auth(jwtKey), middleware.EnsureUser(users, logger))

	authed.POST("/projects", h.Project.Create)
	authed.GET("/projects", h.Project.List)
	authed.GET("/projects/:id", h.Project.Get)
	authed.PATCH("/projects/:id", h.Project.Update)
	authed.POST("/projects/:id/urls", h.URL.Submit)
	authed.GET("/projects/:id/urls", h.URL.List)
	authed.POST("/projects/:id/import-sitemap", h.Sitemap.Import)
	authed.GET("/urls/:urlID", h.URL.Get)
	authed.GET("/urls/:urlID/logs", h.URL.Logs)
	authed.GET("/credits/balance", h.Credit.Balance)
	authed.GET("/credits/transactions", h.Credit.ListTransactions)

	admin := authed.Group("", middleware.RequireAdmin(users, logger))
	admin.POST("/credentials", h.Credential.Add)
	admin.GET("/credentials", h.Credential.List)
	admin.POST("/credentials/:id/disable", h.Credential.Disable)
	admin.POST("/credentials/:id/enable", h.Credential.Enable)

	return r
}

// adaptHTTPMiddleware lifts a net/http middleware (func(http.Handler)
// http.Handler, the go-chi convention) into a gin.HandlerFunc by
// running it around a terminal handler that hands control back to the
// gin chain, rather than ending the request.
func adaptHTTPMiddleware(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		terminal := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})
		mw(terminal).ServeHTTP(c.Writer, c.Request)
	}
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
	})
}
