// Package docs holds the generated OpenAPI document for the REST
// surface, registered with swaggo/swag so internal/transport/http can
// serve it at /swagger/doc.json via swaggo/http-swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{.Description}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/magic-link": { "post": { "summary": "Request a magic link", "responses": { "200": { "description": "ok" } } } },
        "/auth/verify": { "get": { "summary": "Exchange a magic-link token for a session", "responses": { "200": { "description": "ok" } } } },
        "/v1/projects": {
            "get": { "summary": "List the caller's projects", "responses": { "200": { "description": "ok" } } },
            "post": { "summary": "Create a project", "responses": { "201": { "description": "created" } } }
        },
        "/v1/projects/{id}": {
            "get": { "summary": "Get a project", "responses": { "200": { "description": "ok" } } },
            "patch": { "summary": "Update a project", "responses": { "200": { "description": "ok" } } }
        },
        "/v1/projects/{id}/urls": {
            "get": { "summary": "List a project's URLs", "responses": { "200": { "description": "ok" } } },
            "post": { "summary": "Submit URLs for indexation", "responses": { "201": { "description": "created" } } }
        },
        "/v1/projects/{id}/import-sitemap": {
            "post": { "summary": "Import a project's sitemap URLs", "responses": { "201": { "description": "created" } } }
        },
        "/v1/urls/{urlID}": { "get": { "summary": "Get a URL", "responses": { "200": { "description": "ok" } } } },
        "/v1/urls/{urlID}/logs": { "get": { "summary": "List a URL's indexing log", "responses": { "200": { "description": "ok" } } } },
        "/v1/credits/balance": { "get": { "summary": "Get the caller's credit balance", "responses": { "200": { "description": "ok" } } } },
        "/v1/credits/transactions": { "get": { "summary": "List the caller's credit transactions", "responses": { "200": { "description": "ok" } } } },
        "/v1/credentials": {
            "get": { "summary": "List Search Console credentials (admin)", "responses": { "200": { "description": "ok" } } },
            "post": { "summary": "Add a Search Console credential (admin)", "responses": { "201": { "description": "created" } } }
        },
        "/webhooks/stripe": { "post": { "summary": "Stripe webhook receiver", "responses": { "200": { "description": "ok" } } } }
    }
}`

// SwaggerInfo holds exported Swagger Info so the env-driven host/base
// path overrides in cmd/api can adjust it before the handler starts
// serving.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "indexpulse API",
	Description:      "Multi-channel URL indexation service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
