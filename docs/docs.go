// Package docs registers the generated OpenAPI specification with the
// swagger handler. Regenerate with `swag init` after changing handler
// annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Service healthy"},
                    "503": {"description": "Backing store unreachable"}
                }
            }
        },
        "/api/analytics/report": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Analytics"],
                "summary": "Baseline support report",
                "responses": {
                    "200": {"description": "Aggregated report"},
                    "502": {"description": "Baseline dataset unavailable"},
                    "500": {"description": "Internal server error"}
                }
            }
        },
        "/api/analytics/raw": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Analytics"],
                "summary": "Raw counter data",
                "responses": {
                    "200": {"description": "Per-day shard histograms"},
                    "500": {"description": "Internal server error"}
                }
            }
        },
        "/api/analytics": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["Analytics"],
                "summary": "Delete all captured data",
                "responses": {
                    "200": {"description": "Deletion confirmed"},
                    "500": {"description": "Internal server error"}
                }
            }
        },
        "/api/settings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Settings"],
                "summary": "Get site settings",
                "responses": {
                    "200": {"description": "Current settings"}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Settings"],
                "summary": "Update site settings",
                "responses": {
                    "200": {"description": "Saved settings"},
                    "400": {"description": "Invalid request body"},
                    "500": {"description": "Failed to persist settings"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Baseline Browser Analytics API",
	Description:      "Per-day browser histogram collection and Baseline feature-support reporting.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
