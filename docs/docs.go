// Package docs holds the swagger document served at /swagger/*.
// Regenerate with: swag init -g cmd/evapod/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/users/register": {
            "post": {
                "tags": ["Users"],
                "summary": "Register a new account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/users/login": {
            "post": {
                "tags": ["Users"],
                "summary": "Start login and email a one-time code",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/users/verifyOtp": {
            "post": {
                "tags": ["Users"],
                "summary": "Complete login with the emailed code",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/reports": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Reports"],
                "summary": "List reports visible to the caller",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/dashboard-stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Dashboard"],
                "summary": "Aggregate counts for the caller's scope",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        },
        "CSRFToken": {
            "type": "apiKey",
            "name": "X-CSRF-Token",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "EVAPOD API",
	Description:      "Evangelism reporting and fellowship hierarchy API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
