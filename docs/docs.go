// Package docs registers the lab server's Swagger document.
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
        "/api/posts": {
            "get": {
                "description": "Returns canned posts in a Reddit listing shape. The bearer token must match the caller's User-Agent.",
                "produces": ["application/json"],
                "tags": ["lab"],
                "summary": "List mock posts",
                "parameters": [
                    {"type": "string", "default": "technology", "description": "Subreddit name", "name": "subreddit", "in": "query"},
                    {"type": "integer", "default": 25, "description": "Maximum number of posts (1-100)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Bearer token", "name": "Authorization", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LabListing"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.HTTPError"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.LabError"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.LabError"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/models.LabError"}}
                }
            }
        },
        "/api/token": {
            "post": {
                "description": "Returns a toy bearer token bound to the caller's User-Agent",
                "produces": ["application/json"],
                "tags": ["lab"],
                "summary": "Issue a lab token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LabToken"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/models.LabError"}}
                }
            }
        }
    },
    "definitions": {
        "models.HTTPError": {
            "type": "object",
            "properties": {
                "code": {"description": "HTTP status code", "type": "integer"},
                "message": {"description": "Error message", "type": "string"}
            }
        },
        "models.LabChild": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/models.LabPost"}
            }
        },
        "models.LabError": {
            "type": "object",
            "properties": {
                "error": {"description": "Machine readable error code (rate_limited, missing_token, invalid_token)", "type": "string"}
            }
        },
        "models.LabListing": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {
                        "children": {"description": "Posts wrapped as listing children", "type": "array", "items": {"$ref": "#/definitions/models.LabChild"}}
                    }
                }
            }
        },
        "models.LabPost": {
            "type": "object",
            "properties": {
                "id": {"description": "Post ID", "type": "string"},
                "subreddit": {"description": "Subreddit the post belongs to", "type": "string"},
                "title": {"description": "Post title", "type": "string"}
            }
        },
        "models.LabToken": {
            "type": "object",
            "properties": {
                "token": {"description": "Bearer token pinned to the caller's User-Agent", "type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Reddit Fetcher Lab API",
	Description:      "Toy token and mock posts endpoints for experimenting with bearer auth and rate limits locally.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
