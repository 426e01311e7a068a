// Package docs registers the OpenAPI spec served at /docs.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "rinkstats"},
        "license": {"name": "MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/seasons": {
            "get": {
                "tags": ["seasons"],
                "summary": "List seasons",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/seasons/current": {
            "get": {
                "tags": ["seasons"],
                "summary": "Current season",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/provider.Season"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/seasons/{seasonID}/divisions": {
            "get": {
                "tags": ["seasons"],
                "summary": "Season divisions",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Season id or current", "name": "seasonID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/seasons/{seasonID}/divisions/{divisionID}/conference/{conferenceID}": {
            "get": {
                "tags": ["players"],
                "summary": "Division player stats",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Season id or current", "name": "seasonID", "in": "path", "required": true},
                    {"type": "integer", "description": "Division id", "name": "divisionID", "in": "path", "required": true},
                    {"type": "integer", "description": "Conference id", "name": "conferenceID", "in": "path", "required": true},
                    {"type": "boolean", "description": "Bypass caches", "name": "reload", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/seasons/{seasonID}/teams": {
            "get": {
                "tags": ["teams"],
                "summary": "Season team stats",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Season id or current", "name": "seasonID", "in": "path", "required": true},
                    {"type": "string", "description": "Comma-separated team ids", "name": "team_ids", "in": "query"},
                    {"type": "string", "description": "Exact team name", "name": "name", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/seasons/{seasonID}/teams/{teamID}": {
            "get": {
                "tags": ["teams"],
                "summary": "Team detail",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Season id or current", "name": "seasonID", "in": "path", "required": true},
                    {"type": "integer", "description": "Team id", "name": "teamID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/games": {
            "get": {
                "tags": ["games"],
                "summary": "List games",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Season id or current", "name": "season_id", "in": "query"},
                    {"type": "string", "description": "Comma-separated team ids", "name": "team_ids", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/games/{gameID}": {
            "get": {
                "tags": ["games"],
                "summary": "Game detail",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Game id", "name": "gameID", "in": "path", "required": true},
                    {"type": "boolean", "description": "Scrape stats now when missing", "name": "reload", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/games/{gameID}/livebarn": {
            "get": {
                "tags": ["games"],
                "summary": "Game video links",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Game id", "name": "gameID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "provider.Season": {
            "type": "object",
            "properties": {
                "season_id": {"type": "integer"},
                "name": {"type": "string"}
            }
        },
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "SIAHL Stats API",
	Description:      "Seasons, standings, schedules and box scores scraped from the league website.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
