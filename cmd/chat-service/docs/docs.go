// Package docs holds the OpenAPI description of the admin API served under
// /swagger. Regenerate with:
//
//	swag init -g main.go -d cmd/chat-service,internal/api -o cmd/chat-service/docs
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
        "/message-types": {
            "get": {
                "description": "Registry in classification order. OTHER, which no check declares, comes last.",
                "produces": ["application/json"],
                "tags": ["message-types"],
                "summary": "List message types",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/api.MessageTypeResponse"}}
                    }
                }
            }
        },
        "/state": {
            "get": {
                "produces": ["application/json"],
                "tags": ["state"],
                "summary": "Current game state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/state.State"}}
                }
            }
        },
        "/streamer": {
            "get": {
                "produces": ["application/json"],
                "tags": ["streamer"],
                "summary": "Get streamer mode settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/streamer.Settings"}}
                }
            },
            "put": {
                "description": "Applies locally and publishes a streamer_settings_updated event to the other instances.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["streamer"],
                "summary": "Replace streamer mode settings",
                "parameters": [
                    {
                        "description": "Streamer settings",
                        "name": "settings",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/streamer.Settings"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/streamer.Settings"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/debug": {
            "get": {
                "produces": ["application/json"],
                "tags": ["debug"],
                "summary": "Get debug mode",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "boolean"}}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["debug"],
                "summary": "Toggle debug mode",
                "parameters": [
                    {
                        "description": "Debug mode",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/api.debugModeRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "boolean"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/rules": {
            "get": {
                "produces": ["application/json"],
                "tags": ["hide-rules"],
                "summary": "List active hide rules",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/finalizers.HideRule"}}}
                }
            }
        },
        "/rules/reload": {
            "post": {
                "produces": ["application/json"],
                "tags": ["hide-rules"],
                "summary": "Reload hide rules from their source",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/rules/validate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["hide-rules"],
                "summary": "Validate a CEL hide expression",
                "parameters": [
                    {
                        "description": "Expression",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/api.validateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/rules/examples": {
            "get": {
                "produces": ["application/json"],
                "tags": ["hide-rules"],
                "summary": "Example hide expressions",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/api.exampleResponse"}}}
                }
            }
        },
        "/rules/stored": {
            "get": {
                "description": "Only registered when rules are stored in PostgreSQL.",
                "produces": ["application/json"],
                "tags": ["hide-rules"],
                "summary": "List stored hide rules",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/finalizers.HideRule"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/rules/stored/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["hide-rules"],
                "summary": "Get a stored hide rule",
                "parameters": [
                    {"type": "string", "description": "Rule ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/finalizers.HideRule"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}}
                }
            },
            "put": {
                "description": "The expression is compiled before storing. Enabled defaults to true.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["hide-rules"],
                "summary": "Create or replace a stored hide rule",
                "parameters": [
                    {"type": "string", "description": "Rule ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Hide rule",
                        "name": "rule",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/api.putRuleRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/finalizers.HideRule"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": true}}
                }
            },
            "delete": {
                "tags": ["hide-rules"],
                "summary": "Delete a stored hide rule",
                "parameters": [
                    {"type": "string", "description": "Rule ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/diagnostics/cancelled": {
            "get": {
                "description": "Only registered when the diagnostics archive is enabled.",
                "produces": ["application/json"],
                "tags": ["diagnostics"],
                "summary": "Recently cancelled messages",
                "parameters": [
                    {"type": "integer", "description": "Maximum records (default 100, capped at 1000)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/diagnostics.Record"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/version": {
            "get": {
                "produces": ["application/json"],
                "tags": ["version"],
                "summary": "Running and latest released version",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/version.Info"}}
                }
            }
        }
    },
    "definitions": {
        "api.MessageTypeResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "has_sound": {"type": "boolean"},
                "line_count": {"type": "integer"},
                "hide_category": {"type": "string"},
                "position": {"type": "integer"}
            }
        },
        "api.debugModeRequest": {
            "type": "object",
            "required": ["enabled"],
            "properties": {
                "enabled": {"type": "boolean"}
            }
        },
        "api.validateRequest": {
            "type": "object",
            "required": ["expression"],
            "properties": {
                "expression": {"type": "string"}
            }
        },
        "api.exampleResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "expression": {"type": "string"}
            }
        },
        "api.putRuleRequest": {
            "type": "object",
            "required": ["expression", "name"],
            "properties": {
                "name": {"type": "string"},
                "expression": {"type": "string"},
                "priority": {"type": "integer"},
                "enabled": {"type": "boolean"}
            }
        },
        "diagnostics.Record": {
            "type": "object",
            "properties": {
                "event_id": {"type": "string"},
                "type": {"type": "string"},
                "text": {"type": "string"},
                "source": {"type": "string"},
                "cancelled_at": {"type": "string"}
            }
        },
        "finalizers.HideRule": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "expression": {"type": "string"},
                "priority": {"type": "integer"},
                "enabled": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "state.State": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "enum": ["unknown", "spawn", "play", "build", "dev"]},
                "node": {"type": "string"},
                "plot_id": {"type": "integer"},
                "plot_name": {"type": "string"},
                "plot_owner": {"type": "string"},
                "in_beta": {"type": "boolean"},
                "lagslayer_enabled": {"type": "boolean"},
                "updated_at": {"type": "string"}
            }
        },
        "streamer.Settings": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "hide_direct_messages": {"type": "boolean"},
                "hide_support": {"type": "boolean"},
                "hide_plot_ads": {"type": "boolean"},
                "hide_plot_boosts": {"type": "boolean"},
                "exemptions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "version.Info": {
            "type": "object",
            "properties": {
                "current": {"type": "integer"},
                "latest": {"type": "integer"},
                "update_available": {"type": "boolean"},
                "checked_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "DiamondFire Chat Service API",
	Description:      "Admin API for the chat classification pipeline: message types, game state, streamer mode, hide rules and diagnostics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
