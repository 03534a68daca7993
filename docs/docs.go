// Package docs registers the OpenAPI description served at /swagger when
// SWAGGER_ENABLED is set. Regenerate with `swag init -g cmd/server/main.go`.
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
                "tags": ["Health"],
                "summary": "Liveness probe",
                "operationId": "liveness",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Service status",
                "operationId": "health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}}
                }
            }
        },
        "/api/health/db": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Database connectivity",
                "operationId": "dbHealth",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DBHealthResponse"}},
                    "503": {"description": "Database unreachable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/chat": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Usage note for the chat endpoint",
                "operationId": "chatUsage",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.UsageNote"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Answer a guest message",
                "operationId": "postChat",
                "parameters": [
                    {"description": "Guest message", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ChatResponse"}},
                    "400": {"description": "Empty message or bad JSON", "schema": {"$ref": "#/definitions/handlers.ChatResponse"}},
                    "401": {"description": "Unknown hotel or wrong key", "schema": {"$ref": "#/definitions/handlers.ChatResponse"}},
                    "404": {"description": "Hotel profile missing", "schema": {"$ref": "#/definitions/handlers.ChatResponse"}},
                    "413": {"description": "Message too long", "schema": {"$ref": "#/definitions/handlers.ChatResponse"}},
                    "429": {"description": "Rate limit or daily AI limit", "schema": {"$ref": "#/definitions/handlers.ChatResponse"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/handlers.ChatResponse"}}
                }
            }
        },
        "/api/events": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Events"],
                "summary": "Record a widget event",
                "operationId": "trackEvent",
                "parameters": [
                    {"type": "string", "description": "Deduplication key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Event", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.EventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.EventResponse"}},
                    "400": {"description": "Missing session or unknown event type", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/analytics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Message analytics",
                "operationId": "getAnalytics",
                "parameters": [
                    {"$ref": "#/parameters/hotelID"},
                    {"$ref": "#/parameters/hotelKey"},
                    {"$ref": "#/parameters/days"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/analytics/summary": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Plan usage summary",
                "operationId": "getAnalyticsSummary",
                "parameters": [
                    {"$ref": "#/parameters/hotelID"},
                    {"$ref": "#/parameters/hotelKey"},
                    {"$ref": "#/parameters/days"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Hotel not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/dashboard/overview": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Dashboard overview",
                "operationId": "getDashboardOverview",
                "parameters": [
                    {"$ref": "#/parameters/hotelID"},
                    {"$ref": "#/parameters/hotelKey"},
                    {"$ref": "#/parameters/days"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/conversations/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Recently active conversations",
                "operationId": "getLiveConversations",
                "parameters": [
                    {"$ref": "#/parameters/hotelID"},
                    {"$ref": "#/parameters/hotelKey"},
                    {"type": "integer", "default": 30, "minimum": 1, "maximum": 1440, "name": "minutes", "in": "query"},
                    {"type": "integer", "default": 40, "minimum": 1, "maximum": 200, "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "parameters": {
        "hotelID": {"type": "string", "name": "hotel_id", "in": "query", "required": true},
        "hotelKey": {"type": "string", "name": "hotel_key", "in": "query", "required": true},
        "days": {"type": "integer", "default": 7, "minimum": 1, "maximum": 90, "name": "days", "in": "query"}
    },
    "definitions": {
        "handlers.ChatRequest": {
            "type": "object",
            "properties": {
                "hotel_id": {"type": "string", "example": "demo-hotel"},
                "hotel_key": {"type": "string", "example": "demo_key_123"},
                "session_id": {"type": "string", "example": "s-8f2c"},
                "message": {"type": "string", "example": "What time is check-in?"}
            }
        },
        "handlers.ChatResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "reply": {"type": "string"},
                "source": {"type": "string", "enum": ["faq", "faq_db", "openai", "dummy", "limit", "auth", "hotel"]},
                "error": {"type": "string"}
            }
        },
        "handlers.UsageNote": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean", "example": true},
                "note": {"type": "string", "example": "Use POST /api/chat"}
            }
        },
        "handlers.EventRequest": {
            "type": "object",
            "properties": {
                "hotel_id": {"type": "string"},
                "hotel_key": {"type": "string"},
                "session_id": {"type": "string"},
                "event_type": {"type": "string", "enum": ["booking_click", "lead_created", "widget_open", "widget_close"]},
                "meta": {"type": "object"}
            }
        },
        "handlers.EventResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "event_id": {"type": "string"},
                "replayed": {"type": "boolean"}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "hasOpenAIKey": {"type": "boolean"},
                "model": {"type": "string"},
                "counterBackend": {"type": "string"}
            }
        },
        "handlers.DBHealthResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "dbTime": {"type": "string", "format": "date-time"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean", "example": false},
                "request_id": {"type": "string"},
                "code": {"type": "string", "example": "unauthorized"},
                "error": {"type": "string", "example": "Unauthorized"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Hotel Concierge API",
	Description:      "Multi-tenant hotel chat widget backend: FAQ rules, hotel FAQ tables, plan-gated language model fallback, and staff dashboards.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
