package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Agenda API",
        "description": "Scheduling and announcement dashboard backend",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login for dashboard users"},
        {"name": "Activities", "description": "Scheduled activity (jadwal) management"},
        {"name": "Announcements", "description": "Dated announcements (pengumuman)"},
        {"name": "Reports", "description": "Recency views and PDF/CSV exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token and role"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/activities": {
            "get": {
                "tags": ["Activities"],
                "summary": "List activities",
                "responses": {
                    "200": {"description": "Activities in insertion order"}
                }
            },
            "post": {
                "tags": ["Activities"],
                "summary": "Create activity",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ActivityPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/api/activities/{id}": {
            "get": {
                "tags": ["Activities"],
                "summary": "Get activity",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Activity"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Activities"],
                "summary": "Revise activity",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ActivityPayload"}}
                ],
                "responses": {
                    "200": {"description": "Updated"},
                    "400": {"description": "Validation error"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Activities"],
                "summary": "Delete activity",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/announcements": {
            "get": {
                "tags": ["Announcements"],
                "summary": "List announcements",
                "responses": {
                    "200": {"description": "Announcements in insertion order"}
                }
            },
            "post": {
                "tags": ["Announcements"],
                "summary": "Post announcement",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnnouncementPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/api/announcements/{id}": {
            "delete": {
                "tags": ["Announcements"],
                "summary": "Delete announcement",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/reports/recent": {
            "get": {
                "tags": ["Reports"],
                "summary": "Recent activities for the caller's cadence",
                "responses": {
                    "200": {"description": "Filtered activities"}
                }
            }
        },
        "/api/reports/download/{format}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download monthly report",
                "parameters": [
                    {"name": "format", "in": "path", "required": true, "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "month", "in": "query", "required": false, "type": "string", "description": "YYYY-MM"}
                ],
                "responses": {
                    "200": {"description": "Report artifact"},
                    "400": {"description": "Unsupported format or bad month"},
                    "403": {"description": "Forbidden"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ActivityPayload": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "start_date": {"type": "string", "example": "2024-05-01"},
                "end_date": {"type": "string", "example": "2024-05-01"},
                "start_time": {"type": "string", "example": "08:00"},
                "end_time": {"type": "string", "example": "10:00"}
            }
        },
        "AnnouncementPayload": {
            "type": "object",
            "required": ["date", "description"],
            "properties": {
                "date": {"type": "string", "example": "2024-05-01"},
                "description": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
