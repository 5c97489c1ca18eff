package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Study Planner API",
        "description": "Homework and exam planner with live multi-tab sync",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Tabs", "description": "Client tab sessions and live view streams"},
        {"name": "Auth", "description": "Local accounts and the current session"},
        {"name": "Tasks", "description": "Homework tasks"},
        {"name": "Exams", "description": "Exam schedule"},
        {"name": "Calendar", "description": "Day detail and important days"},
        {"name": "Dashboard", "description": "Summary and weekly timetable"},
        {"name": "Notifications", "description": "Due-today reminders"},
        {"name": "Data", "description": "Export and reset"}
    ],
    "paths": {
        "/tabs": {
            "post": {
                "tags": ["Tabs"],
                "summary": "Open a tab",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tabs/{id}": {
            "delete": {
                "tags": ["Tabs"],
                "summary": "Close a tab",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Closed"},
                    "404": {"description": "Unknown tab"}
                }
            }
        },
        "/tabs/{id}/stream": {
            "get": {
                "tags": ["Tabs"],
                "summary": "Stream view frames as server-sent events",
                "produces": ["text/event-stream"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Event stream of Frame objects"}
                }
            }
        },
        "/tabs/{id}/permission": {
            "post": {
                "tags": ["Tabs"],
                "summary": "Grant or revoke reminder delivery for a tab",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PermissionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/signup": {
            "post": {
                "tags": ["Auth"],
                "summary": "Create an account and start a session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Start a session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/logout": {
            "post": {"tags": ["Auth"], "summary": "End the session", "responses": {"204": {"description": "Logged out"}}}
        },
        "/auth/me": {
            "get": {"tags": ["Auth"], "summary": "Current user", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/account/password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Change password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {"204": {"description": "Changed"}}
            }
        },
        "/account": {
            "delete": {"tags": ["Auth"], "summary": "Delete the account and its planner data", "responses": {"204": {"description": "Deleted"}}}
        },
        "/tasks": {
            "get": {
                "tags": ["Tasks"],
                "summary": "List tasks",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["all", "completed", "pending", "overdue"]},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["date-asc", "date-desc", "priority", "subject"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Tasks"],
                "summary": "Create task",
                "parameters": [
                    {"name": "X-Tab-ID", "in": "header", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTaskRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/tasks/stats": {
            "get": {"tags": ["Tasks"], "summary": "Task counts", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/tasks/{id}": {
            "get": {
                "tags": ["Tasks"],
                "summary": "Get task",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Tasks"],
                "summary": "Update task",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTaskRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Tasks"],
                "summary": "Delete task",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/tasks/{id}/toggle": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Flip task completion",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exams": {
            "get": {"tags": ["Exams"], "summary": "List exams", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {
                "tags": ["Exams"],
                "summary": "Create exam",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExamRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exams/upcoming": {
            "get": {"tags": ["Exams"], "summary": "Exams from today on", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/exams/{id}": {
            "get": {
                "tags": ["Exams"],
                "summary": "Get exam",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Exams"],
                "summary": "Update exam",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExamRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Exams"],
                "summary": "Delete exam",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/calendar/days/{date}": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Tasks, exams and importance for one day",
                "parameters": [{"name": "date", "in": "path", "required": true, "type": "string", "format": "date"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/calendar/days/{date}/important": {
            "post": {
                "tags": ["Calendar"],
                "summary": "Toggle a day's important mark",
                "parameters": [{"name": "date", "in": "path", "required": true, "type": "string", "format": "date"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/calendar/important": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Important days in a month",
                "parameters": [
                    {"name": "year", "in": "query", "required": true, "type": "integer"},
                    {"name": "month", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard summary",
                "parameters": [{"name": "date", "in": "query", "type": "string", "format": "date"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/timetable": {
            "get": {"tags": ["Dashboard"], "summary": "Week grid containing date, default today", "parameters": [{"name": "date", "in": "query", "type": "string", "format": "date"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/settings": {
            "get": {"tags": ["Notifications"], "summary": "Get settings", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "put": {
                "tags": ["Notifications"],
                "summary": "Update settings",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Settings"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notifications": {
            "get": {"tags": ["Notifications"], "summary": "Notification log", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Notifications"], "summary": "Clear the log", "responses": {"204": {"description": "Cleared"}}}
        },
        "/notifications/scan": {
            "post": {"tags": ["Notifications"], "summary": "Run a due-today scan now", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/data/export": {
            "get": {"tags": ["Data"], "summary": "Download a JSON export", "produces": ["application/json"], "responses": {"200": {"description": "Attachment"}}}
        },
        "/data/export/{format}": {
            "post": {
                "tags": ["Data"],
                "summary": "Save an export and return a signed link",
                "parameters": [{"name": "format", "in": "path", "required": true, "type": "string", "enum": ["json", "csv", "pdf"]}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/data/download/{token}": {
            "get": {
                "tags": ["Data"],
                "summary": "Download a saved export",
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Attachment"}, "410": {"description": "Link expired"}}
            }
        },
        "/data/reset": {
            "post": {"tags": ["Data"], "summary": "Clear tasks, exams and settings", "responses": {"204": {"description": "Cleared"}}}
        }
    },
    "definitions": {
        "PermissionRequest": {
            "type": "object",
            "properties": {
                "granted": {"type": "boolean"}
            }
        },
        "SignupRequest": {
            "type": "object",
            "required": ["name", "email", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "class": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ChangePasswordRequest": {
            "type": "object",
            "required": ["currentPassword", "newPassword", "confirmPassword"],
            "properties": {
                "currentPassword": {"type": "string"},
                "newPassword": {"type": "string"},
                "confirmPassword": {"type": "string"}
            }
        },
        "CreateTaskRequest": {
            "type": "object",
            "required": ["title", "subject", "date"],
            "properties": {
                "title": {"type": "string"},
                "subject": {"type": "string", "enum": ["math", "science", "english", "history", "other"]},
                "date": {"type": "string", "format": "date"},
                "time": {"type": "string", "example": "14:30"},
                "priority": {"type": "string", "enum": ["high", "medium", "low"]},
                "notes": {"type": "string"}
            }
        },
        "CreateExamRequest": {
            "type": "object",
            "required": ["title", "subject", "date"],
            "properties": {
                "title": {"type": "string"},
                "subject": {"type": "string", "enum": ["math", "science", "english", "history", "other"]},
                "date": {"type": "string", "format": "date"},
                "time": {"type": "string", "example": "09:00"},
                "location": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "Settings": {
            "type": "object",
            "properties": {
                "notifications": {"type": "boolean"}
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
