// Package docs registers the OpenAPI document for the records API with swag.
// Regenerate the template with `swag init -g cmd/server/main.go` after
// changing handler annotations.
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
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Healthy", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}},
                    "503": {"description": "A dependency is down", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}}
                }
            }
        },
        "/records": {
            "get": {
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "List records",
                "description": "Return every stored record, unordered",
                "responses": {
                    "200": {"description": "All records", "schema": {"type": "array", "items": {"$ref": "#/definitions/person.Person"}}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/restx.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["text/plain", "application/json"],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Create records from delimited lines",
                "description": "Body is plain text, or a JSON string with Content-Type application/json. Each line holds last name, first name, gender, favorite color and date of birth separated by commas, pipes or spaces.",
                "parameters": [
                    {"description": "Delimited record line(s)", "name": "line", "in": "body", "required": true, "schema": {"type": "string"}}
                ],
                "responses": {
                    "201": {"description": "Last created record", "schema": {"$ref": "#/definitions/person.Person"}},
                    "400": {"description": "Malformed line", "schema": {"$ref": "#/definitions/restx.ErrorResponse"}}
                }
            }
        },
        "/records/json": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Create a record from JSON",
                "parameters": [
                    {"description": "Record with id 0 or omitted", "name": "record", "in": "body", "required": true, "schema": {"$ref": "#/definitions/person.Person"}}
                ],
                "responses": {
                    "201": {"description": "Created record", "schema": {"$ref": "#/definitions/person.Person"}},
                    "400": {"description": "Malformed body or non-zero id", "schema": {"$ref": "#/definitions/restx.ErrorResponse"}}
                }
            }
        },
        "/records/stream": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["records"],
                "summary": "Stream record changes",
                "description": "Server-Sent Events: record.created, record.updated, record.deleted",
                "responses": {
                    "200": {"description": "Event stream"}
                }
            }
        },
        "/records/{key}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Get ordered records or one record",
                "description": "key is one of name, birthdate, gender, or an integer record id",
                "parameters": [
                    {"type": "string", "description": "Order keyword or record id", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Ordered records, or a single record object when key is an id", "schema": {"type": "array", "items": {"$ref": "#/definitions/person.Person"}}},
                    "400": {"description": "Neither an order nor an id", "schema": {"$ref": "#/definitions/restx.ErrorResponse"}},
                    "404": {"description": "Record not found", "schema": {"$ref": "#/definitions/restx.ErrorResponse"}}
                }
            }
        },
        "/records/{id}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Replace a record",
                "parameters": [
                    {"type": "integer", "description": "Record id", "name": "id", "in": "path", "required": true},
                    {"description": "Full record; id must match the path", "name": "record", "in": "body", "required": true, "schema": {"$ref": "#/definitions/person.Person"}}
                ],
                "responses": {
                    "200": {"description": "Updated record", "schema": {"$ref": "#/definitions/person.Person"}},
                    "400": {"description": "Malformed body or id mismatch", "schema": {"$ref": "#/definitions/restx.ErrorResponse"}},
                    "404": {"description": "Record not found", "schema": {"$ref": "#/definitions/restx.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["records"],
                "summary": "Delete a record",
                "parameters": [
                    {"type": "integer", "description": "Record id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "400": {"description": "Malformed id", "schema": {"$ref": "#/definitions/restx.ErrorResponse"}},
                    "404": {"description": "Record not found", "schema": {"$ref": "#/definitions/restx.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.CheckStatus": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "string", "example": "up"}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handlers.CheckStatus"}},
                "records": {"type": "integer"},
                "status": {"type": "string", "example": "healthy"}
            }
        },
        "person.Person": {
            "type": "object",
            "properties": {
                "dateOfBirth": {"type": "string", "format": "date-time"},
                "favoriteColor": {"type": "string"},
                "firstName": {"type": "string"},
                "gender": {"type": "string"},
                "id": {"type": "integer"},
                "lastName": {"type": "string"}
            }
        },
        "restx.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "NOT_FOUND"},
                "message": {"type": "string", "example": "record 3 not found"}
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
	Title:            "People Records API",
	Description:      "Create, list, sort, update and delete person records.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
