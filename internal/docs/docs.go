// Package docs registers the OpenAPI description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{.Description}}",
        "version": "{{.Version}}"
    },
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "consumes": ["application/json"],
    "produces": ["application/json"],
    "paths": {
        "/classes": {
            "get": {
                "summary": "List upcoming classes",
                "parameters": [
                    {"name": "class_type", "in": "query", "type": "string"},
                    {"name": "instructor", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "to", "in": "query", "type": "string", "format": "date-time"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ClassList"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "post": {
                "summary": "Create a class",
                "parameters": [
                    {"name": "class", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FitnessClass"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/FitnessClassEnvelope"}},
                    "409": {"description": "Overlapping class with the same name", "schema": {"$ref": "#/definitions/Error"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/classes/id/{id}": {
            "get": {
                "summary": "Get a class",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/FitnessClassEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/bookings": {
            "get": {
                "summary": "List bookings of a client",
                "parameters": [
                    {"name": "X-Client-Email", "in": "header", "required": true, "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/BookingList"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "post": {
                "summary": "Book a spot",
                "parameters": [
                    {"name": "Idempotency-Key", "in": "header", "type": "string"},
                    {"name": "booking", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Confirmed", "schema": {"$ref": "#/definitions/BookingEnvelope"}},
                    "404": {"description": "Class not found", "schema": {"$ref": "#/definitions/Error"}},
                    "409": {"description": "CLASS_FULL or DUPLICATE_BOOKING", "schema": {"$ref": "#/definitions/Error"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Error"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/bookings/id/{id}": {
            "get": {
                "summary": "Get a booking",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/BookingEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/bookings/id/{id}/cancel": {
            "post": {
                "summary": "Cancel a confirmed booking and release its spot",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/BookingEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}},
                    "409": {"description": "INVALID_TRANSITION", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/bookings/id/{id}/complete": {
            "post": {
                "summary": "Mark a confirmed booking as attended",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Completed", "schema": {"$ref": "#/definitions/BookingEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}},
                    "409": {"description": "INVALID_TRANSITION", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/bookings/id/{id}/ticket": {
            "get": {
                "summary": "Download the check-in pass of a confirmed booking",
                "produces": ["application/pdf"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "PDF ticket", "schema": {"type": "file"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}},
                    "409": {"description": "Booking is not confirmed", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        }
    },
    "definitions": {
        "Error": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object"}
            }
        },
        "FitnessClass": {
            "type": "object",
            "required": ["name", "class_type", "instructor", "start_time", "end_time", "capacity"],
            "properties": {
                "id": {"type": "string", "readOnly": true},
                "name": {"type": "string"},
                "class_type": {"type": "string"},
                "instructor": {"type": "string"},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"},
                "capacity": {"type": "integer"},
                "available_spots": {"type": "integer", "readOnly": true},
                "timezone": {"type": "string"},
                "created_by": {"type": "string"},
                "status": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time", "readOnly": true},
                "updated_at": {"type": "string", "format": "date-time", "readOnly": true}
            }
        },
        "FitnessClassEnvelope": {
            "type": "object",
            "properties": {"data": {"$ref": "#/definitions/FitnessClass"}}
        },
        "ClassList": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/FitnessClass"}},
                "count": {"type": "integer"}
            }
        },
        "BookingRequest": {
            "type": "object",
            "required": ["class_id", "client_name", "client_email"],
            "properties": {
                "class_id": {"type": "string"},
                "client_name": {"type": "string"},
                "client_email": {"type": "string", "format": "email"}
            }
        },
        "Booking": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "class_id": {"type": "string"},
                "client_name": {"type": "string"},
                "client_email": {"type": "string"},
                "booking_time": {"type": "string", "format": "date-time"},
                "status": {"type": "string", "enum": ["confirmed", "cancelled", "completed"]},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "BookingEnvelope": {
            "type": "object",
            "properties": {"data": {"$ref": "#/definitions/Booking"}}
        },
        "BookingView": {
            "allOf": [
                {"$ref": "#/definitions/Booking"},
                {
                    "type": "object",
                    "properties": {
                        "class_name": {"type": "string"},
                        "class_type": {"type": "string"},
                        "instructor": {"type": "string"},
                        "start_time": {"type": "string", "format": "date-time"},
                        "end_time": {"type": "string", "format": "date-time"},
                        "timezone": {"type": "string"}
                    }
                }
            ]
        },
        "BookingList": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/BookingView"}},
                "count": {"type": "integer"}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Fitness Studio API",
	Description:      "Class scheduling and capacity-safe booking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
