// Package docs holds the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/signup": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a donor or NGO account",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.SignUpRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.AuthResponse"}}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/auth/signin": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign in with email and password",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.SignInRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AuthResponse"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["auth"],
                "summary": "Rotate a refresh token",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AuthResponse"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/signout": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign out and revoke the refresh token",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/session": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["session"],
                "summary": "Current session and landing view",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionResponse"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/donations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["donations"],
                "summary": "List donations",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DonationListResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["donations"],
                "summary": "Post a donation",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.CreateDonationRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.DonationResponse"}}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}
            }
        },
        "/donations/{id}/claim": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["donations"],
                "summary": "Claim an available donation",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DonationResponse"}}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}
            }
        },
        "/donations/{id}/collect": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["donations"],
                "summary": "Mark a claimed donation as collected",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DonationResponse"}}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}
            }
        },
        "/notifications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "List notifications, newest first",
                "parameters": [{"type": "boolean", "name": "unread_only", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.NotificationListResponse"}}}
            }
        },
        "/notifications/read-all": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Mark every notification as read",
                "responses": {"200": {"description": "OK"}, "207": {"description": "Some notifications could not be updated"}}
            }
        }
    },
    "definitions": {
        "dto.SignUpRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["donor", "ngo"]},
                "organization_name": {"type": "string"}
            }
        },
        "dto.SignInRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "from": {"type": "string"}}
        },
        "dto.SessionResponse": {
            "type": "object",
            "properties": {
                "identity_key": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string"},
                "landing": {"type": "string"},
                "redirect": {"type": "string"}
            }
        },
        "dto.AuthResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_at": {"type": "string"},
                "session": {"$ref": "#/definitions/dto.SessionResponse"},
                "redirect": {"type": "string"}
            }
        },
        "dto.CreateDonationRequest": {
            "type": "object",
            "properties": {
                "food_item": {"type": "string"},
                "quantity": {"type": "string"},
                "category": {"type": "string"},
                "expiry_date": {"type": "string", "example": "2026-01-31"},
                "pickup_location": {"type": "string"},
                "contact_info": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "dto.DonationResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "donor_id": {"type": "string"},
                "food_item": {"type": "string"},
                "quantity": {"type": "string"},
                "category": {"type": "string"},
                "expiry_date": {"type": "string"},
                "pickup_location": {"type": "string"},
                "status": {"type": "string", "enum": ["available", "claimed", "collected"]},
                "claimed_by": {"type": "string"}
            }
        },
        "dto.DonationListResponse": {
            "type": "object",
            "properties": {
                "donations": {"type": "array", "items": {"$ref": "#/definitions/dto.DonationResponse"}},
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "dto.NotificationListResponse": {
            "type": "object",
            "properties": {
                "notifications": {"type": "array", "items": {"type": "object"}},
                "total": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:4000",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "FoodShare API",
	Description:      "Food donation coordination: donors post surplus food, NGOs claim and collect it.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
