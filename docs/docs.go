// Package docs holds the OpenAPI description served under /swagger.
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List products",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.listResponse"}}
                }
            }
        },
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List products",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.listResponse"}}
                }
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Submit a product",
                "parameters": [
                    {"type": "string", "description": "Product name", "name": "name", "in": "formData", "required": true},
                    {"type": "string", "description": "Absolute http(s) link", "name": "link", "in": "formData", "required": true},
                    {"type": "string", "description": "Description", "name": "description", "in": "formData"},
                    {"type": "file", "description": "Product image", "name": "image", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.productResponse"}},
                    "303": {"description": "Browser redirect to /"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/products/{id}/image": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["products"],
                "summary": "Product image",
                "parameters": [
                    {"type": "string", "description": "Product id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/register": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration form", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "303": {"description": "Browser redirect to /login"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "303": {"description": "Browser redirect to /"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {
                    "204": {"description": "No Content"},
                    "303": {"description": "Browser redirect to /"}
                }
            }
        },
        "/profile": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.profileResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        }
    },
    "definitions": {
        "api.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["login", "password", "password2", "fullname"],
            "properties": {
                "login": {"type": "string", "maxLength": 64},
                "password": {"type": "string", "maxLength": 72},
                "password2": {"type": "string"},
                "fullname": {"type": "string", "maxLength": 128}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["login", "password"],
            "properties": {
                "login": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.userResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "login": {"type": "string"},
                "fullname": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "handler.authResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/handler.userResponse"}
            }
        },
        "handler.productResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "link": {"type": "string"},
                "description": {"type": "string"},
                "image_url": {"type": "string"},
                "owner_id": {"type": "string"},
                "owner_name": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "handler.listResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/handler.userResponse"},
                "products": {"type": "array", "items": {"$ref": "#/definitions/handler.productResponse"}}
            }
        },
        "handler.profileResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/handler.userResponse"},
                "products": {"type": "array", "items": {"$ref": "#/definitions/handler.productResponse"}}
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
	Title:            "Green product catalog API",
	Description:      "Registration, session login and product submissions for the green product catalog.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
