// Package docs holds the OpenAPI document served at /swagger.
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
        "/contacts": {
            "get": {
                "description": "Returns every contact in the table",
                "produces": ["application/json"],
                "tags": ["contacts"],
                "summary": "List contacts",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/models.Contact"}
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            },
            "post": {
                "description": "Any id in the body is ignored and a new one is generated",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["contacts"],
                "summary": "Create a contact",
                "parameters": [
                    {
                        "description": "Contact data",
                        "name": "contact",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.ContactInput"}
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {"$ref": "#/definitions/models.Contact"},
                        "headers": {
                            "Location": {"type": "string", "description": "contacts/{id}"}
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "405": {
                        "description": "Method not allowed",
                        "schema": {"type": "string"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        },
        "/contacts/all": {
            "delete": {
                "tags": ["contacts"],
                "summary": "Delete all contacts",
                "responses": {
                    "204": {"description": "No Content"},
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        },
        "/contacts/reset": {
            "get": {
                "description": "Deletes every contact and seeds the six demo contacts",
                "produces": ["application/json"],
                "tags": ["contacts"],
                "summary": "Reset contacts",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/models.Contact"}
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        },
        "/contacts/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["contacts"],
                "summary": "Get a contact",
                "parameters": [
                    {"type": "string", "description": "Contact ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/models.Contact"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            },
            "put": {
                "description": "The stored row is replaced entirely; the id in the path wins over any id in the body",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["contacts"],
                "summary": "Replace a contact",
                "parameters": [
                    {"type": "string", "description": "Contact ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Contact data",
                        "name": "contact",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.ContactInput"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/models.Contact"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            },
            "delete": {
                "tags": ["contacts"],
                "summary": "Delete a contact",
                "parameters": [
                    {"type": "string", "description": "Contact ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.Contact": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "firstName": {"type": "string"},
                "id": {"type": "string"},
                "lastName": {"type": "string"}
            }
        },
        "models.ContactInput": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"}
            }
        }
    },
    "tags": [
        {"description": "Contact management operations", "name": "contacts"}
    ]
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:7071",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Contacts Function API",
	Description:      "CRUD over a table of contacts, served as a serverless HTTP function",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
