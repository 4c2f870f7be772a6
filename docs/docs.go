// Package docs registra el documento swagger de la API (servido en /swagger/).
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
                "summary": "Health check (incluye ping al store)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/router.healthResponse"}},
                    "503": {"description": "store unavailable", "schema": {"$ref": "#/definitions/router.healthResponse"}}
                }
            }
        },
        "/pets": {
            "get": {
                "description": "Lista paginada de mascotas ordenada por fecha de alta. Con ` + "`trait`" + ` devuelve sólo las mascotas que tienen ese trait (sin distinguir mayúsculas).",
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Listar mascotas",
                "parameters": [
                    {"type": "string", "description": "Nombre de trait", "name": "trait", "in": "query"},
                    {"type": "integer", "description": "Página (desde 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Tamaño de página (máximo configurable)", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.petPage"}},
                    "404": {"description": "invalid page", "schema": {"$ref": "#/definitions/pets.errorResponse"}}
                }
            },
            "post": {
                "description": "Crea una mascota. El grupo y los traits se buscan por nombre sin distinguir mayúsculas y se crean si no existen.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Crear mascota",
                "parameters": [
                    {"description": "Datos de la mascota", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/pets.createPetRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/pets.petResponse"}},
                    "400": {"description": "errores por campo", "schema": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}},
                    "409": {"description": "conflicto de nombre único", "schema": {"$ref": "#/definitions/pets.errorResponse"}}
                }
            }
        },
        "/pets/{petID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Obtener mascota",
                "parameters": [
                    {"type": "string", "description": "ID de la mascota", "name": "petID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.petResponse"}},
                    "404": {"description": "pet not found", "schema": {"$ref": "#/definitions/pets.errorResponse"}}
                }
            },
            "patch": {
                "description": "Sólo se aplican los campos enviados. Si se envía ` + "`traits`" + `, la mascota queda asociada únicamente al último trait de la lista.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Actualizar mascota (parcial)",
                "parameters": [
                    {"type": "string", "description": "ID de la mascota", "name": "petID", "in": "path", "required": true},
                    {"description": "Campos a modificar", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/pets.patchPetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.petResponse"}},
                    "400": {"description": "errores por campo", "schema": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}},
                    "404": {"description": "pet not found", "schema": {"$ref": "#/definitions/pets.errorResponse"}},
                    "409": {"description": "conflicto de nombre único", "schema": {"$ref": "#/definitions/pets.errorResponse"}}
                }
            },
            "delete": {
                "tags": ["pets"],
                "summary": "Borrar mascota",
                "parameters": [
                    {"type": "string", "description": "ID de la mascota", "name": "petID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "pet not found", "schema": {"$ref": "#/definitions/pets.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "router.healthResponse": {
            "type": "object",
            "properties": {"status": {"type": "string", "example": "ok"}}
        },
        "pets.errorResponse": {
            "type": "object",
            "properties": {"detail": {"type": "string"}}
        },
        "pets.groupPayload": {
            "type": "object",
            "properties": {"scientific_name": {"type": "string", "example": "Canis lupus familiaris"}}
        },
        "pets.traitPayload": {
            "type": "object",
            "properties": {"name": {"type": "string", "example": "friendly"}}
        },
        "pets.createPetRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Milo"},
                "age": {"type": "integer", "example": 3},
                "weight": {"type": "number", "example": 12.5},
                "sex": {"type": "string", "example": "Male"},
                "group": {"$ref": "#/definitions/pets.groupPayload"},
                "traits": {"type": "array", "items": {"$ref": "#/definitions/pets.traitPayload"}}
            }
        },
        "pets.patchPetRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "age": {"type": "integer"},
                "weight": {"type": "number"},
                "sex": {"type": "string"},
                "group": {"$ref": "#/definitions/pets.groupPayload"},
                "traits": {"type": "array", "items": {"$ref": "#/definitions/pets.traitPayload"}}
            }
        },
        "pets.groupResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "scientific_name": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "pets.traitResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "pets.petResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "age": {"type": "integer"},
                "weight": {"type": "number"},
                "sex": {"type": "string", "enum": ["Male", "Female", "Not Informed"]},
                "group": {"$ref": "#/definitions/pets.groupResponse"},
                "traits": {"type": "array", "items": {"$ref": "#/definitions/pets.traitResponse"}},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "pets.petPage": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "next": {"type": "string"},
                "previous": {"type": "string"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/pets.petResponse"}}
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
	Title:            "Pets API",
	Description:      "CRUD de mascotas con grupos y traits resueltos por nombre.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
