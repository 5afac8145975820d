// Package docs registra el documento OpenAPI que sirve /swagger/*.
// Se mantiene a mano a partir de las anotaciones godoc de los handlers: al cambiar una, actualizar aquí.
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
        "/animals": {
            "get": {
                "description": "Índice de staff con todos los animales, ordenado por nombre. Autenticación: ` + "`" + `X-Debug-User-ID` + "`" + ` (dev) o ` + "`" + `Authorization: Bearer \u003ctoken\u003e` + "`" + `.",
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Listar animales",
                "parameters": [
                    {"type": "string", "description": "Solo en modo dev, ID de usuario para depuración", "name": "X-Debug-User-ID", "in": "header"},
                    {"type": "string", "description": "Bearer token de staff", "name": "Authorization", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/records.AnimalSummary"}}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "503": {"description": "storage unavailable", "schema": {"type": "string"}}
                }
            },
            "post": {
                "description": "Crea el animal y le asocia su QR. Si la pareja (name, owner) ya existe no crea nada: responde 303 con Location al registro existente.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Registrar animal",
                "parameters": [
                    {"type": "string", "description": "Solo en modo dev, ID de usuario para depuración", "name": "X-Debug-User-ID", "in": "header"},
                    {"type": "string", "description": "Bearer token de staff", "name": "Authorization", "in": "header"},
                    {"description": "Datos del animal; los cuatro campos son obligatorios", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/records.addAnimalRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/records.addAnimalResponse"}},
                    "303": {"description": "ya existía", "schema": {"$ref": "#/definitions/records.addAnimalResponse"}},
                    "400": {"description": "invalid json / campos vacíos", "schema": {"type": "string"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "503": {"description": "storage unavailable", "schema": {"type": "string"}}
                }
            }
        },
        "/animals/{animalID}": {
            "get": {
                "description": "Vista de staff: datos del animal, URL pública, historial con ids y fecha de hoy para el formulario.",
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Ver registro completo",
                "parameters": [
                    {"type": "integer", "description": "ID del animal", "name": "animalID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/records.StaffView"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            },
            "delete": {
                "description": "Borra el animal y todo su historial. La URL pública pasa a responder 404.",
                "tags": ["animals"],
                "summary": "Borrar animal",
                "parameters": [
                    {"type": "integer", "description": "ID del animal", "name": "animalID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            },
            "patch": {
                "description": "PATCH parcial. name y owner forman la clave natural y no se pueden cambiar.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Editar especie / contacto",
                "parameters": [
                    {"type": "integer", "description": "ID del animal", "name": "animalID", "in": "path", "required": true},
                    {"description": "Campos a cambiar", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/records.updateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/records.StaffView"}},
                    "400": {"description": "invalid json", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/animals/{animalID}/token": {
            "post": {
                "description": "Genera y guarda el QR si el animal no lo tiene. Si ya lo tiene no lo regenera.",
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Asociar QR (reintento)",
                "parameters": [
                    {"type": "integer", "description": "ID del animal", "name": "animalID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/records.StaffView"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/animals/{animalID}/qr.png": {
            "get": {
                "produces": ["image/png"],
                "tags": ["animals"],
                "summary": "Descargar QR",
                "parameters": [
                    {"type": "integer", "description": "ID del animal", "name": "animalID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "PNG", "schema": {"type": "file"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/animals/{animalID}/history": {
            "post": {
                "description": "kind=treatment requiere diagnosis y treatment. kind=vaccination requiere vaccine; due_date es opcional y no puede ser anterior a date.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Agregar entrada de historial",
                "parameters": [
                    {"type": "integer", "description": "ID del animal", "name": "animalID", "in": "path", "required": true},
                    {"description": "Entrada", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/records.entryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/records.EntryView"}},
                    "400": {"description": "invalid input", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/animals/{animalID}/history/{entryID}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["history"],
                "description": "Reescribe fecha y detalle. El kind no cambia: si se envía y no coincide, 400.",
                "summary": "Editar entrada de historial",
                "parameters": [
                    {"type": "integer", "description": "ID del animal", "name": "animalID", "in": "path", "required": true},
                    {"type": "integer", "description": "ID de la entrada", "name": "entryID", "in": "path", "required": true},
                    {"description": "Entrada", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/records.entryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/records.EntryView"}},
                    "400": {"description": "invalid input", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            },
            "delete": {
                "tags": ["history"],
                "summary": "Borrar entrada de historial",
                "parameters": [
                    {"type": "integer", "description": "ID del animal", "name": "animalID", "in": "path", "required": true},
                    {"type": "integer", "description": "ID de la entrada", "name": "entryID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/scan": {
            "post": {
                "description": "Recibe el texto leído del QR y devuelve la vista de staff del animal. Solo acepta URLs emitidas con la base configurada.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Resolver un QR escaneado",
                "parameters": [
                    {"description": "Texto del QR", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/records.scanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/records.StaffView"}},
                    "400": {"description": "payload inválido", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/public/animal/{id}": {
            "get": {
                "description": "Vista de solo lectura a la que apunta el QR. Cualquier error responde 404.",
                "produces": ["application/json"],
                "tags": ["public"],
                "summary": "Ficha pública del animal",
                "parameters": [
                    {"type": "integer", "description": "ID del animal", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/records.PublicView"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/public/animal/{id}/qr.png": {
            "get": {
                "produces": ["image/png"],
                "tags": ["public"],
                "summary": "QR público del animal",
                "parameters": [
                    {"type": "integer", "description": "ID del animal", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "PNG", "schema": {"type": "file"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/staff/login": {
            "post": {
                "description": "Valida la cuenta de staff configurada y emite un Bearer token (HS256).",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["staff"],
                "summary": "Login de staff",
                "parameters": [
                    {"description": "Credenciales", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/router.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/router.loginResponse"}},
                    "400": {"description": "invalid json", "schema": {"type": "string"}},
                    "401": {"description": "invalid credentials", "schema": {"type": "string"}}
                }
            }
        },
        "/staff/logout": {
            "post": {
                "description": "Revoca el token actual hasta su expiración.",
                "tags": ["staff"],
                "summary": "Logout de staff",
                "parameters": [
                    {"type": "string", "description": "Bearer token de staff", "name": "Authorization", "in": "header", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "503": {"description": "revocation store unavailable", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "records.AnimalSummary": {
            "type": "object",
            "properties": {
                "has_artifact": {"type": "boolean"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "owner": {"type": "string"},
                "species": {"type": "string"}
            }
        },
        "records.EntryView": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "diagnosis": {"type": "string"},
                "due_date": {"type": "string"},
                "id": {"type": "integer"},
                "kind": {"type": "string", "enum": ["treatment", "vaccination"]},
                "treatment": {"type": "string"},
                "vaccine": {"type": "string"}
            }
        },
        "records.PublicView": {
            "type": "object",
            "properties": {
                "can_edit": {"type": "boolean"},
                "contact": {"type": "string"},
                "history": {"type": "array", "items": {"$ref": "#/definitions/records.EntryView"}},
                "name": {"type": "string"},
                "owner": {"type": "string"},
                "species": {"type": "string"}
            }
        },
        "records.StaffView": {
            "type": "object",
            "properties": {
                "can_edit": {"type": "boolean"},
                "contact": {"type": "string"},
                "has_artifact": {"type": "boolean"},
                "history": {"type": "array", "items": {"$ref": "#/definitions/records.EntryView"}},
                "id": {"type": "integer"},
                "lookup_url": {"type": "string"},
                "name": {"type": "string"},
                "owner": {"type": "string"},
                "species": {"type": "string"},
                "today": {"type": "string"}
            }
        },
        "records.addAnimalRequest": {
            "type": "object",
            "properties": {
                "contact": {"type": "string"},
                "name": {"type": "string"},
                "owner": {"type": "string"},
                "species": {"type": "string"}
            }
        },
        "records.addAnimalResponse": {
            "type": "object",
            "properties": {
                "animal": {"$ref": "#/definitions/records.StaffView"},
                "created": {"type": "boolean"}
            }
        },
        "records.entryRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "diagnosis": {"type": "string"},
                "due_date": {"type": "string"},
                "kind": {"type": "string", "enum": ["treatment", "vaccination"]},
                "treatment": {"type": "string"},
                "vaccine": {"type": "string"}
            }
        },
        "records.scanRequest": {
            "type": "object",
            "properties": {
                "payload": {"type": "string"}
            }
        },
        "records.updateProfileRequest": {
            "type": "object",
            "properties": {
                "contact": {"type": "string"},
                "species": {"type": "string"}
            }
        },
        "router.loginRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "router.loginResponse": {
            "type": "object",
            "properties": {
                "expires_at": {"type": "string"},
                "token": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo lo toma http-swagger vía swag.Register.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Clinic Records API",
	Description:      "Registro de animales, QR de consulta pública e historial de tratamientos y vacunas.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
