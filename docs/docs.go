// Package docs registra el documento OpenAPI que sirve /swagger/*.
// Se regenera con `swag init -g cmd/pilltrack/main.go -o docs`.
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
        "/doses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["doses"],
                "summary": "Tomas por rango de fechas",
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DD", "name": "from", "in": "query", "required": true},
                    {"type": "string", "description": "YYYY-MM-DD", "name": "to", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/doselogs.doseResponse"}}},
                    "400": {"description": "from/to inválidos", "schema": {"type": "string"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}}
                }
            }
        },
        "/doses/today": {
            "get": {
                "description": "Lista las tomas programadas para hoy del usuario autenticado.",
                "produces": ["application/json"],
                "tags": ["doses"],
                "summary": "Tomas de hoy",
                "parameters": [
                    {"type": "string", "description": "Solo en modo dev, ID de usuario para depuración", "name": "X-Debug-User-ID", "in": "header"},
                    {"type": "string", "description": "Bearer token en producción", "name": "Authorization", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/doselogs.doseResponse"}}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}}
                }
            }
        },
        "/doses/{doseID}/take": {
            "post": {
                "description": "PENDING -> TAKEN. Descuenta inventario de la medicación.",
                "produces": ["application/json"],
                "tags": ["doses"],
                "summary": "Confirmar toma",
                "parameters": [
                    {"type": "string", "description": "ID de la toma", "name": "doseID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/doselogs.doseResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "404": {"description": "dose not found", "schema": {"type": "string"}},
                    "409": {"description": "la toma ya no está PENDING", "schema": {"type": "string"}}
                }
            }
        },
        "/doses/{doseID}/skip": {
            "post": {
                "description": "PENDING -> SKIPPED con motivo opcional.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["doses"],
                "summary": "Omitir toma",
                "parameters": [
                    {"type": "string", "description": "ID de la toma", "name": "doseID", "in": "path", "required": true},
                    {"description": "Motivo", "name": "payload", "in": "body", "schema": {"$ref": "#/definitions/doselogs.skipDoseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/doselogs.doseResponse"}},
                    "409": {"description": "la toma ya no está PENDING", "schema": {"type": "string"}}
                }
            }
        },
        "/medications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["medications"],
                "summary": "Listar medicaciones",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/medications.medicationResponse"}}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["medications"],
                "summary": "Registrar medicación",
                "description": "Crea una medicación para el usuario autenticado. Status vacío => ACTIVE.",
                "parameters": [
                    {"description": "Medicación", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/medications.createMedicationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/medications.medicationResponse"}},
                    "400": {"description": "invalid input", "schema": {"type": "string"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}}
                }
            }
        },
        "/medications/{medicationID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["medications"],
                "summary": "Detalle de medicación",
                "parameters": [
                    {"type": "string", "description": "ID de la medicación", "name": "medicationID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/medications.medicationResponse"}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/medications/{medicationID}/reminders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reminders"],
                "summary": "Recordatorios de una medicación",
                "parameters": [
                    {"type": "string", "description": "ID de la medicación", "name": "medicationID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/reminders.reminderResponse"}}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reminders"],
                "summary": "Crear recordatorio",
                "description": "Recordatorio diario para una medicación propia. minutes_before entre 0 y 1440 (default 5).",
                "parameters": [
                    {"type": "string", "description": "ID de la medicación", "name": "medicationID", "in": "path", "required": true},
                    {"description": "Recordatorio", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/reminders.createReminderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/reminders.reminderResponse"}},
                    "400": {"description": "invalid input", "schema": {"type": "string"}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/reminders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reminders"],
                "summary": "Recordatorios activos del usuario",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/reminders.reminderResponse"}}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}}
                }
            }
        },
        "/medications/{medicationID}/adherence": {
            "get": {
                "produces": ["application/json"],
                "tags": ["doses"],
                "summary": "Porcentaje de adherencia",
                "parameters": [
                    {"type": "string", "description": "ID de la medicación", "name": "medicationID", "in": "path", "required": true},
                    {"type": "string", "description": "YYYY-MM-DD", "name": "from", "in": "query", "required": true},
                    {"type": "string", "description": "YYYY-MM-DD", "name": "to", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/doselogs.adherenceResponse"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Listar notificaciones",
                "parameters": [
                    {"type": "boolean", "description": "Solo no leídas", "name": "unread", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/notifications.notificationResponse"}}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}}
                }
            }
        },
        "/notifications/unread-count": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Cantidad de no leídas",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/notifications.countResponse"}}
                }
            }
        },
        "/notifications/read-all": {
            "post": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Marcar todas como leídas",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/notifications.countResponse"}}
                }
            }
        },
        "/notifications/{notificationID}/read": {
            "post": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Marcar como leída",
                "parameters": [
                    {"type": "string", "description": "ID de la notificación", "name": "notificationID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/notifications.notificationResponse"}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/admin/sweeps/{name}/run": {
            "post": {
                "description": "Corre reminders, missed-doses o low-stock una vez, respetando el guard del scheduler.",
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Ejecutar sweep manualmente",
                "parameters": [
                    {"type": "string", "description": "reminders | missed-doses | low-stock", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "Solo en modo dev", "name": "X-Debug-User-ID", "in": "header"},
                    {"type": "string", "description": "Solo en modo dev, p.ej. admin", "name": "X-Debug-Roles", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/router.sweepSummaryResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "404": {"description": "unknown sweep", "schema": {"type": "string"}},
                    "409": {"description": "sweep already running", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "doselogs.doseResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "medication_id": {"type": "string"},
                "scheduled_time": {"type": "string"},
                "taken_time": {"type": "string"},
                "status": {"type": "string", "enum": ["PENDING", "TAKEN", "MISSED", "SKIPPED"]},
                "notes": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "doselogs.skipDoseRequest": {
            "type": "object",
            "properties": {"reason": {"type": "string"}}
        },
        "doselogs.adherenceResponse": {
            "type": "object",
            "properties": {
                "medication_id": {"type": "string"},
                "from": {"type": "string"},
                "to": {"type": "string"},
                "percentage": {"type": "integer"}
            }
        },
        "medications.createMedicationRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "dosage": {"type": "string"},
                "status": {"type": "string", "enum": ["ACTIVE", "PAUSED", "COMPLETED", "DISCONTINUED"]},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "inventory": {"type": "integer"},
                "frequency": {"type": "integer"},
                "quantity_per_dose": {"type": "integer"}
            }
        },
        "medications.medicationResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "dosage": {"type": "string"},
                "status": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "inventory": {"type": "integer"},
                "frequency": {"type": "integer"},
                "quantity_per_dose": {"type": "integer"},
                "days_remaining": {"type": "integer"},
                "created_at": {"type": "string"}
            }
        },
        "reminders.createReminderRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["FIXED_TIME", "INTERVAL", "AS_NEEDED"]},
                "schedule_info": {"type": "string"},
                "minutes_before": {"type": "integer"}
            }
        },
        "reminders.reminderResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "medication_id": {"type": "string"},
                "type": {"type": "string"},
                "schedule_info": {"type": "string"},
                "cron_expression": {"type": "string"},
                "minutes_before": {"type": "integer"},
                "active": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "notifications.notificationResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string", "enum": ["MEDICATION_REMINDER", "LOW_STOCK"]},
                "title": {"type": "string"},
                "message": {"type": "string"},
                "action_url": {"type": "string"},
                "read": {"type": "boolean"},
                "read_at": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "notifications.countResponse": {
            "type": "object",
            "properties": {"count": {"type": "integer"}}
        },
        "router.sweepSummaryResponse": {
            "type": "object",
            "properties": {
                "sweep": {"type": "string"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"},
                "succeeded": {"type": "integer"},
                "skipped": {"type": "integer"},
                "failed": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/router.itemResponse"}}
            }
        },
        "router.itemResponse": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "outcome": {"type": "string"},
                "reason": {"type": "string"}
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
	Title:            "PillTrack API",
	Description:      "Tomas programadas, adherencia, notificaciones y disparo manual de sweeps.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
