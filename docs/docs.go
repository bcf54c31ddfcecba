// Package docs holds the OpenAPI document served under /swagger.
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
        "/api/v1/reference": {
            "get": {
                "description": "Vocabularies with display labels and the reference tables used for scoring.",
                "produces": ["application/json"],
                "tags": ["model"],
                "summary": "Model reference",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/riskmodel.Reference"}}
                }
            }
        },
        "/api/v1/evaluate": {
            "post": {
                "description": "Scores a declared vessel profile. as_of defaults to today.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["model"],
                "summary": "Evaluate a vessel profile",
                "parameters": [
                    {"description": "Profile and optional date", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.EvaluateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.EvaluateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/certificate": {
            "post": {
                "description": "Evaluates the profile and returns a one-page PDF certificate.",
                "consumes": ["application/json"],
                "produces": ["application/pdf"],
                "tags": ["certificate"],
                "summary": "Download a certificate",
                "parameters": [
                    {"description": "Profile, validity and optional date", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.CertificateRequest"}}
                ],
                "responses": {
                    "200": {"description": "PDF document", "schema": {"type": "file"}, "headers": {"X-Certificate-ID": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Rendering failed", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/certificate/preview": {
            "post": {
                "description": "Builds the certificate metadata without rendering a document.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["certificate"],
                "summary": "Preview a certificate",
                "parameters": [
                    {"description": "Profile, validity and optional date", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.CertificateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/certificate.Certificate"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/session": {
            "post": {
                "description": "Issues a signed session token. Credentials are not checked.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Open a session",
                "parameters": [
                    {"description": "Organization and user", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/session.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session.LoginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "delete": {
                "description": "Clears the session cookie.",
                "tags": ["session"],
                "summary": "Close a session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/issuances": {
            "get": {
                "description": "Most recent issuance log entries. Requires a session.",
                "produces": ["application/json"],
                "tags": ["certificate"],
                "summary": "Recent issuances",
                "parameters": [
                    {"type": "integer", "description": "Maximum entries (1-100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/database.Issuance"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/verify/{id}": {
            "get": {
                "description": "Looks up a certificate identifier in the issuance log.",
                "produces": ["application/json"],
                "tags": ["certificate"],
                "summary": "Verify a certificate",
                "parameters": [
                    {"type": "string", "description": "Certificate ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/database.Verification"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "riskmodel.VesselProfile": {
            "type": "object",
            "properties": {
                "organization": {"type": "string"},
                "vessel_name": {"type": "string"},
                "imo": {"type": "string"},
                "ship_type": {"type": "string", "enum": ["container", "bulk_carrier", "tanker", "ro_ro", "general_cargo", "other"]},
                "engine_type": {"type": "string", "enum": ["two_stroke_low_speed", "four_stroke_medium_speed", "dual_fuel", "unknown"]},
                "fuel_type": {"type": "string", "enum": ["hfo", "mgo_mdo", "lng", "methanol", "ammonia"]},
                "year_built": {"type": "integer"},
                "dwt": {"type": "integer"},
                "operating_days": {"type": "integer"},
                "speed_profile": {"type": "string", "enum": ["slow", "normal", "fast"]},
                "route_region": {"type": "string"},
                "eu_exposure": {"type": "string", "enum": ["none", "partial", "high"]},
                "retrofit_status": {"type": "string", "enum": ["none", "planned", "installed"]},
                "voyage": {
                    "type": "object",
                    "properties": {
                        "last_port": {"type": "string"},
                        "next_port": {"type": "string"},
                        "cargo": {"type": "string"}
                    }
                }
            }
        },
        "riskmodel.RiskOutput": {
            "type": "object",
            "properties": {
                "signals": {"type": "object"},
                "risk_score": {"type": "number"},
                "posture": {"type": "string", "enum": ["Lower", "Moderate", "High", "Severe"]},
                "daily_fuel_tonnes": {"type": "number"},
                "annual_fuel_tonnes": {"type": "number"},
                "annual_co2_tonnes": {"type": "number"},
                "carbon_cost": {"type": "number"},
                "carbon_cost_band": {"type": "object"},
                "levers": {"type": "array", "items": {"type": "object"}},
                "asset_age_years": {"type": "integer"},
                "as_of": {"type": "string", "format": "date-time"}
            }
        },
        "riskmodel.Reference": {"type": "object"},
        "main.EvaluateRequest": {
            "type": "object",
            "properties": {
                "profile": {"$ref": "#/definitions/riskmodel.VesselProfile"},
                "as_of": {"type": "string", "example": "2025-03-14"}
            }
        },
        "main.EvaluateResponse": {
            "type": "object",
            "properties": {
                "profile": {"$ref": "#/definitions/riskmodel.VesselProfile"},
                "output": {"$ref": "#/definitions/riskmodel.RiskOutput"},
                "dashboard": {"type": "object"}
            }
        },
        "main.CertificateRequest": {
            "type": "object",
            "properties": {
                "profile": {"$ref": "#/definitions/riskmodel.VesselProfile"},
                "validity_days": {"type": "integer", "example": 90},
                "as_of": {"type": "string", "example": "2025-03-14"}
            }
        },
        "certificate.Certificate": {"type": "object"},
        "database.Issuance": {"type": "object"},
        "database.Verification": {"type": "object"},
        "session.LoginRequest": {
            "type": "object",
            "properties": {
                "organization": {"type": "string"},
                "user": {"type": "string"}
            }
        },
        "session.LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "organization": {"type": "string"},
                "user": {"type": "string"},
                "expires_at": {"type": "string", "format": "date-time"}
            }
        },
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "category": {"type": "string"},
                "message": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}},
                "request_id": {"type": "string"},
                "timestamp": {"type": "string", "format": "date-time"}
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
	Title:            "Sustaina Shipping Risk Brain API",
	Description:      "Modeled transition-risk scoring and certificates for declared vessel profiles.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
