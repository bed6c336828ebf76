// Package docs holds the OpenAPI description served at /swagger/doc.json.
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
                "tags": ["system"],
                "summary": "Liveness",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Readiness",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.ReadinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/server.ReadinessResponse"}}
                }
            }
        },
        "/seed": {
            "post": {
                "description": "Idempotently create the fixture price matrices",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Seed Fixtures",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.SeedResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/pricematrix": {
            "get": {
                "description": "List matrices with their rule set counts",
                "produces": ["application/json"],
                "tags": ["pricematrix"],
                "summary": "List Price Matrices",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.MatrixSummaryResponse"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/pricematrix/{matrixId}": {
            "get": {
                "description": "Matrix with its rule sets ordered by descending priority",
                "produces": ["application/json"],
                "tags": ["pricematrix"],
                "summary": "Get Price Matrix",
                "parameters": [
                    {"type": "string", "description": "Price Matrix ID", "name": "matrixId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.MatrixResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/pricematrix/{matrixId}/ruleset": {
            "post": {
                "description": "Append a rule set with the highest priority of the matrix",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pricematrix"],
                "summary": "Create Rule Set",
                "parameters": [
                    {"type": "string", "description": "Price Matrix ID", "name": "matrixId", "in": "path", "required": true},
                    {"description": "Rule Set", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.RuleSetRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.RuleSetResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/pricematrix/{matrixId}/ruleset/{id}": {
            "put": {
                "description": "Replace the rule set fields and its complete rule list",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pricematrix"],
                "summary": "Update Rule Set",
                "parameters": [
                    {"type": "string", "description": "Price Matrix ID", "name": "matrixId", "in": "path", "required": true},
                    {"type": "string", "description": "Rule Set ID", "name": "id", "in": "path", "required": true},
                    {"description": "Rule Set", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.RuleSetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.RuleSetResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["pricematrix"],
                "summary": "Delete Rule Set",
                "parameters": [
                    {"type": "string", "description": "Price Matrix ID", "name": "matrixId", "in": "path", "required": true},
                    {"type": "string", "description": "Rule Set ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/pricematrix/{matrixId}/ruleset/{id}/priority/{direction}": {
            "post": {
                "description": "Swap priority with the nearest rule set above (direction > 0) or below (direction < 0)",
                "produces": ["application/json"],
                "tags": ["pricematrix"],
                "summary": "Change Rule Set Priority",
                "parameters": [
                    {"type": "string", "description": "Price Matrix ID", "name": "matrixId", "in": "path", "required": true},
                    {"type": "string", "description": "Rule Set ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Direction", "name": "direction", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.MatrixSummaryResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "ruleSetCount": {"type": "integer"}
            }
        },
        "domain.MatrixResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "ruleSets": {"type": "array", "items": {"$ref": "#/definitions/domain.RuleSetResponse"}}
            }
        },
        "domain.RuleSetRequest": {
            "type": "object",
            "properties": {
                "logicalOperatorId": {"type": "integer"},
                "priceSelling": {"type": "number"},
                "bookingFeePercent": {"type": "number"},
                "bookingFeeAbsolute": {"type": "number"},
                "insideCommissionRate": {"type": "number"},
                "note": {"type": "string"},
                "offerCode": {"type": "string"},
                "rules": {"type": "array", "items": {"$ref": "#/definitions/domain.RuleRequest"}}
            }
        },
        "domain.RuleRequest": {
            "type": "object",
            "properties": {
                "fieldId": {"type": "integer"},
                "compareOperatorId": {"type": "integer"},
                "valueInt": {"type": "integer"},
                "valueString": {"type": "string"},
                "valueDateTime": {"type": "string"},
                "valueDecimal": {"type": "number"},
                "priority": {"type": "integer"}
            }
        },
        "domain.RuleSetResponse": {
            "type": "object",
            "properties": {
                "ruleSetId": {"type": "string"},
                "logicalOperatorId": {"type": "integer"},
                "priority": {"type": "integer"},
                "rules": {"type": "array", "items": {"$ref": "#/definitions/domain.RuleResponse"}},
                "priceSelling": {"type": "number"},
                "bookingFeePercent": {"type": "number"},
                "bookingFeeAbsolute": {"type": "number"},
                "insideCommissionRate": {"type": "number"},
                "note": {"type": "string"},
                "offerCode": {"type": "string"}
            }
        },
        "domain.RuleResponse": {
            "type": "object",
            "properties": {
                "ruleSetId": {"type": "string"},
                "ruleId": {"type": "string"},
                "fieldId": {"type": "integer"},
                "compareOperatorId": {"type": "integer"},
                "valueInt": {"type": "integer"},
                "valueString": {"type": "string"},
                "valueDateTime": {"type": "string"},
                "valueDecimal": {"type": "number"},
                "priority": {"type": "integer"}
            }
        },
        "server.ErrorBody": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/server.ErrorBody"}
            }
        },
        "server.ReadinessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "server.SeedResponse": {
            "type": "object",
            "properties": {
                "matrixIds": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Price Matrix API",
	Description:      "Prioritized pricing rule sets per price matrix",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
