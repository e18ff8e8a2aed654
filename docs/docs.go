// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/server/main.go
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
        "/cache": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Drops the advisory cache only. Grants recorded on chain and in the store are kept.",
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "Reset the entitlement cache",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/transactions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Transaction status",
                "parameters": [
                    {"type": "string", "description": "Transaction id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TransactionStatusResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/transactions/{id}/submitted": {
            "post": {
                "description": "Records the hash returned by the wallet and queues confirmation polling.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Report a sent transaction",
                "parameters": [
                    {"type": "string", "description": "Transaction id", "name": "id", "in": "path", "required": true},
                    {"description": "Hash", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SubmittedRequestDTO"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/dto.TransactionStatusResponse"}},
                    "422": {"description": "Already submitted or expired", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/{backend}/videos": {
            "get": {
                "description": "Lists every video of one backend. Served from the catalog mirror with stale=true when the chain is unreachable.",
                "produces": ["application/json"],
                "tags": ["Videos"],
                "summary": "List videos",
                "parameters": [
                    {"type": "string", "description": "evm or ton", "name": "backend", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.VideoListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Pins the video and optional thumbnail to IPFS and prepares the registration call.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Upload"],
                "summary": "Upload and register a video",
                "parameters": [
                    {"type": "string", "description": "evm or ton", "name": "backend", "in": "path", "required": true},
                    {"type": "file", "description": "Video file", "name": "video", "in": "formData", "required": true},
                    {"type": "file", "description": "Cover image", "name": "thumbnail", "in": "formData"},
                    {"type": "string", "description": "Title", "name": "title", "in": "formData"},
                    {"type": "string", "description": "Price in whole coins", "name": "price", "in": "formData", "required": true},
                    {"type": "integer", "description": "Seconds of access per purchase", "name": "display_time", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.PreparedTxResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/{backend}/videos/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Videos"],
                "summary": "Get video",
                "parameters": [
                    {"type": "string", "description": "evm or ton", "name": "backend", "in": "path", "required": true},
                    {"type": "integer", "description": "Video id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.VideoDTO"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Prepare a metadata update",
                "parameters": [
                    {"type": "string", "description": "evm or ton", "name": "backend", "in": "path", "required": true},
                    {"type": "integer", "description": "Video id", "name": "id", "in": "path", "required": true},
                    {"description": "New metadata, price in whole coins", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateVideoRequestDTO"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.PreparedTxResponse"}},
                    "403": {"description": "Not the uploader", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/{backend}/videos/{id}/access": {
            "get": {
                "description": "Answers whether the session wallet (or the viewer query parameter) may play the video. The playback URL is only returned when access is granted.",
                "produces": ["application/json"],
                "tags": ["Videos"],
                "summary": "Check view access",
                "parameters": [
                    {"type": "string", "description": "evm or ton", "name": "backend", "in": "path", "required": true},
                    {"type": "integer", "description": "Video id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Viewer address when no session is present", "name": "viewer", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AccessResponse"}},
                    "502": {"description": "Lookup failed", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/{backend}/videos/{id}/purchase": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Builds the payToView call carrying the video price as value. Sign and send it, then report the hash to /transactions/{id}/submitted.",
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Prepare a pay-per-view purchase",
                "parameters": [
                    {"type": "string", "description": "evm or ton", "name": "backend", "in": "path", "required": true},
                    {"type": "integer", "description": "Video id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.PreparedTxResponse"}},
                    "422": {"description": "Video inactive", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/{backend}/videos/{id}/toggle": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Prepare an active flag flip",
                "parameters": [
                    {"type": "string", "description": "evm or ton", "name": "backend", "in": "path", "required": true},
                    {"type": "integer", "description": "Video id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.PreparedTxResponse"}},
                    "403": {"description": "Not the uploader", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/{backend}/videos/{id}/withdraw": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Prepare a withdrawal of earnings",
                "parameters": [
                    {"type": "string", "description": "evm or ton", "name": "backend", "in": "path", "required": true},
                    {"type": "integer", "description": "Video id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.PreparedTxResponse"}},
                    "403": {"description": "Not the uploader", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.AccessResponse": {
            "type": "object",
            "properties": {
                "can_view": {"type": "boolean"},
                "video_id": {"type": "integer"},
                "video_url": {"type": "string"},
                "viewer": {"type": "string"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.PreparedTxResponse": {
            "type": "object",
            "properties": {
                "backend": {"type": "string"},
                "content_hash": {"type": "string"},
                "kind": {"type": "string"},
                "payload": {"type": "string"},
                "to": {"type": "string"},
                "transaction_id": {"type": "string"},
                "valid_until": {"type": "string"},
                "value": {"type": "string"}
            }
        },
        "dto.SubmittedRequestDTO": {
            "type": "object",
            "properties": {
                "tx_hash": {"type": "string"}
            }
        },
        "dto.TransactionStatusResponse": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "observed": {"type": "string"},
                "status": {"type": "string"},
                "transaction_id": {"type": "string"},
                "tx_hash": {"type": "string"}
            }
        },
        "dto.UpdateVideoRequestDTO": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "price": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "dto.VideoDTO": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "backend": {"type": "string"},
                "content_hash": {"type": "string"},
                "contract": {"type": "string"},
                "description": {"type": "string"},
                "display_time": {"type": "integer"},
                "id": {"type": "integer"},
                "price": {"type": "string"},
                "thumbnail_hash": {"type": "string"},
                "thumbnail_url": {"type": "string"},
                "title": {"type": "string"},
                "total_revenue": {"type": "string"},
                "total_views": {"type": "string"},
                "uploader": {"type": "string"},
                "uploader_short": {"type": "string"},
                "video_url": {"type": "string"}
            }
        },
        "dto.VideoListResponse": {
            "type": "object",
            "properties": {
                "backend": {"type": "string"},
                "stale": {"type": "boolean"},
                "videos": {"type": "array", "items": {"$ref": "#/definitions/dto.VideoDTO"}}
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
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "PPV Marketplace API",
	Description:      "Pay-per-view video marketplace on EVM and TON.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
