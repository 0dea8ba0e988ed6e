// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "http://github.com/Pesokrava/storefront_reviews"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/admin/products/{id}/reviews/{reviewId}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Removes the review and recomputes the product's rating aggregate",
                "tags": ["Moderation"],
                "summary": "Delete a review",
                "parameters": [
                    {"type": "string", "description": "Product ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Review ID (UUID)", "name": "reviewId", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Review deleted"},
                    "400": {"description": "Invalid ID", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "403": {"description": "Admin role required", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Product or review not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/admin/reviews": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Flattened list of all reviews across all products. Not paginated.",
                "produces": ["application/json"],
                "tags": ["Moderation"],
                "summary": "List every review",
                "responses": {
                    "200": {"description": "Flattened reviews", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Authentication required", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "403": {"description": "Admin role required", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Dependency unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/products": {
            "get": {
                "description": "Get a paginated list of products",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "List all products",
                "parameters": [
                    {"type": "integer", "default": 20, "description": "Number of items per page (max 100)", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Number of items to skip", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Paginated list of products", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal server error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Create a new product with name, description, and price",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Create a new product",
                "parameters": [
                    {"description": "Product details", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateProductRequest"}}
                ],
                "responses": {
                    "201": {"description": "Product created successfully", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid request body", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "description": "Get a product including its reviews, ratings and numOfReviews",
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Get a product by ID",
                "parameters": [
                    {"type": "string", "description": "Product ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Product details", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Product not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Update product details (name, description, price)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Update a product",
                "parameters": [
                    {"type": "string", "description": "Product ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "Updated product details", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateProductRequest"}}
                ],
                "responses": {
                    "200": {"description": "Product updated successfully", "schema": {"type": "object", "additionalProperties": true}},
                    "409": {"description": "Conflict - product was modified", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Soft delete a product and all its reviews",
                "tags": ["Products"],
                "summary": "Delete a product",
                "parameters": [
                    {"type": "string", "description": "Product ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Product deleted successfully"},
                    "404": {"description": "Product not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/products/{id}/reviews": {
            "get": {
                "description": "Get every review of a product in submission order. Results are cached.",
                "produces": ["application/json"],
                "tags": ["Reviews"],
                "summary": "Get reviews for a product",
                "parameters": [
                    {"type": "string", "description": "Product ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "List of reviews", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.PublicReview"}}},
                    "404": {"description": "Product not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Requires a delivered order containing the product. A second submission by the same user overwrites the first. Profanity in the comment is masked.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Reviews"],
                "summary": "Create or update the caller's review",
                "parameters": [
                    {"type": "string", "description": "Product ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "Rating and comment", "name": "review", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SubmitReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "Review updated", "schema": {"type": "object", "additionalProperties": true}},
                    "201": {"description": "Review created", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid input", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Authentication required", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "403": {"description": "Must purchase before reviewing", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Product not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Dependency unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handler.PublicReview": {
            "type": "object",
            "properties": {
                "reviewId": {"type": "string"},
                "authorName": {"type": "string"},
                "rating": {"type": "integer"},
                "comment": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "handler.CreateProductRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "description": {"type": "string"},
                "name": {"type": "string", "maxLength": 255, "minLength": 1},
                "price": {"type": "number", "minimum": 0}
            }
        },
        "handler.SubmitReviewRequest": {
            "type": "object",
            "properties": {
                "comment": {"type": "string", "example": "Works as advertised"},
                "rating": {"type": "integer", "example": 5}
            }
        },
        "handler.UpdateProductRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "description": {"type": "string"},
                "name": {"type": "string", "maxLength": 255, "minLength": 1},
                "price": {"type": "number", "minimum": 0}
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
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Storefront Reviews API",
	Description:      "Verified-purchase product reviews with profanity masking, rating aggregates and moderation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
