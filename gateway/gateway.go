// Package gateway defines the request/response contract shared by the
// auth, posts and shorts services: each service is a pure function from
// an HTTP-shaped event to an HTTP-shaped result, with permissive CORS
// on every response.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
)

// HeaderAuth is the header carrying the bearer token.
const HeaderAuth = "X-Authorization"

type Request struct {
	HTTPMethod string            `json:"httpMethod"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

type Response struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// Handler is one service: stateless, safe for concurrent use.
type Handler interface {
	Handle(ctx context.Context, req Request) Response
}

type HandlerFunc func(ctx context.Context, req Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

func baseHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}

// JSON marshals v into a response body with CORS headers.
func JSON(status int, v interface{}) Response {
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("failed to marshal response body: %v", err)
		return Error(http.StatusInternalServerError, "Internal server error")
	}
	return Response{
		StatusCode: status,
		Headers:    baseHeaders(),
		Body:       string(body),
	}
}

// Error shapes an error response as {"error": message}. The message is
// the only detail exposed to the caller.
func Error(status int, message string) Response {
	body, _ := json.Marshal(map[string]string{"error": message})
	return Response{
		StatusCode: status,
		Headers:    baseHeaders(),
		Body:       string(body),
	}
}

// Preflight answers an OPTIONS request before any other logic runs.
// methods is the service's allowed method list, e.g. "GET, POST, OPTIONS".
func Preflight(methods string) Response {
	return Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Methods": methods,
			"Access-Control-Allow-Headers": "Content-Type, Authorization",
		},
		Body: "",
	}
}

func MethodNotAllowed() Response {
	return Error(http.StatusMethodNotAllowed, "Method not allowed")
}

func InvalidAction() Response {
	return Error(http.StatusBadRequest, "Invalid action")
}
