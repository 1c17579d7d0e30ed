// Package handlers provides the AWS Lambda handlers of the taxfree engine.
package handlers

import (
	"encoding/json"
	"net/http"
	"os"
)

// corsHeaders returns the headers every API Gateway response carries.
func corsHeaders(methods string) map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": methods,
		"Content-Type":                 "application/json",
	}
}

// ErrorBody is the error payload of Lambda responses.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// getEnvOrDefault returns environment variable or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func marshalBody(v any) string {
	body, err := json.Marshal(v)
	if err != nil {
		body, _ = json.Marshal(ErrorBody{
			Error:   http.StatusText(http.StatusInternalServerError),
			Message: "failed to encode response",
		})
	}
	return string(body)
}
