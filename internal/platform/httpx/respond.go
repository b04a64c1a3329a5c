// Package httpx provides JSON request/response utilities for the API layer.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the generic error envelope used outside field validation.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is the envelope for plain confirmation responses.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends a generic error envelope.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// Message sends a confirmation envelope.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageBody{Message: msg})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
