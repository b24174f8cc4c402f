package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a standardized JSON error response
func WriteError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errorType,
		Message: message,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// WriteJSON writes v as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent
		log.Printf("ERROR: Failed to encode response: %v", err)
	}
}

// DecodeJSON strictly decodes a request body into v: unknown fields and trailing data are rejected
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is required")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("invalid request body: unexpected data after JSON object")
	}
	return nil
}

// WriteInternalError logs err and writes a generic 500 that leaks no details
func WriteInternalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("ERROR: %s %s: %v", r.Method, r.URL.Path, err)
	WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
}

// WriteAuthRequired writes the 401 used by handlers that need a signed-in caller
func WriteAuthRequired(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, "AuthenticationRequired", "Authentication required")
}
