package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Emiliocodings/ServiceUsers/internal/services"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the error payload for every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ValidationErrorResponse adds per-field detail to a 422 response.
type ValidationErrorResponse struct {
	Detail string                `json:"detail"`
	Errors []services.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Detail: message})
}

func writeValidationError(w http.ResponseWriter, err *services.ValidationError) {
	writeJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
		Detail: "Validation failed",
		Errors: err.Fields,
	})
}

// decodeJSON reads a single JSON object from the request body. Decoding
// problems are reported as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return services.NewValidationError("body", "Request body is required")
		case errors.As(err, &typeErr):
			field := typeErr.Field
			if field == "" {
				field = "body"
			}
			return services.NewValidationError(field, fmt.Sprintf("Input should be a valid %s", typeErr.Type))
		case errors.As(err, &maxErr):
			return services.NewValidationError("body", "Request body too large")
		default:
			return services.NewValidationError("body", "Invalid JSON body")
		}
	}
	return nil
}

// queryInt parses a non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, services.NewValidationError(name, "Input should be a valid integer")
	}
	if value < 0 {
		return 0, services.NewValidationError(name, "Input should be greater than or equal to 0")
	}
	return value, nil
}
