// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses
// and the mapping from service errors to status codes.

package http

import (
	"errors"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"financeflow/internal/core"
	"financeflow/internal/currency"
	"financeflow/internal/log"
	"financeflow/internal/report"
	"financeflow/internal/services"
	"financeflow/internal/storage"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
}

// FieldError is one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(ErrorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnauthorizedError creates a 401 Unauthorized error response.
func UnauthorizedError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// ConflictError creates a 409 Conflict error response.
func ConflictError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusConflict, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "method not allowed")
}

// ValidationError creates a 400 response listing every rejected field.
func ValidationError(verrs core.ValidationErrors) *JSONResponseBuilder {
	fields := make([]FieldError, len(verrs))
	for i, e := range verrs {
		fields[i] = FieldError{Field: e.Field, Message: e.Msg}
	}
	return NewJSONResponse().
		Status(http.StatusBadRequest).
		Body(ErrorBody{Error: "validation failed", Fields: fields})
}

var badInput = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidCurrency,
	core.ErrInvalidCategory,
	core.ErrInvalidDate,
	core.ErrInvalidEnum,
	core.ErrOutOfRange,
	core.ErrInvalidEmail,
	core.ErrEmptyOwner,
	currency.ErrUnsupported,
	report.ErrUnknownPreset,
}

// FromError maps a service error to a response. Unexpected errors are
// logged and reported as 500 without detail.
func FromError(r *http.Request, err error) *JSONResponseBuilder {
	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		return ValidationError(verrs)
	}
	var rerr *requestError
	if errors.As(err, &rerr) {
		return BadRequestError(rerr.Error())
	}

	switch {
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError("not found")
	case errors.Is(err, core.ErrLoanNotActive):
		return ConflictError(core.ErrLoanNotActive.Error())
	case errors.Is(err, services.ErrBillInactive):
		return ConflictError(services.ErrBillInactive.Error())
	case errors.Is(err, storage.ErrConflict):
		return ConflictError("the record was modified concurrently, retry")
	}
	for _, target := range badInput {
		if errors.Is(err, target) {
			return BadRequestError(err.Error())
		}
	}

	log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(),
		"Request failed", err, log.ComponentHTTP, r.Method,
		log.NewFields().WithRoute(r.URL.Path))
	return InternalServerError("internal error")
}

// writeError is shorthand for FromError(r, err).Write(w).
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	FromError(r, err).Write(w)
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}
