// Package http serves the dashboard as a JSON API.
//
// This file implements the Builder Pattern for JSON responses and maps
// service errors onto status codes.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"trackboard/internal/core"
	"trackboard/internal/export"
	"trackboard/internal/log"
	"trackboard/internal/ports"
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

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body. A nil body writes no
// content.
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
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a response with body {"error": message}.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	NewJSONResponse().Status(code).Body(v).Write(w)
}

// respondError maps a service error to its status. Internal errors are
// logged and replaced by a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var bad *badRequestError
	switch {
	case errors.As(err, &bad):
		BadRequestError(bad.Error()).Write(w)
	case errors.Is(err, core.ErrInvalidInput):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, ports.ErrNotFound):
		NotFoundError("not found").Write(w)
	case errors.Is(err, export.ErrNothingToExport):
		NotFoundError(err.Error()).Write(w)
	default:
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Request failed", err,
			log.ComponentHTTP, r.Method,
			log.LogFields{log.FieldPath: r.URL.Path})
		InternalServerError("internal error").Write(w)
	}
}
