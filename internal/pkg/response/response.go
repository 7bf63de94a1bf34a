// Package response writes the console's JSON envelope. The shape mirrors the
// HCCC API envelope so storefront code can read both the same way.
package response

import (
	"encoding/json"
	"io"
	"net/http"
)

// DecodeJSON decodes a request body and closes it.
func DecodeJSON(body io.ReadCloser, v interface{}) error {
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

// Response is the envelope of every JSON answer.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo carries a stable code, a human message and optional per-field details.
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Meta describes one page of a server-side list.
type Meta struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// NewMeta derives page count and neighbours; pages = ceil(total/limit).
func NewMeta(page, limit, total int) Meta {
	m := Meta{Total: total, Page: page, Limit: limit}
	if limit > 0 && total > 0 {
		m.Pages = (total + limit - 1) / limit
	}
	m.HasNext = page < m.Pages
	m.HasPrev = m.Pages > 0 && page > 1
	return m
}

// codes maps statuses to the error code clients switch on.
var codes = map[int]string{
	http.StatusBadRequest:          "BAD_REQUEST",
	http.StatusUnauthorized:        "UNAUTHORIZED",
	http.StatusForbidden:           "FORBIDDEN",
	http.StatusNotFound:            "NOT_FOUND",
	http.StatusConflict:            "CONFLICT",
	http.StatusUnprocessableEntity: "VALIDATION_ERROR",
	http.StatusInternalServerError: "INTERNAL_ERROR",
	http.StatusBadGateway:          "UPSTREAM_UNAVAILABLE",
	http.StatusServiceUnavailable:  "SERVICE_UNAVAILABLE",
	http.StatusGatewayTimeout:      "UPSTREAM_TIMEOUT",
}

func send(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func fail(w http.ResponseWriter, status int, message string, details map[string]string) {
	send(w, status, Response{Error: &ErrorInfo{Code: codes[status], Message: message, Details: details}})
}

// JSON writes data with the given status; success follows the 2xx range.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	send(w, status, Response{Success: status/100 == 2, Data: data})
}

func OK(w http.ResponseWriter, data interface{})      { JSON(w, http.StatusOK, data) }
func Created(w http.ResponseWriter, data interface{}) { JSON(w, http.StatusCreated, data) }

// Accepted answers an optimistic update whose outcome is still in flight.
func Accepted(w http.ResponseWriter, data interface{}) { JSON(w, http.StatusAccepted, data) }

func NoContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

// WithMeta writes one page of a list.
func WithMeta(w http.ResponseWriter, data interface{}, meta Meta) {
	send(w, http.StatusOK, Response{Success: true, Data: data, Meta: &meta})
}

// Error writes an error with an explicit code, for codes outside the status table.
func Error(w http.ResponseWriter, status int, code, message string) {
	send(w, status, Response{Error: &ErrorInfo{Code: code, Message: message}})
}

func BadRequest(w http.ResponseWriter, message string)   { fail(w, http.StatusBadRequest, message, nil) }
func Unauthorized(w http.ResponseWriter, message string) { fail(w, http.StatusUnauthorized, message, nil) }
func Forbidden(w http.ResponseWriter, message string)    { fail(w, http.StatusForbidden, message, nil) }
func NotFound(w http.ResponseWriter, message string)     { fail(w, http.StatusNotFound, message, nil) }
func Conflict(w http.ResponseWriter, message string)     { fail(w, http.StatusConflict, message, nil) }

// ValidationError answers 422 with one message per offending field.
func ValidationError(w http.ResponseWriter, details map[string]string) {
	fail(w, http.StatusUnprocessableEntity, "Validation failed", details)
}

func InternalError(w http.ResponseWriter) {
	fail(w, http.StatusInternalServerError, "An unexpected error occurred", nil)
}

// BadGateway is used when the HCCC API cannot be reached.
func BadGateway(w http.ResponseWriter, message string) {
	fail(w, http.StatusBadGateway, message, nil)
}

func GatewayTimeout(w http.ResponseWriter) {
	fail(w, http.StatusGatewayTimeout, "The gameroom service did not respond in time", nil)
}

// ServiceUnavailable answers when a dependency is down or missing.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	fail(w, http.StatusServiceUnavailable, message, nil)
}
