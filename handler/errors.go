package handler

import (
	"errors"
	"net/http"
)

// ErrNilResponse indicates a handler returned nil instead of a Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError represents an HTTP error with status code and a stable key.
// The key is sent to clients as the error code; the message is the safe,
// user-facing text. Wrap an HTTPError with errors.Join to keep the
// underlying cause for logs without leaking it to the client.
type HTTPError struct {
	Code    int    // HTTP status code
	Key     string // Stable error code (e.g., "not_found", "invalid_api_key")
	Message string // Client-facing message
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Key
}

// NewHTTPError creates a custom HTTP error.
//
//	var ErrQuotaExceeded = handler.NewHTTPError(http.StatusPaymentRequired, "quota_exceeded", "Gem quota exhausted")
func NewHTTPError(code int, key, message string) HTTPError {
	return HTTPError{Code: code, Key: key, Message: message}
}

var (
	ErrBadRequest          = HTTPError{Code: http.StatusBadRequest, Key: "bad_request", Message: "Bad request"}
	ErrUnauthorized        = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized", Message: "Unauthorized"}
	ErrPaymentRequired     = HTTPError{Code: http.StatusPaymentRequired, Key: "payment_required", Message: "Payment required"}
	ErrForbidden           = HTTPError{Code: http.StatusForbidden, Key: "forbidden", Message: "Forbidden"}
	ErrNotFound            = HTTPError{Code: http.StatusNotFound, Key: "not_found", Message: "Not found"}
	ErrUnsupportedMedia    = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type", Message: "Unsupported media type"}
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error", Message: "An error occurred processing your request"}
	ErrBadGateway          = HTTPError{Code: http.StatusBadGateway, Key: "bad_gateway", Message: "Upstream service failed"}
	ErrServiceUnavailable  = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable", Message: "Service unavailable"}
)
