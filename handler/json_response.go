package handler

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Code    string              `json:"code,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures JSON response
type JSONOption func(*jsonResponse)

// WithJSONStatus sets custom HTTP status code
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// JSON renders v as the response body. The body is written verbatim,
// so handlers control the exact response envelope.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{
		status: http.StatusOK,
		body:   v,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// errorResult carries an error back to Wrap, which hands it to the
// configured ErrorHandler instead of rendering it directly.
type errorResult struct {
	err error
}

func (e errorResult) Render(w http.ResponseWriter, r *http.Request) error {
	return errorResponse(classifyError(e.err)).Render(w, r)
}

// Error returns a response that is rendered by the error handler.
// The error is classified into a status code and a client-safe message;
// the full error is only logged.
func Error(err error) Response {
	if err == nil {
		err = ErrInternalServerError
	}
	return errorResult{err: err}
}

func errorResponse(info ErrorInfo) Response {
	return JSON(ErrorBody{
		Success: false,
		Error:   info.Message,
		Code:    info.Code,
		Details: info.Details,
	}, WithJSONStatus(info.StatusCode))
}
