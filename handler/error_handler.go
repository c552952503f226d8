package handler

import (
	"errors"
	"log/slog"
	"maps"
	"net/http"

	"github.com/dmitrymomot/gemsimce/pkg/binder"
	"github.com/dmitrymomot/gemsimce/pkg/logger"
)

// ErrorInfo contains classified error information
type ErrorInfo struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string][]string
	LogLevel   slog.Level
}

func isClientError(statusCode int) bool {
	return statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError
}

// determineLogLevel maps HTTP status codes to appropriate log levels
func determineLogLevel(statusCode int) slog.Level {
	if isClientError(statusCode) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// classifyError analyzes the error and returns structured error information.
// Anything it does not recognise becomes a generic 500 so raw downstream
// messages never reach the client.
func classifyError(err error) ErrorInfo {
	info := ErrorInfo{
		StatusCode: ErrInternalServerError.Code,
		Code:       ErrInternalServerError.Key,
		Message:    ErrInternalServerError.Message,
	}

	var httpErr HTTPError
	var fieldErr fieldErrors

	switch {
	case errors.As(err, &fieldErr):
		info = validationInfo(fieldErr.FieldErrors())
	case errors.As(err, &httpErr):
		info.StatusCode = httpErr.Code
		info.Code = httpErr.Key
		info.Message = httpErr.Error()
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		info.StatusCode = ErrUnsupportedMedia.Code
		info.Code = ErrUnsupportedMedia.Key
		info.Message = "Expected application/json request body"
	case errors.Is(err, binder.ErrFailedToParseJSON), errors.Is(err, binder.ErrFailedToParsePath):
		info.StatusCode = ErrBadRequest.Code
		info.Code = ErrBadRequest.Key
		info.Message = "Malformed request"
	}

	info.LogLevel = determineLogLevel(info.StatusCode)
	return info
}

// fieldErrors is implemented by validation failures, such as
// validator.Errors.
type fieldErrors interface {
	error
	FieldErrors() map[string][]string
}

func validationInfo(fields map[string][]string) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusBadRequest,
		Code:       "validation_error",
		Message:    "Validation failed",
	}
	if len(fields) > 0 {
		info.Details = make(map[string][]string, len(fields))
		maps.Copy(info.Details, fields)
	}
	return info
}

func logError(log *slog.Logger, ctx Context, err error, info ErrorInfo) {
	r := ctx.Request()
	log.LogAttrs(r.Context(), info.LogLevel, "request error",
		logger.Error(err),
		slog.Int("status_code", info.StatusCode),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		logger.Component("error_handler"),
	)
}

// NewErrorHandler creates the JSON error handler used by every module.
// It logs the full error with request metadata and renders a client-safe body.
// Request scoped attributes such as request_id come from the logger's
// context extractors. Configure this once in main and pass it to all modules.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		info := classifyError(err)
		logError(log, ctx, err, info)

		if renderErr := errorResponse(info).Render(ctx.ResponseWriter(), ctx.Request()); renderErr != nil {
			log.ErrorContext(ctx.Request().Context(), "failed to render error response",
				logger.Error(renderErr),
				logger.Event("render_error_response"),
			)
		}
	}
}
