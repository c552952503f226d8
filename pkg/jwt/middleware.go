package jwt

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrorResponder writes the response for a rejected request.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	respond ErrorResponder
}

// WithErrorResponder replaces the default JSON rejection body.
func WithErrorResponder(fn ErrorResponder) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.respond = fn
		}
	}
}

// Middleware requires "Authorization: Bearer <token>". A missing or
// malformed header is rejected with ErrMissingToken, a token that fails
// verification with ErrInvalidToken or ErrExpiredToken. Verified claims are
// stored in the request context.
func Middleware(svc *Service, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{respond: defaultResponder}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				cfg.respond(w, r, ErrMissingToken)
				return
			}

			claims, err := svc.Parse(token)
			if err != nil {
				cfg.respond(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// BearerToken extracts the token from the Authorization header. The scheme
// is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// StatusCode maps middleware errors to HTTP status: 401 when no token was
// presented, 403 when the presented token is not acceptable.
func StatusCode(err error) int {
	if errors.Is(err, ErrMissingToken) {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

func defaultResponder(w http.ResponseWriter, _ *http.Request, err error) {
	status := StatusCode(err)
	msg := "Token requerido"
	if status == http.StatusForbidden {
		msg = "Token inválido"
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
