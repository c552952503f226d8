// Package auth exposes the API key exchange endpoint and the session token
// gate used by protected routes.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/gemsimce/handler"
	"github.com/dmitrymomot/gemsimce/pkg/binder"
	"github.com/dmitrymomot/gemsimce/pkg/jwt"
	"github.com/dmitrymomot/gemsimce/svc/subscription"
)

var (
	ErrAPIKeyRequired       = handler.NewHTTPError(http.StatusBadRequest, "api_key_required", "API Key requerida")
	ErrAPIKeyInvalid        = handler.NewHTTPError(http.StatusUnauthorized, "invalid_api_key", "API Key inválida")
	ErrSubscriptionInactive = handler.NewHTTPError(http.StatusForbidden, "subscription_inactive", "Suscripción inactiva")
	ErrTokenRequired        = handler.NewHTTPError(http.StatusUnauthorized, "token_required", "Token requerido")
	ErrTokenInvalid         = handler.NewHTTPError(http.StatusForbidden, "invalid_token", "Token inválido")
)

// KeyValidator exchanges API keys for session tokens.
type KeyValidator interface {
	ValidateKey(ctx context.Context, key string) (*subscription.Session, error)
}

// Module serves POST /validate-key under its mount point.
type Module struct {
	svc          KeyValidator
	errorHandler handler.ErrorHandler[handler.Context]
}

func New(svc KeyValidator, errorHandler handler.ErrorHandler[handler.Context]) *Module {
	if errorHandler == nil {
		errorHandler = handler.NewErrorHandler(nil)
	}
	return &Module{svc: svc, errorHandler: errorHandler}
}

func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()
	r.Post("/validate-key", handler.Wrap(m.validateKey,
		handler.WithBinders[handler.Context, ValidateKeyRequest](binder.JSON(binder.WithUnknownFields())),
		handler.WithErrorHandler[handler.Context, ValidateKeyRequest](m.errorHandler),
	))
	return r
}

type ValidateKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// User is the public projection of a subscription. It never carries the
// API key.
type User struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Plan      string `json:"plan"`
	GemsUsed  int    `json:"gemsUsed"`
	GemsLimit int    `json:"gemsLimit"`
}

type ValidateKeyResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	User      User   `json:"user"`
}

func (m *Module) validateKey(ctx handler.Context, req ValidateKeyRequest) handler.Response {
	session, err := m.svc.ValidateKey(ctx, req.APIKey)
	if err != nil {
		return handler.Error(mapError(err))
	}

	sub := session.Subscription
	return handler.JSON(ValidateKeyResponse{
		Success:   true,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Unix(),
		User: User{
			Email:     sub.Email,
			Name:      sub.Name,
			Plan:      sub.Plan,
			GemsUsed:  sub.GemsUsed,
			GemsLimit: sub.GemsLimit,
		},
	})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, subscription.ErrMissingAPIKey):
		return errors.Join(ErrAPIKeyRequired, err)
	case errors.Is(err, subscription.ErrInvalidAPIKey):
		return errors.Join(ErrAPIKeyInvalid, err)
	case errors.Is(err, subscription.ErrInactive):
		return errors.Join(ErrSubscriptionInactive, err)
	}
	return err
}

// RequireToken gates a route on a valid session token. Rejections are
// rendered by errorHandler so they share the JSON error shape.
func RequireToken(tokens *jwt.Service, errorHandler handler.ErrorHandler[handler.Context]) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = handler.NewErrorHandler(nil)
	}
	return jwt.Middleware(tokens, jwt.WithErrorResponder(func(w http.ResponseWriter, r *http.Request, err error) {
		mapped := errors.Join(ErrTokenInvalid, err)
		if jwt.StatusCode(err) == http.StatusUnauthorized {
			mapped = errors.Join(ErrTokenRequired, err)
		}
		errorHandler(handler.NewContext(w, r), mapped)
	}))
}

// Owner returns the email of the authenticated caller.
func Owner(ctx context.Context) (string, bool) {
	claims, ok := jwt.ClaimsFromContext(ctx)
	if !ok || claims.Email == "" {
		return "", false
	}
	return claims.Email, true
}
