// Package handler provides type-safe HTTP request handling for the Gems API.
//
// Handlers are generic functions that receive a bound request struct and
// return a Response. Binding, error classification and logging happen in
// Wrap, so handler bodies contain only business calls:
//
//	type ValidateKeyRequest struct {
//		APIKey string `json:"apiKey"`
//	}
//
//	func (s *Service) validateKey(ctx handler.Context, req ValidateKeyRequest) handler.Response {
//		res, err := s.subs.ValidateKey(ctx, req.APIKey)
//		if err != nil {
//			return handler.Error(err)
//		}
//		return handler.JSON(res)
//	}
//
//	r.Post("/validate-key", handler.Wrap(s.validateKey,
//		handler.WithBinders[handler.Context, ValidateKeyRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, ValidateKeyRequest](errHandler),
//	))
//
// # Errors
//
// Return handler.Error(err) from a handler. The error handler built by
// NewErrorHandler classifies it:
//
//   - validation failures (validator.Errors) -> 400 with per-field details
//   - HTTPError (possibly joined with a cause) -> its status, key and message
//   - binder parse errors -> 400 / 415
//   - anything else -> 500 with a generic message
//
// The full error chain is logged with the request id; clients only see the
// safe message and the stable code.
package handler
