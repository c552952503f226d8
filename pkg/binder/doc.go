// Package binder binds HTTP request data to Go structs for handler.Wrap.
//
// Two binders are provided:
//
//   - JSON decodes an application/json body with a size limit, strict field
//     checking (opt out with WithUnknownFields) and string sanitizing.
//   - Path fills fields tagged `path:"name"` from router path parameters,
//     e.g. binder.Path(chi.URLParam).
//
// Binders are applied in order; all errors wrap one of the package sentinel
// errors so the handler package can map them to 400/415 responses.
//
//	type GetGemRequest struct {
//		ID string `path:"id"`
//	}
package binder
