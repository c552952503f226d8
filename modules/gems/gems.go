// Package gems serves plan generation and the read-only plan listing.
// Every route expects a session token verified upstream.
package gems

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/gemsimce/handler"
	"github.com/dmitrymomot/gemsimce/modules/auth"
	"github.com/dmitrymomot/gemsimce/pkg/binder"
	"github.com/dmitrymomot/gemsimce/svc/gems"
	"github.com/dmitrymomot/gemsimce/svc/subscription"
)

var (
	ErrGemNotFound          = handler.NewHTTPError(http.StatusNotFound, "gem_not_found", "No encontrada")
	ErrQuotaExceeded        = handler.NewHTTPError(http.StatusPaymentRequired, "quota_exceeded", "Has alcanzado el límite de gems de tu plan")
	ErrSubscriptionInactive = handler.NewHTTPError(http.StatusForbidden, "subscription_inactive", "Suscripción inactiva")
	ErrGenerationFailed     = handler.NewHTTPError(http.StatusInternalServerError, "generation_failed", "No se pudo generar el plan")
)

// Service is the subset of gems.Service used by the HTTP layer.
type Service interface {
	Generate(ctx context.Context, req gems.GenerateRequest) (*gems.Gem, error)
	List(ctx context.Context, limit int) ([]gems.Gem, error)
	Get(ctx context.Context, id string) (*gems.Gem, error)
}

type Module struct {
	svc          Service
	errorHandler handler.ErrorHandler[handler.Context]
}

func New(svc Service, errorHandler handler.ErrorHandler[handler.Context]) *Module {
	if errorHandler == nil {
		errorHandler = handler.NewErrorHandler(nil)
	}
	return &Module{svc: svc, errorHandler: errorHandler}
}

// gemBody accepts the numbers and extra fields the form sends.
func gemBody() handler.Bind {
	return binder.JSON(binder.WithUnknownFields())
}

// Handle serves the plan collection: GET /, POST / and GET /{id}.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/", handler.Wrap(m.list,
		handler.WithErrorHandler[handler.Context, struct{}](m.errorHandler),
	))
	r.Post("/", handler.Wrap(m.create,
		handler.WithBinders[handler.Context, gems.SchoolInput](gemBody()),
		handler.WithErrorHandler[handler.Context, gems.SchoolInput](m.errorHandler),
	))
	r.Get("/{id}", handler.Wrap(m.get,
		handler.WithBinders[handler.Context, GetGemRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, GetGemRequest](m.errorHandler),
	))
	return r
}

// SIMCEHandler serves the SIMCE Lenguaje generator.
func (m *Module) SIMCEHandler() http.HandlerFunc {
	return handler.Wrap(m.createSIMCE,
		handler.WithBinders[handler.Context, gems.SIMCEInput](gemBody()),
		handler.WithErrorHandler[handler.Context, gems.SIMCEInput](m.errorHandler),
	)
}

type GetGemRequest struct {
	ID string `path:"id"`
}

type ListResponse struct {
	Success bool       `json:"success"`
	Data    []gems.Gem `json:"data"`
}

type GemResponse struct {
	Success bool      `json:"success"`
	Data    *gems.Gem `json:"data"`
}

type CreateResponse struct {
	Success bool      `json:"success"`
	ID      string    `json:"id"`
	Plan    string    `json:"plan"`
	Data    *gems.Gem `json:"data"`
}

type SIMCEResponse struct {
	Status    string   `json:"status"`
	GemID     string   `json:"gem_id"`
	GemSIMCE  string   `json:"gem_simce"`
	Nivel     string   `json:"nivel"`
	Resultado *float64 `json:"resultado"`
	Timestamp string   `json:"timestamp"`
}

func (m *Module) list(ctx handler.Context, _ struct{}) handler.Response {
	list, err := m.svc.List(ctx, gems.DefaultListLimit)
	if err != nil {
		return handler.Error(mapError(err))
	}
	return handler.JSON(ListResponse{Success: true, Data: list})
}

func (m *Module) get(ctx handler.Context, req GetGemRequest) handler.Response {
	gem, err := m.svc.Get(ctx, req.ID)
	if err != nil {
		return handler.Error(mapError(err))
	}
	return handler.JSON(GemResponse{Success: true, Data: gem})
}

func (m *Module) create(ctx handler.Context, in gems.SchoolInput) handler.Response {
	owner, _ := auth.Owner(ctx)
	gem, err := m.svc.Generate(ctx, gems.GenerateRequest{
		Variant: gems.VariantSchool,
		Owner:   owner,
		School:  in,
	})
	if err != nil {
		return handler.Error(mapError(err))
	}
	return handler.JSON(CreateResponse{Success: true, ID: gem.ID, Plan: gem.Plan, Data: gem})
}

func (m *Module) createSIMCE(ctx handler.Context, in gems.SIMCEInput) handler.Response {
	owner, _ := auth.Owner(ctx)
	gem, err := m.svc.Generate(ctx, gems.GenerateRequest{
		Variant: gems.VariantSIMCE,
		Owner:   owner,
		SIMCE:   in,
	})
	if err != nil {
		return handler.Error(mapError(err))
	}
	return handler.JSON(SIMCEResponse{
		Status:    "success",
		GemID:     gem.ID,
		GemSIMCE:  gem.Plan,
		Nivel:     gem.Nivel.String(),
		Resultado: gem.Resultado,
		Timestamp: gem.CreatedAt.Format(time.RFC3339Nano),
	})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, gems.ErrNotFound):
		return errors.Join(ErrGemNotFound, err)
	case errors.Is(err, subscription.ErrQuotaExceeded):
		return errors.Join(ErrQuotaExceeded, err)
	case errors.Is(err, subscription.ErrInactive):
		return errors.Join(ErrSubscriptionInactive, err)
	case errors.Is(err, gems.ErrGenerationFailed):
		return errors.Join(ErrGenerationFailed, err)
	}
	return err
}
