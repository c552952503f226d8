package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrymomot/gemsimce/handler"
	"github.com/dmitrymomot/gemsimce/modules/auth"
	"github.com/dmitrymomot/gemsimce/modules/billing"
	gemsmod "github.com/dmitrymomot/gemsimce/modules/gems"
	"github.com/dmitrymomot/gemsimce/pkg/clientip"
	"github.com/dmitrymomot/gemsimce/pkg/httpserver"
	"github.com/dmitrymomot/gemsimce/pkg/jwt"
	"github.com/dmitrymomot/gemsimce/pkg/requestid"
	"github.com/dmitrymomot/gemsimce/pkg/webhook"
	"github.com/dmitrymomot/gemsimce/svc/gems"
	"github.com/dmitrymomot/gemsimce/svc/subscription"
)

// Deps are the constructed services the router serves.
type Deps struct {
	Config        Config
	Log           *slog.Logger
	Subscriptions *subscription.Service
	Gems          *gems.Service
	Tokens        *jwt.Service
	Ready         []httpserver.Check
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// NewRouter mounts every module. Gem routes require a session token.
func NewRouter(d Deps) http.Handler {
	errorHandler := handler.NewErrorHandler(d.Log)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestid.Header, webhook.SignatureHeader},
		ExposedHeaders: []string{requestid.Header},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler(handler.NewContext(w, r), handler.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errorHandler(handler.NewContext(w, r), handler.NewHTTPError(http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed"))
	})

	health := HealthResponse{Status: "ok", Service: d.Config.ServiceName, Version: d.Config.Version}
	r.Get("/health", handler.Wrap(func(handler.Context, struct{}) handler.Response {
		return handler.JSON(health)
	}))
	r.Get("/health/ready", httpserver.ReadinessHandler(d.Log, d.Ready...))

	authModule := auth.New(d.Subscriptions, errorHandler)
	r.Mount("/auth", authModule.Handle())
	r.Mount("/api/v1/auth", authModule.Handle())

	r.Mount("/webhook", billing.New(d.Config.Billing, d.Subscriptions, d.Log, errorHandler).Handle())

	gemsModule := gemsmod.New(d.Gems, errorHandler)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken(d.Tokens, errorHandler))
		r.Mount("/api/v1/gems", gemsModule.Handle())
		r.Post("/gems/simce-lenguaje", gemsModule.SIMCEHandler())
	})

	return r
}
