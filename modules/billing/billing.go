// Package billing receives commerce webhooks and turns completed orders
// into active subscriptions.
package billing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/gemsimce/handler"
	"github.com/dmitrymomot/gemsimce/pkg/clientip"
	"github.com/dmitrymomot/gemsimce/pkg/logger"
	"github.com/dmitrymomot/gemsimce/pkg/webhook"
	"github.com/dmitrymomot/gemsimce/svc/subscription"
)

// MaxBodySize caps webhook deliveries.
const MaxBodySize = 256 << 10

var (
	ErrInvalidSignature = handler.NewHTTPError(http.StatusUnauthorized, "invalid_signature", "Invalid signature")
	ErrInvalidPayload   = handler.NewHTTPError(http.StatusBadRequest, "invalid_payload", "Invalid webhook payload")
)

// Config is loaded from the environment by pkg/config.
type Config struct {
	WebhookSecret string `env:"JUMPSELLER_WEBHOOK_SECRET"`
}

// OrderHandler activates subscriptions for completed orders.
type OrderHandler interface {
	HandleOrderCompleted(ctx context.Context, order subscription.Order) (*subscription.Subscription, error)
}

// Module serves POST /jumpseller under its mount point.
type Module struct {
	cfg          Config
	orders       OrderHandler
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

func New(cfg Config, orders OrderHandler, log *slog.Logger, errorHandler handler.ErrorHandler[handler.Context]) *Module {
	if log == nil {
		log = logger.Discard()
	}
	if errorHandler == nil {
		errorHandler = handler.NewErrorHandler(log)
	}
	return &Module{
		cfg:          cfg,
		orders:       orders,
		log:          log.With(logger.Component("billing")),
		errorHandler: errorHandler,
	}
}

func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()
	r.Post("/jumpseller", handler.Wrap(m.jumpseller,
		handler.WithBinders[handler.Context, Delivery](bindDelivery),
		handler.WithErrorHandler[handler.Context, Delivery](m.errorHandler),
	))
	return r
}

// Delivery is a raw webhook request. The body is kept verbatim because the
// signature covers its data member.
type Delivery struct {
	Body      []byte
	Signature string
}

func bindDelivery(r *http.Request, v any) error {
	d, ok := v.(*Delivery)
	if !ok {
		return fmt.Errorf("billing: cannot bind delivery into %T", v)
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize+1))
	if err != nil {
		return errors.Join(ErrInvalidPayload, err)
	}
	if len(body) > MaxBodySize {
		return errors.Join(ErrInvalidPayload, fmt.Errorf("body exceeds %d bytes", MaxBodySize))
	}
	d.Body = body
	d.Signature = r.Header.Get(webhook.SignatureHeader)
	return nil
}

type OrderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ReceivedResponse struct {
	Received bool `json:"received"`
}

func (m *Module) jumpseller(ctx handler.Context, d Delivery) handler.Response {
	// The signature covers the envelope's data member, so a body that cannot
	// be parsed cannot be authenticated either.
	env, err := webhook.ParseEnvelope(d.Body)
	if err == nil {
		err = webhook.Verify(m.cfg.WebhookSecret, env.Data, d.Signature)
	}
	if err != nil {
		m.log.WarnContext(ctx, "webhook signature rejected",
			logger.Event(env.Event),
			slog.String("source_ip", clientip.FromContext(ctx)),
			logger.Error(err),
		)
		return handler.Error(errors.Join(ErrInvalidSignature, err))
	}

	if env.Event != subscription.EventOrderCompleted {
		m.log.InfoContext(ctx, "webhook event ignored", logger.Event(env.Event))
		return handler.JSON(ReceivedResponse{Received: true})
	}

	order, err := subscription.ParseOrder(env.Data)
	if err != nil {
		return handler.Error(errors.Join(ErrInvalidPayload, err))
	}
	if _, err := m.orders.HandleOrderCompleted(ctx, order); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(OrderResponse{Success: true, Message: "Subscription created"})
}
