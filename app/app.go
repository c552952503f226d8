package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/gemsimce/pkg/email"
	"github.com/dmitrymomot/gemsimce/pkg/genai"
	"github.com/dmitrymomot/gemsimce/pkg/httpserver"
	"github.com/dmitrymomot/gemsimce/pkg/jwt"
	"github.com/dmitrymomot/gemsimce/pkg/logger"
	"github.com/dmitrymomot/gemsimce/svc/gems"
	"github.com/dmitrymomot/gemsimce/svc/subscription"
)

// Run builds the API from cfg and serves it until ctx is cancelled or the
// process receives SIGINT or SIGTERM.
func Run(ctx context.Context, cfg Config, log *slog.Logger) error {
	stores, err := OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(context.WithoutCancel(ctx)); err != nil {
			log.Error("failed to close stores", logger.Error(err))
		}
	}()

	generator, err := genai.NewGemini(ctx, cfg.GenAI)
	if err != nil {
		return err
	}

	deps, err := NewDeps(cfg, log, stores, generator)
	if err != nil {
		return err
	}

	log.Info("starting api",
		slog.String("addr", cfg.HTTP.Addr),
		slog.String("store", cfg.StoreDriver),
		slog.String("email", cfg.Email.Driver),
	)
	return httpserver.New(log, httpserver.WithConfig(cfg.HTTP)).Run(ctx, NewRouter(deps))
}

// NewDeps constructs the services on top of stores and a text generator.
func NewDeps(cfg Config, log *slog.Logger, stores *Stores, generator genai.Generator) (Deps, error) {
	if stores == nil || generator == nil {
		return Deps{}, errors.New("app: stores and generator are required")
	}

	tokens, err := jwt.New(cfg.JWT)
	if err != nil {
		return Deps{}, err
	}
	sender, err := email.New(cfg.Email)
	if err != nil {
		return Deps{}, err
	}

	subs, err := subscription.NewService(cfg.Subscription, stores.Subscriptions, sender, tokens,
		subscription.WithLogger(log),
	)
	if err != nil {
		return Deps{}, err
	}

	gemSvc, err := gems.NewService(cfg.Gems, stores.Gems, generator,
		gems.WithLogger(log),
		gems.WithQuota(subs),
	)
	if err != nil {
		return Deps{}, err
	}

	return Deps{
		Config:        cfg,
		Log:           log,
		Subscriptions: subs,
		Gems:          gemSvc,
		Tokens:        tokens,
		Ready:         stores.Ready,
	}, nil
}
