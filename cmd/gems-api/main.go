package main

import (
	"context"
	"os"

	"github.com/dmitrymomot/gemsimce/app"
	"github.com/dmitrymomot/gemsimce/pkg/clientip"
	"github.com/dmitrymomot/gemsimce/pkg/config"
	"github.com/dmitrymomot/gemsimce/pkg/logger"
	"github.com/dmitrymomot/gemsimce/pkg/requestid"
)

func main() {
	var cfg app.Config
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.AppEnv, cfg.ServiceName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	if err := app.Run(context.Background(), cfg, log); err != nil {
		log.Error("api stopped", logger.Error(err))
		os.Exit(1)
	}
}
