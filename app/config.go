// Package app wires configuration, stores, services and HTTP routes into
// the running API.
package app

import (
	"github.com/dmitrymomot/gemsimce/modules/billing"
	"github.com/dmitrymomot/gemsimce/pkg/email"
	"github.com/dmitrymomot/gemsimce/pkg/firestore"
	"github.com/dmitrymomot/gemsimce/pkg/genai"
	"github.com/dmitrymomot/gemsimce/pkg/httpserver"
	"github.com/dmitrymomot/gemsimce/pkg/jwt"
	"github.com/dmitrymomot/gemsimce/pkg/mongo"
	"github.com/dmitrymomot/gemsimce/svc/gems"
	"github.com/dmitrymomot/gemsimce/svc/subscription"
)

// Store drivers selectable with STORE_DRIVER.
const (
	DriverMongo     = "mongo"
	DriverFirestore = "firestore"
	DriverMemory    = "memory"
)

// Config aggregates every package configuration. Load it with
// config.Load; nested structs read their own variables.
type Config struct {
	AppEnv      string   `env:"APP_ENV" envDefault:"development"`
	ServiceName string   `env:"SERVICE_NAME" envDefault:"gems-simce-api"`
	Version     string   `env:"APP_VERSION" envDefault:"1.0.0"`
	LogLevel    string   `env:"LOG_LEVEL"`
	StoreDriver string   `env:"STORE_DRIVER" envDefault:"mongo"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	HTTP         httpserver.Config
	Mongo        mongo.Config
	Firestore    firestore.Config
	Email        email.Config
	GenAI        genai.Config
	JWT          jwt.Config
	Billing      billing.Config
	Subscription subscription.Config
	Gems         gems.Config
}
