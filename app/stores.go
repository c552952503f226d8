package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/gemsimce/pkg/firestore"
	"github.com/dmitrymomot/gemsimce/pkg/httpserver"
	"github.com/dmitrymomot/gemsimce/pkg/mongo"
	"github.com/dmitrymomot/gemsimce/svc/gems"
	"github.com/dmitrymomot/gemsimce/svc/subscription"
)

// Stores bundles the persistence layer selected by STORE_DRIVER.
type Stores struct {
	Subscriptions subscription.Store
	Gems          gems.Store
	Ready         []httpserver.Check
	Close         func(context.Context) error
}

// OpenStores connects to the configured backend and prepares its indexes.
func OpenStores(ctx context.Context, cfg Config, log *slog.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case DriverMongo:
		client, err := mongo.Connect(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		subs := subscription.NewMongoStore(db)
		gemStore := gems.NewMongoStore(db)
		if err := subs.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		if err := gemStore.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &Stores{
			Subscriptions: subs,
			Gems:          gemStore,
			Ready:         []httpserver.Check{mongo.Healthcheck(client)},
			Close:         client.Disconnect,
		}, nil

	case DriverFirestore:
		client, err := firestore.Connect(ctx, cfg.Firestore)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Subscriptions: subscription.NewFirestoreStore(client),
			Gems:          gems.NewFirestoreStore(client),
			Ready:         []httpserver.Check{firestore.Healthcheck(client)},
			Close:         func(context.Context) error { return client.Close() },
		}, nil

	case DriverMemory:
		return MemoryStores(), nil
	}
	return nil, fmt.Errorf("app: unknown store driver %q", cfg.StoreDriver)
}

// MemoryStores returns process-local stores. Data is lost on restart.
func MemoryStores() *Stores {
	return &Stores{
		Subscriptions: subscription.NewMemoryStore(),
		Gems:          gems.NewMemoryStore(),
		Ready:         []httpserver.Check{func(context.Context) error { return nil }},
		Close:         func(context.Context) error { return nil },
	}
}
