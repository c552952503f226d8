// Package subscription manages the customer subscriptions created from
// e-commerce orders: API key issuance, credential emails, key validation
// and the per-plan gem quota.
package subscription

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("subscription not found")
	ErrMissingAPIKey  = errors.New("api key is required")
	ErrInvalidAPIKey  = errors.New("api key is invalid")
	ErrInactive       = errors.New("subscription is inactive")
	ErrQuotaExceeded  = errors.New("gem quota exceeded")
	ErrKeyCollision   = errors.New("could not issue a unique api key")
	ErrStoreFailure   = errors.New("subscription store failure")
	ErrIssueToken     = errors.New("failed to issue session token")
	ErrInvalidCatalog = errors.New("invalid plan catalog")
	ErrMissingDeps    = errors.New("subscription service is missing a dependency")
)

// Status of a subscription.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Subscription is keyed by customer email. One API key resolves to exactly
// one subscription.
type Subscription struct {
	Email     string    `json:"email" bson:"email" firestore:"email"`
	Name      string    `json:"name" bson:"name" firestore:"name"`
	APIKey    string    `json:"-" bson:"api_key" firestore:"apiKey"`
	Status    Status    `json:"status" bson:"status" firestore:"status"`
	Plan      string    `json:"plan" bson:"plan" firestore:"plan"`
	GemsUsed  int       `json:"gemsUsed" bson:"gems_used" firestore:"gems_used"`
	GemsLimit int       `json:"gemsLimit" bson:"gems_limit" firestore:"gems_limit"`
	OrderID   string    `json:"orderId,omitempty" bson:"order_id,omitempty" firestore:"orderId,omitempty"`
	ProductID string    `json:"productId,omitempty" bson:"product_id,omitempty" firestore:"productId,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at" firestore:"updatedAt"`
}

func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// QuotaLeft reports whether another gem may be generated under limit. A
// negative limit is unlimited.
func QuotaLeft(used, limit int) bool {
	return limit < 0 || used < limit
}

// Store persists subscriptions.
//
// Upsert merges by email: it overwrites the fields carried by sub and keeps
// CreatedAt from the first insert. Lookups return ErrNotFound when nothing
// matches.
//
// ReserveUsage increments gems_used only while it is below limit, as one
// atomic operation, and returns ErrQuotaExceeded otherwise. ReleaseUsage
// undoes a reservation and never drops the counter below zero.
type Store interface {
	Upsert(ctx context.Context, sub Subscription) error
	GetByEmail(ctx context.Context, email string) (*Subscription, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*Subscription, error)
	APIKeyExists(ctx context.Context, apiKey string) (bool, error)
	ReserveUsage(ctx context.Context, email string, limit int) error
	ReleaseUsage(ctx context.Context, email string) error
}
