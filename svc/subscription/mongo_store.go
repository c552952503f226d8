package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection holds one document per customer email.
const Collection = "subscriptions"

// MongoStore persists subscriptions in MongoDB.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection)}
}

// EnsureIndexes creates the unique indexes on email and api_key.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "api_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("api_key_unique"),
		},
	})
	if err != nil {
		return fmt.Errorf("create subscription indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Upsert(ctx context.Context, sub Subscription) error {
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "name", Value: sub.Name},
			{Key: "api_key", Value: sub.APIKey},
			{Key: "status", Value: sub.Status},
			{Key: "plan", Value: sub.Plan},
			{Key: "gems_used", Value: sub.GemsUsed},
			{Key: "gems_limit", Value: sub.GemsLimit},
			{Key: "order_id", Value: sub.OrderID},
			{Key: "product_id", Value: sub.ProductID},
			{Key: "updated_at", Value: sub.UpdatedAt},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "created_at", Value: sub.CreatedAt},
		}},
	}

	_, err := s.coll.UpdateOne(ctx, byEmail(sub.Email), update, options.UpdateOne().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(ErrKeyCollision, err)
	}
	return err
}

func (s *MongoStore) GetByEmail(ctx context.Context, email string) (*Subscription, error) {
	return s.findOne(ctx, byEmail(email))
}

func (s *MongoStore) GetByAPIKey(ctx context.Context, apiKey string) (*Subscription, error) {
	return s.findOne(ctx, bson.D{{Key: "api_key", Value: apiKey}})
}

func (s *MongoStore) APIKeyExists(ctx context.Context, apiKey string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx,
		bson.D{{Key: "api_key", Value: apiKey}},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReserveUsage filters on gems_used so the check and the increment happen
// in a single update.
func (s *MongoStore) ReserveUsage(ctx context.Context, email string, limit int) error {
	filter := byEmail(email)
	if limit >= 0 {
		filter = append(filter, bson.E{Key: "gems_used", Value: bson.D{{Key: "$lt", Value: limit}}})
	}
	res, err := s.coll.UpdateOne(ctx, filter, usageUpdate(1))
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := s.coll.CountDocuments(ctx, byEmail(email), options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrQuotaExceeded
}

func (s *MongoStore) ReleaseUsage(ctx context.Context, email string) error {
	filter := append(byEmail(email), bson.E{Key: "gems_used", Value: bson.D{{Key: "$gt", Value: 0}}})
	_, err := s.coll.UpdateOne(ctx, filter, usageUpdate(-1))
	return err
}

func usageUpdate(delta int) bson.D {
	return bson.D{
		{Key: "$inc", Value: bson.D{{Key: "gems_used", Value: delta}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC()}}},
	}
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.D) (*Subscription, error) {
	var sub Subscription
	err := s.coll.FindOne(ctx, filter).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func byEmail(email string) bson.D {
	return bson.D{{Key: "email", Value: email}}
}
