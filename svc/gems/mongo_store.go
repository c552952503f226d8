package gems

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection holds generated gems keyed by their uuid.
const Collection = "gems"

// MongoStore persists gems in MongoDB.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection)}
}

// EnsureIndexes creates the index backing newest-first listing.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: -1}},
		Options: options.Index().SetName("created_at_desc"),
	})
	if err != nil {
		return fmt.Errorf("create gem indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, gem Gem) error {
	_, err := s.coll.InsertOne(ctx, gem)
	return err
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Gem, error) {
	var gem Gem
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&gem)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &gem, nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Gem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	out := make([]Gem, 0, limit)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
