package gems

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore persists gems in Cloud Firestore. The document id is the
// gem id.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) coll() *firestore.CollectionRef {
	return s.client.Collection(Collection)
}

func (s *FirestoreStore) Create(ctx context.Context, gem Gem) error {
	_, err := s.coll().Doc(gem.ID).Create(ctx, gem)
	return err
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*Gem, error) {
	snap, err := s.coll().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(snap)
}

func (s *FirestoreStore) List(ctx context.Context, limit int) ([]Gem, error) {
	iter := s.coll().OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx)
	defer iter.Stop()

	out := make([]Gem, 0, limit)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		gem, err := decodeSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *gem)
	}
	return out, nil
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (*Gem, error) {
	var gem Gem
	if err := snap.DataTo(&gem); err != nil {
		return nil, err
	}
	gem.ID = snap.Ref.ID
	return &gem, nil
}
