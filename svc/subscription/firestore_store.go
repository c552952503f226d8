package subscription

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore persists subscriptions in Cloud Firestore, one document
// per email.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) coll() *firestore.CollectionRef {
	return s.client.Collection(Collection)
}

// Upsert merges sub into the email document inside a transaction so that
// createdAt is only written on insert.
func (s *FirestoreStore) Upsert(ctx context.Context, sub Subscription) error {
	ref := s.coll().Doc(sub.Email)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		fields := map[string]any{
			"email":      sub.Email,
			"name":       sub.Name,
			"apiKey":     sub.APIKey,
			"status":     string(sub.Status),
			"plan":       sub.Plan,
			"gems_used":  sub.GemsUsed,
			"gems_limit": sub.GemsLimit,
			"orderId":    sub.OrderID,
			"productId":  sub.ProductID,
			"updatedAt":  sub.UpdatedAt,
		}
		if snap == nil || !snap.Exists() {
			fields["createdAt"] = sub.CreatedAt
		}
		return tx.Set(ref, fields, firestore.MergeAll)
	})
}

func (s *FirestoreStore) GetByEmail(ctx context.Context, email string) (*Subscription, error) {
	snap, err := s.coll().Doc(email).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(snap)
}

func (s *FirestoreStore) GetByAPIKey(ctx context.Context, apiKey string) (*Subscription, error) {
	iter := s.coll().Where("apiKey", "==", apiKey).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(snap)
}

func (s *FirestoreStore) APIKeyExists(ctx context.Context, apiKey string) (bool, error) {
	_, err := s.GetByAPIKey(ctx, apiKey)
	switch {
	case errors.Is(err, ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// ReserveUsage reads and increments the counter inside one transaction.
func (s *FirestoreStore) ReserveUsage(ctx context.Context, email string, limit int) error {
	return s.adjustUsage(ctx, email, func(used int) (int, error) {
		if !QuotaLeft(used, limit) {
			return 0, ErrQuotaExceeded
		}
		return 1, nil
	})
}

func (s *FirestoreStore) ReleaseUsage(ctx context.Context, email string) error {
	return s.adjustUsage(ctx, email, func(used int) (int, error) {
		if used <= 0 {
			return 0, nil
		}
		return -1, nil
	})
}

func (s *FirestoreStore) adjustUsage(ctx context.Context, email string, delta func(used int) (int, error)) error {
	ref := s.coll().Doc(email)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		sub, err := decodeSnapshot(snap)
		if err != nil {
			return err
		}
		d, err := delta(sub.GemsUsed)
		if err != nil || d == 0 {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "gems_used", Value: firestore.Increment(d)},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (*Subscription, error) {
	var sub Subscription
	if err := snap.DataTo(&sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
