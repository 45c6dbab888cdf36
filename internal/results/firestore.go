package results

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on a Firestore collection, one document
// per key.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore returns a store backed by the named collection.
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		collection: collection,
	}
}

func (s *FirestoreStore) Put(ctx context.Context, key string, rec Record) error {
	if key == "" {
		return fmt.Errorf("result key must not be empty")
	}
	if _, err := s.client.Collection(s.collection).Doc(key).Set(ctx, rec); err != nil {
		return fmt.Errorf("failed to store result %q: %w", key, err)
	}
	return nil
}

func (s *FirestoreStore) Get(ctx context.Context, key string) (Record, bool, error) {
	if key == "" {
		return Record{}, false, fmt.Errorf("result key must not be empty")
	}

	snap, err := s.client.Collection(s.collection).Doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to fetch result %q: %w", key, err)
	}

	var rec Record
	if err := snap.DataTo(&rec); err != nil {
		return Record{}, false, fmt.Errorf("failed to decode result %q: %w", key, err)
	}
	return rec, true, nil
}
