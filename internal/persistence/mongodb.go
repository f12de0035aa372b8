package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"ariproxy/internal/constants"
	apperrors "ariproxy/pkg/errors"
	"ariproxy/pkg/health"
)

type mongoBinding struct {
	Key       string     `bson:"_id"`
	Value     string     `bson:"value"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

// MongoStore keeps one document per key. Expiry relies on the TTL index on
// expires_at; Get also hides documents the TTL monitor has not removed yet.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	ttl        time.Duration
	now        func() time.Time
}

// NewMongoStore takes ownership of client; Close disconnects it.
func NewMongoStore(client *mongo.Client, database, collection string, ttl time.Duration) *MongoStore {
	if collection == "" {
		collection = constants.DefaultMongoCollection
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (s *MongoStore) Put(ctx context.Context, key, value string) error {
	now := s.now()
	set := bson.M{
		"value":      value,
		"updated_at": now,
	}
	update := bson.M{"$set": set}
	if s.ttl > 0 {
		set["expires_at"] = now.Add(s.ttl)
	} else {
		update["$unset"] = bson.M{"expires_at": ""}
	}

	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return apperrors.Wrap(fmt.Errorf("mongodb upsert failed: %w", err), apperrors.ErrPersistence)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, key string) (string, bool, error) {
	var binding mongoBinding
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&binding)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.Wrap(fmt.Errorf("mongodb find failed: %w", err), apperrors.ErrPersistence)
	}
	if binding.ExpiresAt != nil && !s.now().Before(*binding.ExpiresAt) {
		return "", false, nil
	}
	return binding.Value, true, nil
}

func (s *MongoStore) CheckHealth(ctx context.Context) health.Report {
	return health.FromError("persistence.mongodb", s.client.Ping(ctx, readpref.Primary()))
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
