package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ariproxy/internal/constants"
)

// EnsureCallContextIndexes creates the TTL index that expires bindings once
// expires_at has passed. Documents without expires_at never expire.
func EnsureCallContextIndexes(ctx context.Context, db *mongo.Database, collectionName string) error {
	if collectionName == "" {
		collectionName = constants.DefaultMongoCollection
	}
	collection := db.Collection(collectionName)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().
				SetName("idx_call_contexts_expires_at_ttl").
				SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "value", Value: 1}},
			Options: options.Index().SetName("idx_call_contexts_value"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	return nil
}
