package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/possuite/backoffice/internal/core/domain"
)

// EnsureIndexes creates the indexes every repository relies on, including
// the unique constraints that back domain invariants.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		ownersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "verification_token", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		staffCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "store_id", Value: 1}}},
			{Keys: bson.D{{Key: "role_id", Value: 1}}},
		},
		rolesCollection: {
			{Keys: bson.D{{Key: "store_id", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		storesCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "store_id", Value: 1}}},
			{
				Keys: bson.D{{Key: "store_id", Value: 1}, {Key: "sku", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"sku": bson.M{"$type": "string"}}),
			},
		},
		plansCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		subscriptionsCollection: {
			{
				Keys: bson.D{{Key: "owner_id", Value: 1}},
				Options: options.Index().
					SetName("one_active_per_owner").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": string(domain.SubscriptionActive)}),
			},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "end_date", Value: 1}}},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", coll, err)
		}
	}
	return nil
}
