package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ResourceCounter counts live documents per tenant scope.
type ResourceCounter struct {
	products *mongo.Collection
	staff    *mongo.Collection
	stores   *mongo.Collection
}

func NewResourceCounter(db *mongo.Database) *ResourceCounter {
	return &ResourceCounter{
		products: db.Collection(productsCollection),
		staff:    db.Collection(staffCollection),
		stores:   db.Collection(storesCollection),
	}
}

func (c *ResourceCounter) CountProducts(ctx context.Context, storeID string) (int64, error) {
	return count(ctx, c.products, bson.M{"store_id": storeID})
}

func (c *ResourceCounter) CountStaff(ctx context.Context, storeID string) (int64, error) {
	return count(ctx, c.staff, bson.M{"store_id": storeID})
}

func (c *ResourceCounter) CountStores(ctx context.Context, ownerID string) (int64, error) {
	return count(ctx, c.stores, bson.M{"owner_id": ownerID})
}

func count(ctx context.Context, coll *mongo.Collection, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", coll.Name(), err)
	}
	return n, nil
}
