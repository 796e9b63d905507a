package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

const usageCollection = "usage_counters"

// UsageRepository keeps one counter document per tenant-scoped resource
// kind. A conditional $inc on that document serializes concurrent creators,
// so a quota can never be overshot.
type UsageRepository struct {
	coll *mongo.Collection
}

func NewUsageRepository(db *mongo.Database) *UsageRepository {
	return &UsageRepository{coll: db.Collection(usageCollection)}
}

func counterID(key ports.UsageKey) string {
	return string(key.Kind) + ":" + key.ScopeID
}

func (r *UsageRepository) Reserve(ctx context.Context, key ports.UsageKey, current, quota int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id := counterID(key)
	now := time.Now().UTC()

	seed := bson.M{"$setOnInsert": bson.M{
		"kind":       string(key.Kind),
		"scope_id":   key.ScopeID,
		"count":      current,
		"created_at": now,
	}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, seed, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("seed usage counter: %w", err)
	}

	res := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "count": bson.M{"$lt": quota}},
		bson.M{"$inc": bson.M{"count": 1}, "$set": bson.M{"updated_at": now}},
	)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrLimitExceeded
		}
		return fmt.Errorf("reserve usage: %w", err)
	}
	return nil
}

func (r *UsageRepository) Release(ctx context.Context, key ports.UsageKey) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": counterID(key), "count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"count": -1}, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("release usage: %w", err)
	}
	return nil
}

func (r *UsageRepository) Reset(ctx context.Context, key ports.UsageKey) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": counterID(key)}); err != nil {
		return fmt.Errorf("reset usage: %w", err)
	}
	return nil
}
