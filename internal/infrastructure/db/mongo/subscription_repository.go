package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/possuite/backoffice/internal/core/domain"
)

const subscriptionsCollection = "user_subscriptions"

// SubscriptionRepository stores user subscriptions. The partial unique index
// on owner_id over active records makes a second concurrent active insert
// fail with a duplicate key, reported as domain.ErrConflict.
type SubscriptionRepository struct {
	coll *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{coll: db.Collection(subscriptionsCollection)}
}

type mongoSubscription struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID          string             `bson:"owner_id"`
	PlanID           string             `bson:"plan_id"`
	Status           string             `bson:"status"`
	StartDate        time.Time          `bson:"start_date"`
	EndDate          time.Time          `bson:"end_date"`
	AutoRenew        bool               `bson:"auto_renew"`
	PaymentMethod    string             `bson:"payment_method,omitempty"`
	PaymentReference string             `bson:"payment_reference,omitempty"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

func (m mongoSubscription) toDomain() *domain.UserSubscription {
	return &domain.UserSubscription{
		ID:               m.ID.Hex(),
		OwnerID:          m.OwnerID,
		PlanID:           m.PlanID,
		Status:           domain.SubscriptionStatus(m.Status),
		StartDate:        m.StartDate.UTC(),
		EndDate:          m.EndDate.UTC(),
		AutoRenew:        m.AutoRenew,
		PaymentMethod:    domain.PaymentMethod(m.PaymentMethod),
		PaymentReference: m.PaymentReference,
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *domain.UserSubscription) (*domain.UserSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, mongoSubscription{
		OwnerID:          s.OwnerID,
		PlanID:           s.PlanID,
		Status:           string(s.Status),
		StartDate:        s.StartDate,
		EndDate:          s.EndDate,
		AutoRenew:        s.AutoRenew,
		PaymentMethod:    string(s.PaymentMethod),
		PaymentReference: s.PaymentReference,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	created := *s
	created.ID = insertedID(res)
	return &created, nil
}

func (r *SubscriptionRepository) FindActiveByOwner(ctx context.Context, ownerID string) (*domain.UserSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"owner_id": ownerID, "status": string(domain.SubscriptionActive)}
	var ms mongoSubscription
	if err := r.coll.FindOne(ctx, filter).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("find active subscription: %w", err)
	}
	return ms.toDomain(), nil
}

func (r *SubscriptionRepository) CancelActive(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateMany(ctx,
		bson.M{"owner_id": ownerID, "status": string(domain.SubscriptionActive)},
		bson.M{"$set": bson.M{
			"status":     string(domain.SubscriptionCancelled),
			"auto_renew": false,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("cancel subscriptions: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *SubscriptionRepository) ExpireEnded(ctx context.Context, now time.Time) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"status": string(domain.SubscriptionActive), "end_date": bson.M{"$lt": now}}
	raw, err := r.coll.Distinct(ctx, "owner_id", filter)
	if err != nil {
		return nil, fmt.Errorf("find ended subscriptions: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	owners := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			owners = append(owners, id)
		}
	}
	filter["owner_id"] = bson.M{"$in": owners}
	_, err = r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{
		"status":     string(domain.SubscriptionExpired),
		"updated_at": now,
	}})
	if err != nil {
		return nil, fmt.Errorf("expire subscriptions: %w", err)
	}
	return owners, nil
}
