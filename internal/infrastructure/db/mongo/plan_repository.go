package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/possuite/backoffice/internal/core/domain"
)

const plansCollection = "subscription_plans"

type PlanRepository struct {
	coll *mongo.Collection
}

func NewPlanRepository(db *mongo.Database) *PlanRepository {
	return &PlanRepository{coll: db.Collection(plansCollection)}
}

type mongoPlan struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Name         string               `bson:"name"`
	Features     []string             `bson:"features"`
	MaxProducts  int64                `bson:"max_products"`
	MaxStaff     int64                `bson:"max_staff"`
	MaxStores    int64                `bson:"max_stores"`
	Price        primitive.Decimal128 `bson:"price"`
	BillingCycle string               `bson:"billing_cycle"`
}

func (m mongoPlan) toDomain() (*domain.Plan, error) {
	price, err := fromDecimal128(m.Price)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", m.Name, err)
	}
	return &domain.Plan{
		ID:           m.ID.Hex(),
		Name:         domain.PlanName(m.Name),
		Features:     m.Features,
		MaxProducts:  m.MaxProducts,
		MaxStaff:     m.MaxStaff,
		MaxStores:    m.MaxStores,
		Price:        price,
		BillingCycle: domain.BillingCycle(m.BillingCycle),
	}, nil
}

func (r *PlanRepository) List(ctx context.Context) ([]*domain.Plan, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "price", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	var docs []mongoPlan
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode plans: %w", err)
	}
	out := make([]*domain.Plan, 0, len(docs))
	for _, d := range docs {
		plan, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, plan)
	}
	return out, nil
}

func (r *PlanRepository) FindByID(ctx context.Context, id string) (*domain.Plan, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrPlanNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoPlan
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("find plan: %w", err)
	}
	return mp.toDomain()
}

// Upsert keys plans by name so reseeding updates quotas in place and keeps
// ids referenced by subscriptions stable.
func (r *PlanRepository) Upsert(ctx context.Context, p *domain.Plan) (*domain.Plan, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return nil, fmt.Errorf("plan %s price: %w", p.Name, err)
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"features":      p.Features,
		"max_products":  p.MaxProducts,
		"max_staff":     p.MaxStaff,
		"max_stores":    p.MaxStores,
		"price":         price,
		"billing_cycle": string(p.BillingCycle),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var mp mongoPlan
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"name": string(p.Name)}, update, opts).Decode(&mp); err != nil {
		return nil, fmt.Errorf("upsert plan %s: %w", p.Name, err)
	}
	return mp.toDomain()
}
