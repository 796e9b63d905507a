package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/possuite/backoffice/internal/core/domain"
)

const productsCollection = "products"

type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(productsCollection)}
}

type mongoProduct struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	StoreID   string               `bson:"store_id"`
	Name      string               `bson:"name"`
	SKU       string               `bson:"sku,omitempty"`
	Price     primitive.Decimal128 `bson:"price"`
	Stock     int64                `bson:"stock"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

func (m mongoProduct) toDomain() (*domain.Product, error) {
	price, err := fromDecimal128(m.Price)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", m.ID.Hex(), err)
	}
	return &domain.Product{
		ID:        m.ID.Hex(),
		StoreID:   m.StoreID,
		Name:      m.Name,
		SKU:       m.SKU,
		Price:     price,
		Stock:     m.Stock,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, mongoProduct{
		StoreID:   p.StoreID,
		Name:      p.Name,
		SKU:       p.SKU,
		Price:     price,
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("sku %q exists in store: %w", p.SKU, domain.ErrConflict)
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	created := *p
	created.ID = insertedID(res)
	return &created, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProduct
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return mp.toDomain()
}

func (r *ProductRepository) ListByStore(ctx context.Context, storeID string) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"store_id": storeID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var docs []mongoProduct
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]*domain.Product, 0, len(docs))
	for _, d := range docs {
		product, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, product)
	}
	return out, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return domain.ErrProductNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) DeleteByStore(ctx context.Context, storeID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"store_id": storeID})
	if err != nil {
		return 0, fmt.Errorf("delete store products: %w", err)
	}
	return res.DeletedCount, nil
}
