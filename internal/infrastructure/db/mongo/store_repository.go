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

const storesCollection = "stores"

type StoreRepository struct {
	coll *mongo.Collection
}

func NewStoreRepository(db *mongo.Database) *StoreRepository {
	return &StoreRepository{coll: db.Collection(storesCollection)}
}

type mongoStoreSettings struct {
	LowStockThreshold      int64                `bson:"low_stock_threshold"`
	OutOfStockThreshold    int64                `bson:"out_of_stock_threshold"`
	CriticalStockThreshold int64                `bson:"critical_stock_threshold"`
	EnableStockAlerts      bool                 `bson:"enable_stock_alerts"`
	EnableNotifications    bool                 `bson:"enable_notifications"`
	AutomaticReorder       bool                 `bson:"automatic_reorder"`
	ReorderPoint           int64                `bson:"reorder_point"`
	TaxRate                primitive.Decimal128 `bson:"tax_rate"`
	Currency               string               `bson:"currency"`
	TimeZone               string               `bson:"time_zone"`
	QRCodeImageURL         string               `bson:"qr_code_image_url"`
	ReceiptFooter          string               `bson:"receipt_footer"`
}

type mongoStore struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID   string             `bson:"owner_id"`
	Name      string             `bson:"name"`
	Address   string             `bson:"address"`
	Phone     string             `bson:"phone"`
	Settings  mongoStoreSettings `bson:"settings"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func toMongoStore(s *domain.Store) (mongoStore, error) {
	st := s.Settings
	taxRate, err := toDecimal128(st.TaxRate)
	if err != nil {
		return mongoStore{}, fmt.Errorf("tax rate: %w", err)
	}
	return mongoStore{
		OwnerID: s.OwnerID,
		Name:    s.Name,
		Address: s.Address,
		Phone:   s.Phone,
		Settings: mongoStoreSettings{
			LowStockThreshold:      st.LowStockThreshold,
			OutOfStockThreshold:    st.OutOfStockThreshold,
			CriticalStockThreshold: st.CriticalStockThreshold,
			EnableStockAlerts:      st.EnableStockAlerts,
			EnableNotifications:    st.EnableNotifications,
			AutomaticReorder:       st.AutomaticReorder,
			ReorderPoint:           st.ReorderPoint,
			TaxRate:                taxRate,
			Currency:               st.Currency,
			TimeZone:               st.TimeZone,
			QRCodeImageURL:         st.QRCodeImageURL,
			ReceiptFooter:          st.ReceiptFooter,
		},
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}, nil
}

func (m mongoStore) toDomain() (*domain.Store, error) {
	st := m.Settings
	taxRate, err := fromDecimal128(st.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", m.ID.Hex(), err)
	}
	return &domain.Store{
		ID:      m.ID.Hex(),
		OwnerID: m.OwnerID,
		Name:    m.Name,
		Address: m.Address,
		Phone:   m.Phone,
		Settings: domain.StoreSettings{
			LowStockThreshold:      st.LowStockThreshold,
			OutOfStockThreshold:    st.OutOfStockThreshold,
			CriticalStockThreshold: st.CriticalStockThreshold,
			EnableStockAlerts:      st.EnableStockAlerts,
			EnableNotifications:    st.EnableNotifications,
			AutomaticReorder:       st.AutomaticReorder,
			ReorderPoint:           st.ReorderPoint,
			TaxRate:                taxRate,
			Currency:               st.Currency,
			TimeZone:               st.TimeZone,
			QRCodeImageURL:         st.QRCodeImageURL,
			ReceiptFooter:          st.ReceiptFooter,
		},
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}, nil
}

func (r *StoreRepository) Create(ctx context.Context, store *domain.Store) (*domain.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoStore(store)
	if err != nil {
		return nil, err
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert store: %w", err)
	}
	created := *store
	created.ID = insertedID(res)
	return &created, nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrStoreNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ms mongoStore
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStoreNotFound
		}
		return nil, fmt.Errorf("find store: %w", err)
	}
	return ms.toDomain()
}

func (r *StoreRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"owner_id": ownerID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	var docs []mongoStore
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stores: %w", err)
	}
	out := make([]*domain.Store, 0, len(docs))
	for _, d := range docs {
		st, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func (r *StoreRepository) Update(ctx context.Context, store *domain.Store) error {
	oid, err := objectID(store.ID)
	if err != nil {
		return domain.ErrStoreNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoStore(store)
	if err != nil {
		return err
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("update store: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrStoreNotFound
	}
	return nil
}

func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return domain.ErrStoreNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrStoreNotFound
	}
	return nil
}
