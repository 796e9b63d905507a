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

const staffCollection = "staff"

type StaffRepository struct {
	coll *mongo.Collection
}

func NewStaffRepository(db *mongo.Database) *StaffRepository {
	return &StaffRepository{coll: db.Collection(staffCollection)}
}

type mongoStaff struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	StoreID      string             `bson:"store_id"`
	RoleID       string             `bson:"role_id"`
	Status       string             `bson:"status"`
	LastLogin    *time.Time         `bson:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func toMongoStaff(s *domain.Staff) mongoStaff {
	return mongoStaff{
		Name:         s.Name,
		Email:        s.Email,
		PasswordHash: s.PasswordHash,
		StoreID:      s.StoreID,
		RoleID:       s.RoleID,
		Status:       string(s.Status),
		LastLogin:    s.LastLogin,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func (m mongoStaff) toDomain() *domain.Staff {
	s := &domain.Staff{
		ID:           m.ID.Hex(),
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		StoreID:      m.StoreID,
		RoleID:       m.RoleID,
		Status:       domain.StaffStatus(m.Status),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
	if m.LastLogin != nil {
		t := m.LastLogin.UTC()
		s.LastLogin = &t
	}
	return s
}

func (r *StaffRepository) Create(ctx context.Context, staff *domain.Staff) (*domain.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoStaff(staff))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrStaffExists
		}
		return nil, fmt.Errorf("insert staff: %w", err)
	}
	created := *staff
	created.ID = insertedID(res)
	return &created, nil
}

func (r *StaffRepository) FindByID(ctx context.Context, id string) (*domain.Staff, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrStaffNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *StaffRepository) ListByStore(ctx context.Context, storeID string) ([]*domain.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"store_id": storeID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	var docs []mongoStaff
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode staff: %w", err)
	}
	out := make([]*domain.Staff, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *StaffRepository) Update(ctx context.Context, staff *domain.Staff) error {
	oid, err := objectID(staff.ID)
	if err != nil {
		return domain.ErrStaffNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoStaff(staff)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrStaffExists
		}
		return fmt.Errorf("update staff: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrStaffNotFound
	}
	return nil
}

func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return domain.ErrStaffNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrStaffNotFound
	}
	return nil
}

func (r *StaffRepository) DeleteByStore(ctx context.Context, storeID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"store_id": storeID})
	if err != nil {
		return 0, fmt.Errorf("delete store staff: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *StaffRepository) CountByRole(ctx context.Context, roleID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"role_id": roleID})
	if err != nil {
		return 0, fmt.Errorf("count staff by role: %w", err)
	}
	return n, nil
}

func (r *StaffRepository) findOne(ctx context.Context, filter bson.M) (*domain.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ms mongoStaff
	if err := r.coll.FindOne(ctx, filter).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStaffNotFound
		}
		return nil, fmt.Errorf("find staff: %w", err)
	}
	return ms.toDomain(), nil
}
