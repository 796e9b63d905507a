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

const rolesCollection = "roles"

type RoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{coll: db.Collection(rolesCollection)}
}

type mongoPermission struct {
	Name        string `bson:"name"`
	Module      string `bson:"module"`
	Description string `bson:"description,omitempty"`
}

type mongoRole struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	StoreID     string             `bson:"store_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	Permissions []mongoPermission  `bson:"permissions"`
	IsDefault   bool               `bson:"is_default"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func toMongoRole(r *domain.Role) mongoRole {
	perms := make([]mongoPermission, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, mongoPermission{Name: p.Name, Module: string(p.Module), Description: p.Description})
	}
	return mongoRole{
		StoreID:     r.StoreID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
		IsDefault:   r.IsDefault,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (m mongoRole) toDomain() *domain.Role {
	perms := make([]domain.Permission, 0, len(m.Permissions))
	for _, p := range m.Permissions {
		perms = append(perms, domain.Permission{Name: p.Name, Module: domain.Module(p.Module), Description: p.Description})
	}
	return &domain.Role{
		ID:          m.ID.Hex(),
		StoreID:     m.StoreID,
		Name:        m.Name,
		Description: m.Description,
		Permissions: perms,
		IsDefault:   m.IsDefault,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoRole(role))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("role %q exists in store: %w", role.Name, domain.ErrConflict)
		}
		return nil, fmt.Errorf("insert role: %w", err)
	}
	created := *role
	created.ID = insertedID(res)
	return &created, nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrRoleNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoRole
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return mr.toDomain(), nil
}

func (r *RoleRepository) ListByStore(ctx context.Context, storeID string) ([]*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "is_default", Value: -1}, {Key: "name", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"store_id": storeID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	var docs []mongoRole
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}
	out := make([]*domain.Role, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *RoleRepository) Update(ctx context.Context, role *domain.Role) error {
	oid, err := objectID(role.ID)
	if err != nil {
		return domain.ErrRoleNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, toMongoRole(role))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("role %q exists in store: %w", role.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update role: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return domain.ErrRoleNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Default roles never match.
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "is_default": false})
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

// DeleteByStore removes every role of the store, default roles included.
func (r *RoleRepository) DeleteByStore(ctx context.Context, storeID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"store_id": storeID})
	if err != nil {
		return 0, fmt.Errorf("delete store roles: %w", err)
	}
	return res.DeletedCount, nil
}
