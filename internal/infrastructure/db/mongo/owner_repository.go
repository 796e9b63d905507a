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

const ownersCollection = "owners"

type OwnerRepository struct {
	coll *mongo.Collection
}

func NewOwnerRepository(db *mongo.Database) *OwnerRepository {
	return &OwnerRepository{coll: db.Collection(ownersCollection)}
}

type mongoOwner struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Name                string             `bson:"name"`
	Email               string             `bson:"email"`
	PasswordHash        string             `bson:"password_hash"`
	EmailVerified       bool               `bson:"is_email_verified"`
	VerificationToken   string             `bson:"verification_token,omitempty"`
	VerificationExpires time.Time          `bson:"verification_expires,omitempty"`
	CreatedAt           time.Time          `bson:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at"`
}

func toMongoOwner(o *domain.Owner) mongoOwner {
	return mongoOwner{
		Name:                o.Name,
		Email:               o.Email,
		PasswordHash:        o.PasswordHash,
		EmailVerified:       o.EmailVerified,
		VerificationToken:   o.VerificationToken,
		VerificationExpires: o.VerificationExpires,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

func (m mongoOwner) toDomain() *domain.Owner {
	return &domain.Owner{
		ID:                  m.ID.Hex(),
		Name:                m.Name,
		Email:               m.Email,
		PasswordHash:        m.PasswordHash,
		EmailVerified:       m.EmailVerified,
		VerificationToken:   m.VerificationToken,
		VerificationExpires: m.VerificationExpires.UTC(),
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}

func (r *OwnerRepository) Create(ctx context.Context, owner *domain.Owner) (*domain.Owner, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoOwner(owner))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrOwnerExists
		}
		return nil, fmt.Errorf("insert owner: %w", err)
	}

	created := *owner
	created.ID = insertedID(res)
	return &created, nil
}

func (r *OwnerRepository) FindByID(ctx context.Context, id string) (*domain.Owner, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrOwnerNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *OwnerRepository) FindByEmail(ctx context.Context, email string) (*domain.Owner, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *OwnerRepository) FindByVerificationToken(ctx context.Context, token string, now time.Time) (*domain.Owner, error) {
	return r.findOne(ctx, bson.M{
		"verification_token":   token,
		"verification_expires": bson.M{"$gt": now},
	})
}

func (r *OwnerRepository) Update(ctx context.Context, owner *domain.Owner) error {
	oid, err := objectID(owner.ID)
	if err != nil {
		return domain.ErrOwnerNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"name":              owner.Name,
		"email":             owner.Email,
		"password_hash":     owner.PasswordHash,
		"is_email_verified": owner.EmailVerified,
		"updated_at":        owner.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if owner.VerificationToken == "" {
		update["$unset"] = bson.M{"verification_token": "", "verification_expires": ""}
	} else {
		set["verification_token"] = owner.VerificationToken
		set["verification_expires"] = owner.VerificationExpires
	}

	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrOwnerExists
		}
		return fmt.Errorf("update owner: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOwnerNotFound
	}
	return nil
}

func (r *OwnerRepository) findOne(ctx context.Context, filter bson.M) (*domain.Owner, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mo mongoOwner
	if err := r.coll.FindOne(ctx, filter).Decode(&mo); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("find owner: %w", err)
	}
	return mo.toDomain(), nil
}
