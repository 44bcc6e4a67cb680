package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
)

const collectionRoles = "roles"

// RoleRepository stores roles keyed by their normalized name.
type RoleRepository struct {
	col *mongo.Collection
}

var _ ports.RoleRepository = (*RoleRepository)(nil)

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{col: db.Collection(collectionRoles)}
}

// Upsert inserts role unless it already exists. Two instances seeding at the
// same time may race on the insert; the loser's duplicate key error is
// treated as success.
func (r *RoleRepository) Upsert(ctx context.Context, role domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": role.Normalized()}
	update := bson.M{"$setOnInsert": bson.M{"name": string(role)}}
	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("upsert role %s: %w", role, err)
	}
	return nil
}

func (r *RoleRepository) Exists(ctx context.Context, role domain.Role) (bool, error) {
	return roleExists(ctx, r.col, role)
}

func roleExists(ctx context.Context, col *mongo.Collection, role domain.Role) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := col.FindOne(ctx, bson.M{"_id": role.Normalized()}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find role: %w", err)
	}
	return true, nil
}
