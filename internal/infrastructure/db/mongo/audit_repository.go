package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
)

const collectionAccountEvents = "account_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAccountEvents)}
}

// InsertEvent persists an account event to the account_events collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AccountEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"user_id":      event.UserID,
		"actor_id":     event.ActorID,
		"type":         string(event.Type),
		"occurred_at":  event.OccurredAt.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if len(event.Details) > 0 {
		doc["details"] = event.Details
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert account event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup index for a user's event history.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "occurred_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create account event indexes: %w", err)
	}
	return nil
}
