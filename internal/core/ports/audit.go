package ports

import (
	"context"

	"github.com/identity-hub/identity-service/internal/core/domain"
)

// AuditRepository persists account events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AccountEvent) error
}

// AuditPublisher hands events to the asynchronous audit pipeline.
type AuditPublisher interface {
	Publish(event domain.AccountEvent)
}

// AuditService processes a single account event.
type AuditService interface {
	Process(ctx context.Context, event domain.AccountEvent) error
}
