package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
	"github.com/identity-hub/identity-service/internal/pkg/metrics"
)

var errInvalidEvent = errors.New("account event requires user id and type")

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService implementation.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process persists a single account event to the audit trail.
func (s *auditService) Process(ctx context.Context, event domain.AccountEvent) error {
	if event.UserID == "" || event.Type == "" {
		metrics.AuditErrorsTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("process account event: %w", errInvalidEvent)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	start := time.Now()
	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		metrics.AuditErrorsTotal.WithLabelValues("insert_failed").Inc()
		return fmt.Errorf("process account event: insert: %w", err)
	}
	metrics.AuditProcessingDuration.WithLabelValues(string(event.Type)).Observe(time.Since(start).Seconds())
	metrics.AccountEventsTotal.WithLabelValues(string(event.Type)).Inc()

	s.log.Debug().
		Str("user_id", event.UserID).
		Str("actor_id", event.ActorID).
		Str("type", string(event.Type)).
		Msg("account event recorded")

	return nil
}
