package service

import (
	"errors"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
)

type discardPublisher struct{}

func (discardPublisher) Publish(domain.AccountEvent) {}

func publisherOrDiscard(p ports.AuditPublisher) ports.AuditPublisher {
	if p == nil {
		return discardPublisher{}
	}
	return p
}

// resultLabel classifies err for metric labels.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrInvalidCredentials):
		return "rejected"
	default:
		return "error"
	}
}
