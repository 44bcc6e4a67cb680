package service

import "github.com/identity-hub/identity-service/internal/core/domain"

// Authorize permits an actor to operate on targetID when the actor is the
// target itself or holds the Admin role.
func Authorize(actor domain.Actor, targetID string) error {
	if actor.ID != "" && actor.ID == targetID {
		return nil
	}
	if actor.IsAdmin() {
		return nil
	}
	return domain.ErrForbidden
}
