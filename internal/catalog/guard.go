package catalog

import (
	"github.com/google/uuid"

	"curio/internal/models"
	"curio/internal/session"
)

// Allowed is the authorization rule for every mutating operation: the
// session's user must be the resource's owner. There are no other roles.
func Allowed(sessionUserID, ownerID uuid.UUID) bool {
	return sessionUserID == ownerID
}

// authorize gates a mutation on an owned resource. Denial is distinct from
// not-found so handlers can message the two cases differently; it carries
// no information about who the true owner is.
func authorize(sess *session.Data, ownerID uuid.UUID) error {
	if sess == nil {
		return models.ErrNotAuthenticated
	}
	if !Allowed(sess.UserID, ownerID) {
		return models.ErrNotOwner
	}
	return nil
}

// requireAuth gates mutations that create fresh resources.
func requireAuth(sess *session.Data) error {
	if sess == nil {
		return models.ErrNotAuthenticated
	}
	return nil
}
