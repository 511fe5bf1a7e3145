package domain

import "github.com/google/uuid"

// Requester is the authenticated identity on whose behalf an operation runs.
// It is passed explicitly into every service call that needs authorization.
type Requester struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the requester holds the ADMIN role.
func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}

// Owns reports whether the card belongs to the requester.
func (r Requester) Owns(card *Card) bool {
	return card != nil && r.UserID != uuid.Nil && card.OwnerID == r.UserID
}

// CanAccessCard is the read authorization rule for a card: admins see every
// card, users only their own.
func (r Requester) CanAccessCard(card *Card) bool {
	return r.IsAdmin() || r.Owns(card)
}
