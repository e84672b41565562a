package fulfillment

import (
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActorRole identifies who performed an action on a sub-order
type ActorRole string

const (
	RoleReseller   ActorRole = "reseller"
	RoleSupplier   ActorRole = "supplier"
	RoleSpecialist ActorRole = "specialist"
	RoleSystem     ActorRole = "system"
)

// IsValid checks if the role is a known ActorRole
func (r ActorRole) IsValid() bool {
	switch r {
	case RoleReseller, RoleSupplier, RoleSpecialist, RoleSystem:
		return true
	}
	return false
}

// Actor is the identity stamped on every tracking event
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role ActorRole `json:"role"`
}

// NewActor creates a validated actor
func NewActor(id uuid.UUID, role ActorRole) (Actor, error) {
	if id == uuid.Nil {
		return Actor{}, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}
	if !role.IsValid() {
		return Actor{}, shared.NewDomainError("INVALID_ACTOR", "Unknown actor role")
	}
	return Actor{ID: id, Role: role}, nil
}

// SystemActor is used for platform-initiated tracking events
func SystemActor() Actor {
	return Actor{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Role: RoleSystem}
}
