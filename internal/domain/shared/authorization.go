package shared

import (
	"context"

	"github.com/google/uuid"
)

// AuthorizationGate is the single allow/deny check consulted before any
// mutating operation. The real decision lives in the external identity
// service; the pipeline only consumes the verdict.
type AuthorizationGate interface {
	// Authorize returns nil when the actor may perform the action on the
	// resource, ErrForbidden otherwise.
	Authorize(ctx context.Context, actorID uuid.UUID, action string, resourceID uuid.UUID) error
}

// Actions checked against the gate
const (
	ActionCheckout     = "fulfillment:checkout"
	ActionTransition   = "fulfillment:transition"
	ActionCreatePickup = "fulfillment:create_pickup"
)
