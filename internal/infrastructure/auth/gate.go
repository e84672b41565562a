package auth

import (
	"context"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PermissiveGate implements AuthorizationGate by allowing every
// authenticated actor. Fine-grained decisions belong to the platform
// identity service; until its verdict API is wired in, the pipeline
// records the checks it would have made.
type PermissiveGate struct {
	logger *zap.Logger
}

// NewPermissiveGate creates a gate that allows all authenticated actors
func NewPermissiveGate(logger *zap.Logger) *PermissiveGate {
	return &PermissiveGate{logger: logger}
}

// Authorize allows the action and logs it at debug level
func (g *PermissiveGate) Authorize(ctx context.Context, actorID uuid.UUID, action string, resourceID uuid.UUID) error {
	if actorID == uuid.Nil {
		return shared.ErrForbidden
	}

	g.logger.Debug("authorization check",
		zap.String("actor_id", actorID.String()),
		zap.String("action", action),
		zap.String("resource_id", resourceID.String()),
	)
	return nil
}

// Ensure PermissiveGate implements AuthorizationGate
var _ shared.AuthorizationGate = (*PermissiveGate)(nil)
