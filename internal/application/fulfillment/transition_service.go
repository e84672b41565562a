package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/inventory"
	"github.com/dropship/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TransitionConfig tunes the state machine orchestration
type TransitionConfig struct {
	// MaxRetries bounds re-reads after a concurrent write when the caller
	// did not pin an expected version
	MaxRetries int
	// IdempotencyTTL is how long applied idempotency keys are remembered
	IdempotencyTTL time.Duration
}

// DefaultTransitionConfig returns the default orchestration settings
func DefaultTransitionConfig() TransitionConfig {
	return TransitionConfig{
		MaxRetries:     3,
		IdempotencyTTL: 24 * time.Hour,
	}
}

// TransitionService drives the sub-order state machine. Status change,
// stock release for retourne/annule and the tracking event all commit in
// one transaction, and replayed idempotency keys return the original
// outcome without appending a duplicate event.
type TransitionService struct {
	scope       TransactionScope
	idempotency shared.IdempotencyStore
	gate        shared.AuthorizationGate
	publisher   shared.EventPublisher
	cfg         TransitionConfig
	logger      *zap.Logger
}

// NewTransitionService creates a transition service
func NewTransitionService(
	scope TransactionScope,
	idempotency shared.IdempotencyStore,
	gate shared.AuthorizationGate,
	publisher shared.EventPublisher,
	cfg TransitionConfig,
	logger *zap.Logger,
) *TransitionService {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultTransitionConfig().MaxRetries
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = DefaultTransitionConfig().IdempotencyTTL
	}
	return &TransitionService{
		scope:       scope,
		idempotency: idempotency,
		gate:        gate,
		publisher:   publisher,
		cfg:         cfg,
		logger:      logger,
	}
}

// Transition applies one status change. A stale pinned version fails fast
// with CONCURRENCY_CONFLICT; without a pinned version the service re-reads
// and retries up to the configured bound.
func (s *TransitionService) Transition(ctx context.Context, req TransitionRequest) (*SubOrderResponse, error) {
	if err := s.gate.Authorize(ctx, req.Actor.ID, shared.ActionTransition, req.SubOrderID); err != nil {
		return nil, err
	}

	if replay, err := s.replayedResult(ctx, req.IdempotencyKey); replay != nil || err != nil {
		return replay, err
	}

	newStatus := fulfillment.SubOrderStatus(req.NewStatus)

	attempts := s.cfg.MaxRetries
	if req.ExpectedVersion != nil {
		attempts = 1
	}

	var updated *fulfillment.SubOrder
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		updated = nil
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			so, err := repos.SubOrders.FindByID(ctx, req.SubOrderID)
			if err != nil {
				return err
			}
			if req.ExpectedVersion != nil && so.Version != *req.ExpectedVersion {
				return shared.ErrConcurrencyConflict
			}

			releaseStock, err := so.Transition(newStatus, req.Actor, req.Description)
			if err != nil {
				return err
			}

			if releaseStock {
				ledger := inventory.NewStockLedger(repos.Products, repos.Reservations, repos.Movements, s.cfg.MaxRetries)
				if err := ledger.ReleaseForSubOrder(ctx, so.ID); err != nil {
					return err
				}
			}

			if err := repos.SubOrders.SaveWithLock(ctx, so); err != nil {
				return err
			}
			updated = so
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, shared.ErrConcurrencyConflict) && req.ExpectedVersion == nil {
			lastErr = err
			continue
		}
		return nil, err
	}
	if updated == nil {
		return nil, lastErr
	}

	s.publishEvents(updated)

	s.logger.Info("sub-order transitioned",
		zap.String("sub_order_id", updated.ID.String()),
		zap.String("status", updated.Status.String()),
		zap.String("actor_role", string(req.Actor.Role)))

	response := ToSubOrderResponse(updated)
	s.markApplied(ctx, req.IdempotencyKey, &response)
	return &response, nil
}

// RecordDeliveryAttempt registers a failed delivery attempt on an en_cours
// sub-order: the attempt counter and an event, no status change.
func (s *TransitionService) RecordDeliveryAttempt(ctx context.Context, req DeliveryAttemptRequest) (*SubOrderResponse, error) {
	if err := s.gate.Authorize(ctx, req.Actor.ID, shared.ActionTransition, req.SubOrderID); err != nil {
		return nil, err
	}

	var updated *fulfillment.SubOrder
	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		updated = nil
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			so, err := repos.SubOrders.FindByID(ctx, req.SubOrderID)
			if err != nil {
				return err
			}
			if err := so.RecordDeliveryAttempt(req.Actor, req.Description); err != nil {
				return err
			}
			if err := repos.SubOrders.SaveWithLock(ctx, so); err != nil {
				return err
			}
			updated = so
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			lastErr = err
			continue
		}
		return nil, err
	}
	if updated == nil {
		return nil, lastErr
	}

	s.logger.Info("delivery attempt recorded",
		zap.String("sub_order_id", updated.ID.String()),
		zap.Int("attempts", updated.DeliveryAttempts))

	response := ToSubOrderResponse(updated)
	return &response, nil
}

// replayedResult returns the original outcome for an already-applied
// idempotency key, or nil when the key is new or empty.
func (s *TransitionService) replayedResult(ctx context.Context, key string) (*SubOrderResponse, error) {
	if key == "" || s.idempotency == nil {
		return nil, nil
	}
	result, found, err := s.idempotency.AppliedResult(ctx, key)
	if err != nil {
		s.logger.Warn("idempotency lookup failed, proceeding without replay protection", zap.Error(err))
		return nil, nil
	}
	if !found {
		return nil, nil
	}

	var response SubOrderResponse
	if err := json.Unmarshal([]byte(result), &response); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Corrupt idempotency record")
	}
	response.Replayed = true
	return &response, nil
}

// markApplied records the outcome of a first application so later replays
// of the same key can return it verbatim, even after the sub-order moved on.
func (s *TransitionService) markApplied(ctx context.Context, key string, response *SubOrderResponse) {
	if key == "" || s.idempotency == nil {
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		s.logger.Warn("failed to encode idempotency record", zap.Error(err))
		return
	}
	if _, err := s.idempotency.MarkApplied(ctx, key, string(payload), s.cfg.IdempotencyTTL); err != nil {
		s.logger.Warn("failed to record idempotency key", zap.Error(err))
	}
}

func (s *TransitionService) publishEvents(so *fulfillment.SubOrder) {
	if s.publisher == nil {
		return
	}
	for _, event := range so.GetDomainEvents() {
		if err := s.publisher.Publish(event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()), zap.Error(err))
		}
	}
	so.ClearDomainEvents()
}
