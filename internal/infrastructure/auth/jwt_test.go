package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret: "test-secret-at-least-32-characters-long",
		Issuer: "dropship-test",
	})
}

func testActor(t *testing.T, role fulfillment.ActorRole) fulfillment.Actor {
	t.Helper()
	actor, err := fulfillment.NewActor(uuid.New(), role)
	require.NoError(t, err)
	return actor
}

func TestJWTService_RoundTrip(t *testing.T) {
	service := newTestService()
	actor := testActor(t, fulfillment.RoleSupplier)

	token, err := service.GenerateToken(actor, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor.ID.String(), claims.UserID)
	assert.Equal(t, "supplier", claims.Role)
	assert.Equal(t, "dropship-test", claims.Issuer)

	parsed, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, actor, parsed)
}

func TestJWTService_ValidateToken(t *testing.T) {
	service := newTestService()

	t.Run("rejects an expired token", func(t *testing.T) {
		token, err := service.GenerateToken(testActor(t, fulfillment.RoleReseller), -time.Minute)
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-also-32-characters-xx", Issuer: "other"})
		token, err := other.GenerateToken(testActor(t, fulfillment.RoleReseller), time.Hour)
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_Actor(t *testing.T) {
	t.Run("rejects an unknown role", func(t *testing.T) {
		claims := &Claims{UserID: uuid.New().String(), Role: "admin"}
		_, err := claims.Actor()
		assert.ErrorIs(t, err, ErrUnknownRole)
	})

	t.Run("rejects a missing user id", func(t *testing.T) {
		claims := &Claims{Role: "supplier"}
		_, err := claims.Actor()
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("rejects a malformed user id", func(t *testing.T) {
		claims := &Claims{UserID: "42", Role: "supplier"}
		_, err := claims.Actor()
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})
}

func TestPermissiveGate(t *testing.T) {
	gate := NewPermissiveGate(zap.NewNop())
	ctx := context.Background()

	t.Run("allows an authenticated actor", func(t *testing.T) {
		err := gate.Authorize(ctx, uuid.New(), shared.ActionCheckout, uuid.New())
		assert.NoError(t, err)
	})

	t.Run("denies the nil actor", func(t *testing.T) {
		err := gate.Authorize(ctx, uuid.Nil, shared.ActionCheckout, uuid.New())
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}
