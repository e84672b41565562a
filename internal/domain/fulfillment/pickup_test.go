package fulfillment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPickup(t *testing.T) {
	t.Run("creates batch with generated code", func(t *testing.T) {
		ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
		pickup, err := NewPickup(uuid.New(), ids, PickupMetadata{WeightKg: decimal.NewFromFloat(4.5)})
		require.NoError(t, err)

		assert.Equal(t, PickupAwaitingCourier, pickup.Status)
		assert.Regexp(t, `^PU-\d{8}-[0-9a-f]{8}$`, pickup.Code)
		assert.Equal(t, 3, pickup.PackageCount)
		assert.ElementsMatch(t, ids, pickup.SubOrderIDs())
	})

	t.Run("explicit package count wins over sub-order count", func(t *testing.T) {
		pickup, err := NewPickup(uuid.New(), []uuid.UUID{uuid.New()}, PickupMetadata{PackageCount: 5})
		require.NoError(t, err)
		assert.Equal(t, 5, pickup.PackageCount)
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		_, err := NewPickup(uuid.New(), nil, PickupMetadata{})
		assert.Error(t, err)
	})

	t.Run("rejects duplicate sub-order", func(t *testing.T) {
		id := uuid.New()
		_, err := NewPickup(uuid.New(), []uuid.UUID{id, id}, PickupMetadata{})
		assert.Error(t, err)
	})
}

func TestPickup_MarkCollected(t *testing.T) {
	t.Run("collects once and becomes immutable", func(t *testing.T) {
		pickup, err := NewPickup(uuid.New(), []uuid.UUID{uuid.New()}, PickupMetadata{})
		require.NoError(t, err)

		require.NoError(t, pickup.MarkCollected())
		assert.Equal(t, PickupCollected, pickup.Status)
		require.NotNil(t, pickup.CollectedAt)

		assert.Error(t, pickup.MarkCollected())
	})
}

func TestPickup_ContainsSubOrder(t *testing.T) {
	id := uuid.New()
	pickup, err := NewPickup(uuid.New(), []uuid.UUID{id}, PickupMetadata{})
	require.NoError(t, err)

	assert.True(t, pickup.ContainsSubOrder(id))
	assert.False(t, pickup.ContainsSubOrder(uuid.New()))
}

func TestNewOrder(t *testing.T) {
	t.Run("attaches sub-orders and accumulates total", func(t *testing.T) {
		order, err := NewOrder(uuid.New(), testClient())
		require.NoError(t, err)

		so := createTestSubOrder(t)
		addTestLine(t, so, 2, 55.00, 40.00)
		order.AttachSubOrder(so)

		assert.Equal(t, 1, order.SubOrderCount())
		assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(120)))
	})

	t.Run("rejects empty reseller", func(t *testing.T) {
		_, err := NewOrder(uuid.Nil, testClient())
		assert.Error(t, err)
	})
}
