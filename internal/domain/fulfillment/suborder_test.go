package fulfillment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() ClientInfo {
	return ClientInfo{Name: "Amina B.", Phone: "0550123456", Address: "12 Rue Didouche Mourad, Alger"}
}

func testActor(role ActorRole) Actor {
	actor, _ := NewActor(uuid.New(), role)
	return actor
}

func createTestSubOrder(t *testing.T) *SubOrder {
	t.Helper()
	so, err := NewSubOrder(uuid.New(), uuid.New(), uuid.New(), testClient(),
		decimal.NewFromInt(10), decimal.NewFromInt(2))
	require.NoError(t, err)
	return so
}

func addTestLine(t *testing.T, so *SubOrder, qty int64, sale, wholesale float64) *SubOrderLine {
	t.Helper()
	line, err := so.AddLine(uuid.New(), nil, "Sac Bandouliere", "", qty,
		decimal.NewFromFloat(sale), decimal.NewFromFloat(wholesale))
	require.NoError(t, err)
	return line
}

func TestSubOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    SubOrderStatus
		to      SubOrderStatus
		allowed bool
	}{
		{StatusUnconfirmed, StatusInProgress, true},
		{StatusUnconfirmed, StatusCancelled, true},
		{StatusUnconfirmed, StatusReadyForPickup, false},
		{StatusUnconfirmed, StatusDelivered, false},
		{StatusUnconfirmed, StatusReturned, false},
		{StatusInProgress, StatusReadyForPickup, true},
		{StatusInProgress, StatusReturned, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusDelivered, false},
		{StatusReadyForPickup, StatusDelivered, true},
		{StatusReadyForPickup, StatusReturned, true},
		{StatusReadyForPickup, StatusCancelled, true},
		{StatusDelivered, StatusDeliveredPaid, true},
		{StatusDelivered, StatusDeliveredUnpaid, true},
		{StatusDelivered, StatusReturned, false},
		{StatusDeliveredPaid, StatusDelivered, false},
		{StatusDeliveredUnpaid, StatusInProgress, false},
		{StatusReturned, StatusInProgress, false},
		{StatusCancelled, StatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestSubOrderStatus_IsTerminal(t *testing.T) {
	terminal := []SubOrderStatus{StatusDeliveredPaid, StatusDeliveredUnpaid, StatusReturned, StatusCancelled}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), string(s))
	}
	open := []SubOrderStatus{StatusUnconfirmed, StatusInProgress, StatusReadyForPickup, StatusDelivered}
	for _, s := range open {
		assert.False(t, s.IsTerminal(), string(s))
	}
}

func TestSubOrderStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, SubOrderStatus("expedie").IsValid())
	assert.False(t, SubOrderStatus("").IsValid())
}

func TestNewSubOrder(t *testing.T) {
	t.Run("starts unconfirmed with one queued tracking event", func(t *testing.T) {
		so := createTestSubOrder(t)
		assert.Equal(t, StatusUnconfirmed, so.Status)
		assert.Equal(t, 1, so.Version)

		pending := so.PendingTrackingEvents()
		require.Len(t, pending, 1)
		assert.Equal(t, StatusUnconfirmed, pending[0].Status)
		assert.Equal(t, RoleSystem, pending[0].ActorRole)
	})

	t.Run("rejects invalid client snapshot", func(t *testing.T) {
		_, err := NewSubOrder(uuid.New(), uuid.New(), uuid.New(),
			ClientInfo{Name: "X"}, decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})
}

func TestSubOrder_AddLine(t *testing.T) {
	t.Run("computes total with delivery fee and profit", func(t *testing.T) {
		so := createTestSubOrder(t)
		addTestLine(t, so, 2, 55.00, 40.00)

		// 2 x 55.00 + 10 delivery fee
		assert.True(t, so.Total.Equal(decimal.NewFromInt(120)), so.Total.String())
		assert.True(t, so.Profit().Equal(decimal.NewFromInt(30)), so.Profit().String())
	})

	t.Run("rejects lines after confirmation", func(t *testing.T) {
		so := createTestSubOrder(t)
		addTestLine(t, so, 1, 55.00, 40.00)
		_, err := so.Transition(StatusInProgress, testActor(RoleSupplier), "")
		require.NoError(t, err)

		_, err = so.AddLine(uuid.New(), nil, "X", "", 1, decimal.NewFromInt(1), decimal.Zero)
		assert.Error(t, err)
	})
}

func TestSubOrder_Transition(t *testing.T) {
	t.Run("walks the full delivery path", func(t *testing.T) {
		so := createTestSubOrder(t)
		actor := testActor(RoleSupplier)

		path := []SubOrderStatus{StatusInProgress, StatusReadyForPickup, StatusDelivered, StatusDeliveredPaid}
		for _, status := range path {
			release, err := so.Transition(status, actor, "")
			require.NoError(t, err)
			assert.False(t, release)
		}

		assert.Equal(t, StatusDeliveredPaid, so.Status)
		assert.True(t, so.IsTerminal())
		// initial event + 4 transitions
		assert.Len(t, so.PendingTrackingEvents(), 5)
		assert.Equal(t, 5, so.Version)
	})

	t.Run("return and cancel request a stock release", func(t *testing.T) {
		for _, target := range []SubOrderStatus{StatusReturned, StatusCancelled} {
			so := createTestSubOrder(t)
			_, err := so.Transition(StatusInProgress, testActor(RoleSupplier), "")
			require.NoError(t, err)

			release, err := so.Transition(target, testActor(RoleSpecialist), "client injoignable")
			require.NoError(t, err)
			assert.True(t, release, string(target))
		}
	})

	t.Run("rejects transitions missing from the table", func(t *testing.T) {
		so := createTestSubOrder(t)
		_, err := so.Transition(StatusDelivered, testActor(RoleSupplier), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non_confirmee")
		assert.Contains(t, err.Error(), "livre")
		assert.Equal(t, StatusUnconfirmed, so.Status)
		assert.Equal(t, 1, so.Version)
	})

	t.Run("rejects every transition from a terminal status", func(t *testing.T) {
		so := createTestSubOrder(t)
		_, err := so.Transition(StatusCancelled, testActor(RoleReseller), "")
		require.NoError(t, err)

		for _, target := range AllStatuses() {
			_, err := so.Transition(target, testActor(RoleSupplier), "")
			assert.Error(t, err, string(target))
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		so := createTestSubOrder(t)
		_, err := so.Transition(SubOrderStatus("perdu"), testActor(RoleSupplier), "")
		assert.Error(t, err)
	})
}

func TestSubOrder_RecordDeliveryAttempt(t *testing.T) {
	t.Run("increments the counter without changing status", func(t *testing.T) {
		so := createTestSubOrder(t)
		_, err := so.Transition(StatusInProgress, testActor(RoleSupplier), "")
		require.NoError(t, err)

		require.NoError(t, so.RecordDeliveryAttempt(testActor(RoleSupplier), "absent au premier passage"))
		require.NoError(t, so.RecordDeliveryAttempt(testActor(RoleSupplier), "absent au second passage"))

		assert.Equal(t, StatusInProgress, so.Status)
		assert.Equal(t, 2, so.DeliveryAttempts)

		events := so.PendingTrackingEvents()
		last := events[len(events)-1]
		assert.Equal(t, StatusInProgress, last.Status)
		assert.Equal(t, 2, last.DeliveryAttempt)
	})

	t.Run("only allowed while en_cours", func(t *testing.T) {
		so := createTestSubOrder(t)
		assert.Error(t, so.RecordDeliveryAttempt(testActor(RoleSupplier), ""))
	})
}

func TestSubOrder_ClearPendingTrackingEvents(t *testing.T) {
	so := createTestSubOrder(t)
	require.NotEmpty(t, so.PendingTrackingEvents())
	so.ClearPendingTrackingEvents()
	assert.Empty(t, so.PendingTrackingEvents())
}
