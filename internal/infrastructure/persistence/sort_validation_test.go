package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"asc", "ASC"},
		{"ASC", "ASC"},
		{" asc ", "ASC"},
		{"desc", "DESC"},
		{"DESC", "DESC"},
		{"", "DESC"},
		{"sideways", "DESC"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ValidateSortOrder(tt.input), "input %q", tt.input)
	}
}

func TestValidateSortField(t *testing.T) {
	t.Run("accepts whitelisted fields", func(t *testing.T) {
		assert.Equal(t, "status", ValidateSortField("status", SubOrderSortFields, "created_at"))
		assert.Equal(t, "total", ValidateSortField("total", SubOrderSortFields, "created_at"))
	})

	t.Run("falls back to the default for unknown fields", func(t *testing.T) {
		assert.Equal(t, "created_at", ValidateSortField("client_phone; DROP TABLE sub_orders", SubOrderSortFields, "created_at"))
		assert.Equal(t, "created_at", ValidateSortField("", SubOrderSortFields, "created_at"))
		assert.Equal(t, "created_at", ValidateSortField("   ", SubOrderSortFields, "created_at"))
	})

	t.Run("whitelists are per entity", func(t *testing.T) {
		assert.Equal(t, "wholesale_price", ValidateSortField("wholesale_price", ProductSortFields, "created_at"))
		assert.Equal(t, "created_at", ValidateSortField("wholesale_price", PickupSortFields, "created_at"))
	})
}
