package inventory_test

import (
	"testing"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
)

func TestReplay_Consistente(t *testing.T) {
	item := newItem(12)
	movs := []*entity.StockMovement{
		{QuantityBefore: 0, QuantityChange: 10, QuantityAfter: 10},
		{QuantityBefore: 10, QuantityChange: -3, QuantityAfter: 7},
		{QuantityBefore: 7, QuantityChange: 5, QuantityAfter: 12},
	}
	check := inventory.Replay(item, movs)
	assert.True(t, check.Consistent)
	assert.Equal(t, -1, check.BrokenAt)
	assert.Equal(t, int64(12), check.ReplayedOnHand)
}

func TestReplay_CadenaRota(t *testing.T) {
	item := newItem(12)
	movs := []*entity.StockMovement{
		{QuantityBefore: 0, QuantityChange: 10, QuantityAfter: 10},
		{QuantityBefore: 9, QuantityChange: 2, QuantityAfter: 11},
	}
	check := inventory.Replay(item, movs)
	assert.False(t, check.Consistent)
	assert.Equal(t, 1, check.BrokenAt)
}

func TestReplay_NoCoincideConOnHand(t *testing.T) {
	item := newItem(3)
	movs := []*entity.StockMovement{{QuantityBefore: 0, QuantityChange: 2, QuantityAfter: 2}}
	check := inventory.Replay(item, movs)
	assert.False(t, check.Consistent)
	assert.Equal(t, -1, check.BrokenAt)
}
