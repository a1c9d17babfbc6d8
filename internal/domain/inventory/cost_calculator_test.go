package inventory_test

import (
	"testing"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCostCalculator(t *testing.T) {
	cases := []struct {
		name     string
		stock    int64
		cost     string
		in       int64
		inCost   string
		expected string
	}{
		{"promedio simple", 10, "10", 10, "20", "15"},
		{"sin stock previo toma el costo de entrada", 0, "99", 5, "12.5", "12.5"},
		{"ponderado desigual", 30, "10", 10, "30", "15"},
		{"redondeo a 4 decimales", 3, "1", 4, "2", "1.5714"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inventory.CostCalculator(tc.stock, decimal.RequireFromString(tc.cost), tc.in, decimal.RequireFromString(tc.inCost))
			assert.True(t, decimal.RequireFromString(tc.expected).Equal(got), "esperado %s, obtenido %s", tc.expected, got)
		})
	}
}

func TestCostCalculator_SumaCeroDevuelveCero(t *testing.T) {
	got := inventory.CostCalculator(0, decimal.NewFromInt(5), 0, decimal.NewFromInt(7))
	assert.True(t, got.IsZero())
}
