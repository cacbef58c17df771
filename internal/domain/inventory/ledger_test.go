package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Signo y orden del ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestSignedDelta(t *testing.T) {
	assert.Equal(t, 3, inventory.SignedDelta(entity.MovementTypeIN, 3))
	assert.Equal(t, -3, inventory.SignedDelta(entity.MovementTypeOUT, 3))
}

func TestCanWithdraw_CeroEsExistenciaValida(t *testing.T) {
	p := &entity.Product{Quantity: 5}
	assert.True(t, inventory.CanWithdraw(p, 5))
	assert.False(t, inventory.CanWithdraw(p, 6))
}

func TestSortNewestFirst_OrdenaPorFechaYDesempataPorInsercion(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	movs := []*entity.Movement{
		{ID: "a", Date: t0, Seq: 1},
		{ID: "b", Date: t0.Add(time.Minute), Seq: 2},
		{ID: "c", Date: t0.Add(time.Minute), Seq: 3},
		{ID: "d", Date: t0.Add(-time.Hour), Seq: 4},
	}

	inventory.SortNewestFirst(movs)
	require.Len(t, movs, 4)
	assert.Equal(t, []string{"c", "b", "a", "d"}, ids(movs))
}

func TestReplayYReconcile(t *testing.T) {
	p1 := &entity.Product{ID: "p1", Name: "Tornillo", InitialQuantity: 10, Quantity: 8}
	p2 := &entity.Product{ID: "p2", Name: "Tuerca", InitialQuantity: 0, Quantity: 7}
	byProduct := map[string][]*entity.Movement{
		"p1": {
			{Type: entity.MovementTypeIN, Quantity: 3},
			{Type: entity.MovementTypeOUT, Quantity: 5},
		},
		"p2": {
			{Type: entity.MovementTypeIN, Quantity: 4},
		},
	}

	assert.Equal(t, 8, inventory.Replay(10, byProduct["p1"]))

	diff := inventory.Reconcile([]*entity.Product{p1, p2}, byProduct)
	require.Len(t, diff, 1)
	assert.Equal(t, "p2", diff[0].ProductID)
	assert.Equal(t, 7, diff[0].Stored)
	assert.Equal(t, 4, diff[0].Replayed)
}

// ──────────────────────────────────────────────────────────────────────────────
// Valuación y bajo stock
// ──────────────────────────────────────────────────────────────────────────────

func TestLowStock_ConservaOrden(t *testing.T) {
	products := []*entity.Product{
		{ID: "a", Quantity: 4, MinThreshold: 5},
		{ID: "b", Quantity: 5, MinThreshold: 5},
		{ID: "c", Quantity: 0, MinThreshold: 1},
	}

	got := inventory.LowStock(products)
	assert.Equal(t, []string{"a", "c"}, productIDs(got))
}

func TestValuate(t *testing.T) {
	products := []*entity.Product{
		{Quantity: 10, BuyPrice: decimal.RequireFromString("2.50"), SellPrice: decimal.RequireFromString("4")},
		{Quantity: 3, BuyPrice: decimal.RequireFromString("10"), SellPrice: decimal.RequireFromString("15.10")},
		{Quantity: 0, BuyPrice: decimal.RequireFromString("99"), SellPrice: decimal.RequireFromString("199")},
	}

	v := inventory.Valuate(products)
	assert.True(t, decimal.RequireFromString("55").Equal(v.InventoryValue), v.InventoryValue.String())
	assert.True(t, decimal.RequireFromString("85.30").Equal(v.PotentialSalesValue), v.PotentialSalesValue.String())
	assert.True(t, decimal.RequireFromString("30.30").Equal(v.PotentialProfit), v.PotentialProfit.String())
}

func TestValuate_CatalogoVacio(t *testing.T) {
	v := inventory.Valuate(nil)
	assert.True(t, v.InventoryValue.IsZero())
	assert.True(t, v.PotentialProfit.IsZero())
}

func ids(movs []*entity.Movement) []string {
	out := make([]string, len(movs))
	for i, m := range movs {
		out[i] = m.ID
	}
	return out
}

func productIDs(ps []*entity.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
