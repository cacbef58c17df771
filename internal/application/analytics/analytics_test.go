package analytics_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type env struct {
	products  *memory.ProductRepository
	movements *memory.MovementRepository
	txRunner  *memory.TxRunner
	record    *appinventory.RecordMovementUseCase
	agg       *analytics.AggregationService
}

func newEnv() *env {
	s := memory.NewStore()
	products := memory.NewProductRepository(s)
	movements := memory.NewMovementRepository(s)
	txRunner := memory.NewTxRunner(s)
	return &env{
		products:  products,
		movements: movements,
		txRunner:  txRunner,
		record:    appinventory.NewRecordMovementUseCase(txRunner),
		agg:       analytics.NewAggregationService(products, movements, txRunner),
	}
}

func (e *env) seed(t *testing.T, id string, qty, min int, buy, sell string) {
	t.Helper()
	require.NoError(t, e.products.Create(context.Background(), &entity.Product{
		ID: id, Name: "prod-" + id, Category: "General",
		Quantity: qty, InitialQuantity: qty, MinThreshold: min,
		BuyPrice: decimal.RequireFromString(buy), SellPrice: decimal.RequireFromString(sell),
	}))
}

func (e *env) move(t *testing.T, id, typ string, qty int) {
	t.Helper()
	_, err := e.record.Execute(context.Background(), appinventory.RecordMovementInput{ProductID: id, Type: typ, Quantity: qty})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// AggregationService
// ──────────────────────────────────────────────────────────────────────────────

func TestLowStock_SaleAlReponer(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.seed(t, "p1", 4, 5, "1", "2")

	low, err := e.agg.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "p1", low[0].ID)

	e.move(t, "p1", "IN", 2)

	low, err = e.agg.LowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, low)
}

// Tras cualquier secuencia de movimientos, LowStock es exactamente {p : qty < min}.
func TestLowStock_CoincideConDefinicion(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c", "d"} {
		e.seed(t, id, 3+i, 5, "1", "2")
	}
	rnd := rand.New(rand.NewSource(7))

	for step := 0; step < 200; step++ {
		id := []string{"a", "b", "c", "d"}[rnd.Intn(4)]
		typ := []string{"IN", "OUT"}[rnd.Intn(2)]
		_, _ = e.record.Execute(ctx, appinventory.RecordMovementInput{ProductID: id, Type: typ, Quantity: 1 + rnd.Intn(3)})

		all, err := e.products.List(ctx)
		require.NoError(t, err)
		want := []string{}
		for _, p := range all {
			if p.Quantity < p.MinThreshold {
				want = append(want, p.ID)
			}
		}
		low, err := e.agg.LowStock(ctx)
		require.NoError(t, err)
		got := []string{}
		for _, p := range low {
			got = append(got, p.ID)
		}
		require.Equal(t, want, got, "paso %d", step)
	}
}

func TestRecentMovements(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.seed(t, "p1", 0, 0, "1", "2")
	for i := 1; i <= 7; i++ {
		e.move(t, "p1", "IN", i)
	}

	recent, err := e.agg.RecentMovements(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	// el último insertado primero
	assert.Equal(t, 7, recent[0].Quantity)
	assert.Equal(t, 3, recent[4].Quantity)

	none, err := e.agg.RecentMovements(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestValuation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.seed(t, "p1", 10, 0, "2.50", "4")
	e.seed(t, "p2", 3, 0, "10", "15.10")

	value, err := e.agg.InventoryValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "55", value.String())

	sales, err := e.agg.PotentialSalesValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "85.3", sales.String())

	profit, err := e.agg.PotentialProfit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "30.3", profit.String())

	e.move(t, "p1", "OUT", 10)
	value, err = e.agg.InventoryValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "30", value.String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Dashboard
// ──────────────────────────────────────────────────────────────────────────────

func TestDashboard_GetSummary(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.seed(t, "p1", 10, 5, "1", "3")
	e.seed(t, "p2", 1, 5, "2", "2")
	e.move(t, "p1", "OUT", 2)
	e.move(t, "p2", "IN", 1)

	uc := analytics.NewDashboardUseCase(e.txRunner, 1)
	sum, err := uc.GetSummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.TotalProducts)
	assert.Equal(t, 2, sum.TotalMovements)
	assert.Equal(t, 1, sum.LowStockCount)
	assert.Equal(t, "p2", sum.LowStock[0].ID)
	require.Len(t, sum.RecentMovements, 1)
	assert.Equal(t, "p2", sum.RecentMovements[0].ProductID)
	// 8*1 + 2*2 = 12 ; 8*3 + 2*2 = 28
	assert.Equal(t, "12", sum.Valuation.InventoryValue.String())
	assert.Equal(t, "28", sum.Valuation.PotentialSalesValue.String())
	assert.Equal(t, "16", sum.Valuation.PotentialProfit.String())
}

func TestDashboard_CatalogoVacio(t *testing.T) {
	e := newEnv()
	sum, err := analytics.NewDashboardUseCase(e.txRunner, 0).GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.TotalProducts)
	assert.Empty(t, sum.LowStock)
	assert.Empty(t, sum.RecentMovements)
	assert.True(t, sum.Valuation.InventoryValue.IsZero())
}

// Con un solo producto a precio de compra 1 y solo entradas de 1 unidad, el
// valor de inventario debe ser igual al número de movimientos del mismo resumen.
func TestDashboard_ResumenConsistenteConEscriturasConcurrentes(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.seed(t, "p1", 0, 0, "1", "2")
	uc := analytics.NewDashboardUseCase(e.txRunner, 5)

	const writers, perWriter = 8, 100
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := e.record.Execute(ctx, appinventory.RecordMovementInput{ProductID: "p1", Type: "IN", Quantity: 1})
				assert.NoError(t, err)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for reads := 0; ; reads++ {
		sum, err := uc.GetSummary(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(sum.TotalMovements), sum.Valuation.InventoryValue.IntPart(), "lectura %d", reads)
		if n := len(sum.RecentMovements); n > 0 {
			assert.LessOrEqual(t, n, sum.TotalMovements)
		}
		select {
		case <-done:
			final, err := uc.GetSummary(ctx)
			require.NoError(t, err)
			assert.Equal(t, writers*perWriter, final.TotalMovements)
			assert.Equal(t, "800", final.Valuation.InventoryValue.String())
			return
		default:
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Reposición
// ──────────────────────────────────────────────────────────────────────────────

func TestReplenishment_PriorizaPorMargen(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.seed(t, "barato", 1, 4, "9", "10")  // margen 10%
	e.seed(t, "rentable", 8, 5, "1", "2") // se vuelve bajo stock tras la salida
	e.seed(t, "ok", 50, 5, "1", "2")
	e.move(t, "rentable", "OUT", 5)

	list, err := analytics.NewReplenishmentUseCase(e.txRunner).GenerateReplenishmentList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	first := list[0]
	assert.Equal(t, "rentable", first.ProductID)
	assert.Equal(t, 1, first.Priority)
	assert.Equal(t, 3, first.CurrentStock)
	assert.Equal(t, 8, first.IdealStock) // ceil(5 * 1.5)
	assert.Equal(t, 5, first.SuggestedOrderQty)
	assert.Equal(t, 5, first.UnitsOutLast90Days)
	assert.Equal(t, "50", first.GrossMarginPct.String())
	assert.Equal(t, "5", first.EstimatedOrderCost.String())

	second := list[1]
	assert.Equal(t, "barato", second.ProductID)
	assert.Equal(t, 6, second.IdealStock)
	assert.Equal(t, 5, second.SuggestedOrderQty)
	assert.Equal(t, "45", second.EstimatedOrderCost.String())
}

func TestReplenishment_SinBajoStock(t *testing.T) {
	e := newEnv()
	e.seed(t, "p1", 10, 1, "1", "2")
	list, err := analytics.NewReplenishmentUseCase(e.txRunner).GenerateReplenishmentList(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMovements_PaginaYTotal(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.seed(t, "a", 0, 0, "1", "2")
	e.seed(t, "b", 0, 0, "1", "2")
	for i := 1; i <= 3; i++ {
		e.move(t, "a", "IN", i)
	}
	e.move(t, "b", "IN", 9)

	page, total, err := e.agg.Movements(ctx, repository.MovementFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, 9, page[0].Quantity)

	page, total, err = e.agg.Movements(ctx, repository.MovementFilter{ProductID: "a", Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, 2, page[0].Quantity)
}

func TestMovements_TotalConsistenteConLaPagina(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.seed(t, "p1", 0, 0, "1", "2")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_, err := e.record.Execute(ctx, appinventory.RecordMovementInput{ProductID: "p1", Type: "IN", Quantity: 1})
			assert.NoError(t, err)
		}
	}()

	for i := 0; i < 200; i++ {
		// sin límite la página contiene el ledger entero de la vista
		page, total, err := e.agg.Movements(ctx, repository.MovementFilter{})
		require.NoError(t, err)
		require.Len(t, page, total)

		filtered, totalP1, err := e.agg.Movements(ctx, repository.MovementFilter{ProductID: "p1"})
		require.NoError(t, err)
		require.Len(t, filtered, totalP1)
	}
	wg.Wait()

	_, total, err := e.agg.Movements(ctx, repository.MovementFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 500, total)
}
