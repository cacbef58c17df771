package inventory_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store     *memory.Store
	products  *memory.ProductRepository
	movements *memory.MovementRepository
	metrics   *recordingMetrics
	uc        *appinventory.RecordMovementUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	metrics := &recordingMetrics{rejected: map[string]int{}}
	return &fixture{
		store:     store,
		products:  memory.NewProductRepository(store),
		movements: memory.NewMovementRepository(store),
		metrics:   metrics,
		uc:        appinventory.NewRecordMovementUseCase(memory.NewTxRunner(store), appinventory.WithMetrics(metrics)),
	}
}

func (f *fixture) seed(t *testing.T, id, name string, qty, min int) {
	t.Helper()
	require.NoError(t, f.products.Create(context.Background(), &entity.Product{
		ID:              id,
		Name:            name,
		Category:        "General",
		Quantity:        qty,
		InitialQuantity: qty,
		BuyPrice:        decimal.NewFromInt(2),
		SellPrice:       decimal.NewFromInt(3),
		MinThreshold:    min,
	}))
}

func (f *fixture) quantity(t *testing.T, id string) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func (f *fixture) ledgerLen(t *testing.T) int {
	t.Helper()
	n, err := f.movements.Count(context.Background())
	require.NoError(t, err)
	return n
}

type recordingMetrics struct {
	mu       sync.Mutex
	recorded int
	rejected map[string]int
}

func (m *recordingMetrics) MovementRecorded(entity.MovementType, int) {
	m.mu.Lock()
	m.recorded++
	m.mu.Unlock()
}

func (m *recordingMetrics) MovementRejected(reason string) {
	m.mu.Lock()
	m.rejected[reason]++
	m.mu.Unlock()
}

func (m *recordingMetrics) ObserveLatency(time.Duration) {}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios básicos
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_EntradaSumaYAgregaAlLedger(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "p1", "Tornillo", 10, 5)

	res, err := f.uc.Execute(context.Background(), appinventory.RecordMovementInput{
		ProductID: "p1", Type: "inbound", Quantity: 3, CreatedBy: "u1",
	})
	require.NoError(t, err)

	assert.Equal(t, 13, f.quantity(t, "p1"))
	assert.Equal(t, 13, res.Product.Quantity)
	assert.Equal(t, entity.MovementTypeIN, res.Movement.Type)
	assert.Equal(t, 3, res.Movement.Quantity)
	assert.Equal(t, "Tornillo", res.Movement.ProductName)
	assert.Equal(t, "u1", res.Movement.CreatedBy)
	assert.NotEmpty(t, res.Movement.ID)
	assert.NotZero(t, res.Movement.Seq)
	assert.Equal(t, 1, f.ledgerLen(t))
	assert.Equal(t, 1, f.metrics.recorded)
}

func TestRecordMovement_SalidaMayorAlStockReportaDisponible(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "p1", "Tornillo", 13, 5)

	_, err := f.uc.Execute(context.Background(), appinventory.RecordMovementInput{
		ProductID: "p1", Type: "outbound", Quantity: 20,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 13, stockErr.Available)
	assert.Equal(t, 20, stockErr.Requested)

	assert.Equal(t, 13, f.quantity(t, "p1"))
	assert.Equal(t, 0, f.ledgerLen(t))
	assert.Equal(t, 1, f.metrics.rejected[appinventory.ReasonInsufficientStock])
}

func TestRecordMovement_ProductoInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), appinventory.RecordMovementInput{
		ProductID: "unknown", Type: "IN", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.ledgerLen(t))
}

func TestRecordMovement_SalidaExactaDejaCero(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "p1", "Tornillo", 5, 0)

	_, err := f.uc.Execute(context.Background(), appinventory.RecordMovementInput{
		ProductID: "p1", Type: "OUT", Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.quantity(t, "p1"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación y orden de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_CantidadSeValidaAntesQueElProducto(t *testing.T) {
	f := newFixture(t)

	for _, qty := range []int{0, -1} {
		_, err := f.uc.Execute(context.Background(), appinventory.RecordMovementInput{
			ProductID: "unknown", Type: "OUT", Quantity: qty,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "qty=%d", qty)
	}
}

func TestRecordMovement_CamposInvalidos(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "p1", "Tornillo", 5, 0)

	cases := map[string]appinventory.RecordMovementInput{
		"tipo desconocido": {ProductID: "p1", Type: "ADJUSTMENT", Quantity: 1},
		"sin producto":     {ProductID: "  ", Type: "IN", Quantity: 1},
		"nota muy larga":   {ProductID: "p1", Type: "IN", Quantity: 1, Note: string(make([]rune, appinventory.MaxNoteLength+1))},
	}
	for name, in := range cases {
		_, err := f.uc.Execute(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
	assert.Equal(t, 5, f.quantity(t, "p1"))
	assert.Equal(t, 0, f.ledgerLen(t))
}

func TestRecordMovement_RechazoRepetidoNoCambiaNada(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "p1", "Tornillo", 2, 0)
	in := appinventory.RecordMovementInput{ProductID: "p1", Type: "OUT", Quantity: 3}

	_, err1 := f.uc.Execute(context.Background(), in)
	_, err2 := f.uc.Execute(context.Background(), in)

	assert.ErrorIs(t, err1, domain.ErrInsufficientStock)
	assert.ErrorIs(t, err2, domain.ErrInsufficientStock)
	assert.Equal(t, err1.Error(), err2.Error())
	assert.Equal(t, 2, f.quantity(t, "p1"))
	assert.Equal(t, 0, f.ledgerLen(t))
}

func TestRecordMovement_ContextoCancelado(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "p1", "Tornillo", 2, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Execute(ctx, appinventory.RecordMovementInput{ProductID: "p1", Type: "IN", Quantity: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, f.quantity(t, "p1"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_NombreSeCongelaAlRenombrarYEliminar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "p1", "Tornillo", 5, 0)

	res, err := f.uc.Execute(ctx, appinventory.RecordMovementInput{ProductID: "p1", Type: "IN", Quantity: 1})
	require.NoError(t, err)

	p, err := f.products.GetByID(ctx, "p1")
	require.NoError(t, err)
	p.Name = "Tornillo M6"
	require.NoError(t, f.products.Update(ctx, p))
	require.NoError(t, f.products.Delete(ctx, "p1"))

	got, err := f.movements.GetByID(ctx, res.Movement.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tornillo", got.ProductName)
	assert.Equal(t, "p1", got.ProductID)

	_, err = f.uc.Execute(ctx, appinventory.RecordMovementInput{ProductID: "p1", Type: "IN", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordMovement_IDsUnicosYLedgerCrece(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "p1", "Tornillo", 0, 0)

	seen := map[string]bool{}
	prevLen := 0
	for i := 0; i < 50; i++ {
		res, err := f.uc.Execute(context.Background(), appinventory.RecordMovementInput{ProductID: "p1", Type: "IN", Quantity: 1})
		require.NoError(t, err)
		assert.False(t, seen[res.Movement.ID])
		seen[res.Movement.ID] = true

		n := f.ledgerLen(t)
		assert.Equal(t, prevLen+1, n)
		prevLen = n
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

// Dos salidas concurrentes de 5 sobre stock 5: exactamente una gana.
func TestRecordMovement_CarreraDeSalidas(t *testing.T) {
	for round := 0; round < 50; round++ {
		f := newFixture(t)
		f.seed(t, "p1", "Tornillo", 5, 0)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		start := make(chan struct{})
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, errs[i] = f.uc.Execute(context.Background(), appinventory.RecordMovementInput{
					ProductID: "p1", Type: "OUT", Quantity: 5,
				})
			}(i)
		}
		close(start)
		wg.Wait()

		ok, insufficient := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficient++
			}
		}
		require.Equal(t, 1, ok, "round %d", round)
		require.Equal(t, 1, insufficient, "round %d", round)
		require.Equal(t, 0, f.quantity(t, "p1"))
		require.Equal(t, 1, f.ledgerLen(t))
	}
}

// Secuencias aleatorias concurrentes: nunca hay stock negativo y el ledger
// reproduce la existencia de cada producto.
func TestRecordMovement_InvariantesBajoCargaConcurrente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		f.seed(t, id, "prod-"+id, 10, 3)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				typ := "IN"
				if rnd.Intn(2) == 0 {
					typ = "OUT"
				}
				_, err := f.uc.Execute(ctx, appinventory.RecordMovementInput{
					ProductID: ids[rnd.Intn(len(ids))],
					Type:      typ,
					Quantity:  1 + rnd.Intn(6),
				})
				if err != nil && !errors.Is(err, domain.ErrInsufficientStock) {
					t.Errorf("error inesperado: %v", err)
					return
				}
				// lectura concurrente: nunca negativa
				list, _ := f.products.List(ctx)
				for _, p := range list {
					if p.Quantity < 0 {
						t.Errorf("stock negativo en %s: %d", p.ID, p.Quantity)
						return
					}
				}
			}
		}(int64(w))
	}
	wg.Wait()

	products, err := f.products.List(ctx)
	require.NoError(t, err)
	byProduct := map[string][]*entity.Movement{}
	for _, p := range products {
		movs, err := f.movements.ListByProductAsc(ctx, p.ID)
		require.NoError(t, err)
		byProduct[p.ID] = movs
		assert.GreaterOrEqual(t, p.Quantity, 0)
	}
	assert.Empty(t, inventory.Reconcile(products, byProduct))
}

// Movimientos sobre productos distintos no se bloquean entre sí.
func TestRecordMovement_ProductosDistintosEnParalelo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "a", "A", 1, 0)
	f.seed(t, "b", "B", 1, 0)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- memory.NewTxRunner(f.store).Run(ctx, func(products repository.ProductRepository, _ repository.MovementRepository) error {
			if _, err := products.GetForUpdate(ctx, "a"); err != nil {
				return err
			}
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	_, err := f.uc.Execute(ctx, appinventory.RecordMovementInput{ProductID: "b", Type: "OUT", Quantity: 1})
	require.NoError(t, err)

	timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = f.uc.Execute(timeoutCtx, appinventory.RecordMovementInput{ProductID: "a", Type: "OUT", Quantity: 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.quantity(t, "a"))
}
