package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// Requiere TEST_DATABASE_URL apuntando a una base desechable.
func newPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

func seedProduct(t *testing.T, repo repository.ProductRepository, qty int) *entity.Product {
	t.Helper()
	now := time.Now().UTC()
	p := &entity.Product{
		ID: uuid.NewString(), Name: "prod", Category: "General",
		Quantity: qty, InitialQuantity: qty,
		BuyPrice: decimal.RequireFromString("1.50"), SellPrice: decimal.RequireFromString("2.25"),
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestPostgres_ProductRepository(t *testing.T) {
	pool := newPool(t)
	ctx := context.Background()
	repo := postgres.NewProductRepository(pool)

	p := seedProduct(t, repo, 3)
	assert.NotZero(t, p.Seq)
	assert.ErrorIs(t, repo.Create(ctx, p), domain.ErrDuplicate)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.BuyPrice.Equal(decimal.RequireFromString("1.5")))

	up, err := repo.ApplyDelta(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, up.Quantity)

	_, err = repo.ApplyDelta(ctx, p.ID, -6)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 5, insufficient.Available)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), domain.ErrNotFound)
}

func TestPostgres_RecordMovementConcurrente(t *testing.T) {
	pool := newPool(t)
	ctx := context.Background()
	p := seedProduct(t, postgres.NewProductRepository(pool), 10)
	uc := appinventory.NewRecordMovementUseCase(postgres.NewTxRunner(pool))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(ctx, appinventory.RecordMovementInput{ProductID: p.ID, Type: "OUT", Quantity: 1})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, accepted)

	got, err := postgres.NewProductRepository(pool).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	movs, err := postgres.NewMovementRepository(pool).ListByProductAsc(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 10)
	for i := 1; i < len(movs); i++ {
		assert.Less(t, movs[i-1].Seq, movs[i].Seq)
	}
}

func TestPostgres_UserRepository(t *testing.T) {
	pool := newPool(t)
	ctx := context.Background()
	repo := postgres.NewUserRepository(pool)
	email := uuid.NewString() + "@example.com"
	now := time.Now().UTC()

	u := &entity.User{ID: uuid.NewString(), Email: email, PasswordHash: "x", Role: entity.RoleUser, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, u))
	dup := *u
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, repo.Create(ctx, &dup), domain.ErrEmailAlreadyExists)

	got, err := repo.GetByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, repo.Delete(ctx, u.ID))
	missing, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgres_ViewInstantaneaDeSoloLectura(t *testing.T) {
	pool := newPool(t)
	ctx := context.Background()
	p := seedProduct(t, postgres.NewProductRepository(pool), 4)
	runner := postgres.NewTxRunner(pool)
	uc := appinventory.NewRecordMovementUseCase(runner)

	err := runner.View(ctx, func(products repository.ProductRepository, movements repository.MovementRepository) error {
		before, err := products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		countBefore, err := movements.Count(ctx)
		require.NoError(t, err)

		_, err = uc.Execute(ctx, appinventory.RecordMovementInput{ProductID: p.ID, Type: "IN", Quantity: 3})
		require.NoError(t, err)

		after, err := products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, before.Quantity, after.Quantity)
		countAfter, err := movements.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, countBefore, countAfter)
		return nil
	})
	require.NoError(t, err)

	err = runner.View(ctx, func(products repository.ProductRepository, _ repository.MovementRepository) error {
		_, err := products.ApplyDelta(ctx, p.ID, 1)
		return err
	})
	assert.Error(t, err, "la vista es de solo lectura")

	got, err := postgres.NewProductRepository(pool).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)
}
