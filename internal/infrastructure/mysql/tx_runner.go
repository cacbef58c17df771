package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ inventory.TxRunner    = (*TxRunner)(nil)
	_ analytics.Snapshotter = (*TxRunner)(nil)
)

// DefaultMaxAttempts intentos por transacción ante deadlock.
const DefaultMaxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción MySQL. Si InnoDB aborta
// por deadlock (1213) o lock wait timeout (1205) reintenta la transacción completa.
type TxRunner struct {
	db          *sql.DB
	maxAttempts int
}

// NewTxRunner construye el runner.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db, maxAttempts: DefaultMaxAttempts}
}

// Run ejecuta fn con repositorios atados a la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(
	products repository.ProductRepository,
	movements repository.MovementRepository,
) error) error {
	backoffs := []time.Duration{0, 50 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}

	var err error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isDeadlockError(err) {
			return err
		}
		if attempt == r.maxAttempts {
			break
		}
		base := backoffs[min(attempt, len(backoffs)-1)]
		// jitter ±20%
		wait := time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("max retries exceeded: %w", err)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(
	products repository.ProductRepository,
	movements repository.MovementRepository,
) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(NewProductRepository(tx), NewMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// View ejecuta fn en una transacción REPEATABLE READ de solo lectura. InnoDB
// fija la instantánea en la primera lectura y la mantiene hasta el final.
func (r *TxRunner) View(ctx context.Context, fn func(
	products repository.ProductRepository,
	movements repository.MovementRepository,
) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(NewProductRepository(tx), NewMovementRepository(tx)); err != nil {
		return err
	}
	return tx.Commit()
}
