package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ inventory.TxRunner    = (*TxRunner)(nil)
	_ analytics.Snapshotter = (*TxRunner)(nil)
)

// TxRunner implementa inventory.TxRunner sobre Store.
type TxRunner struct {
	store *Store
}

// NewTxRunner crea el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con repositorios atados a una transacción en memoria.
// Los bloqueos por producto se liberan siempre al salir; las escrituras solo
// se publican si fn no devuelve error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	products repository.ProductRepository,
	movements repository.MovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := newTx(r.store)
	defer t.release()

	if err := fn(&ProductRepository{s: r.store, tx: t}, &MovementRepository{s: r.store, tx: t}); err != nil {
		return err
	}
	if err := t.commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// View ejecuta fn sobre una copia del catálogo y del ledger tomada de una sola
// vez. Lo que fn escriba se descarta.
func (r *TxRunner) View(ctx context.Context, fn func(
	products repository.ProductRepository,
	movements repository.MovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := r.store.snapshot()
	return fn(NewProductRepository(snap), NewMovementRepository(snap))
}

// tx acumula escrituras y bloqueos hasta commit/release.
type tx struct {
	s         *Store
	held      map[string]func()
	products  map[string]*entity.Product // nil = eliminado
	created   map[string]bool
	order     []string // ids creados, en orden de creación
	movements []*entity.Movement
}

func newTx(s *Store) *tx {
	return &tx{
		s:        s,
		held:     make(map[string]func()),
		products: make(map[string]*entity.Product),
		created:  make(map[string]bool),
	}
}

// lock toma el bloqueo del producto una sola vez por transacción.
func (t *tx) lock(ctx context.Context, id string) error {
	if _, ok := t.held[id]; ok {
		return nil
	}
	unlock, err := t.s.locks.Lock(ctx, id)
	if err != nil {
		return err
	}
	t.held[id] = unlock
	return nil
}

func (t *tx) release() {
	for id, unlock := range t.held {
		unlock()
		delete(t.held, id)
	}
}

// product devuelve la versión vista por la transacción (escrita o publicada).
func (t *tx) product(id string) (*entity.Product, error) {
	if p, ok := t.products[id]; ok {
		if p == nil {
			return nil, domain.ErrNotFound
		}
		return p, nil
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	p, err := t.s.productLocked(id)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

func (t *tx) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range t.created {
		if _, exists := s.products[id]; exists {
			return domain.ErrDuplicate
		}
	}
	for _, m := range t.movements {
		if _, exists := s.movementIdx[m.ID]; exists {
			return domain.ErrDuplicate
		}
	}

	for id, p := range t.products {
		switch {
		case t.created[id]:
		case p == nil:
			delete(s.products, id)
		default:
			s.products[id] = p.Clone()
		}
	}
	for _, id := range t.order {
		if p := t.products[id]; p != nil {
			_ = s.insertProductLocked(p)
		}
	}
	for _, m := range t.movements {
		_ = s.appendMovementLocked(m)
	}
	return nil
}
