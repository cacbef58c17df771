package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepository)(nil)
	_ repository.MovementRepository = (*MovementRepository)(nil)
	_ repository.UserRepository     = (*UserRepository)(nil)
)

// MovementRepository implementa repository.MovementRepository (solo agregar).
type MovementRepository struct {
	s  *Store
	tx *tx
}

// NewMovementRepository crea el repositorio fuera de transacción.
func NewMovementRepository(s *Store) *MovementRepository {
	return &MovementRepository{s: s}
}

// Append agrega el movimiento. En transacción se publica en el commit, que es
// cuando recibe su Seq.
func (r *MovementRepository) Append(_ context.Context, m *entity.Movement) error {
	if r.tx != nil {
		r.tx.movements = append(r.tx.movements, m)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.appendMovementLocked(m)
}

// GetByID obtiene un movimiento.
func (r *MovementRepository) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	if r.tx != nil {
		for _, m := range r.tx.movements {
			if m.ID == id {
				return m.Clone(), nil
			}
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.movementIdx[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.s.movements[i].Clone(), nil
}

// List devuelve los movimientos filtrados, más recientes primero.
func (r *MovementRepository) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	out := r.snapshot(func(m *entity.Movement) bool {
		if f.ProductID != "" && m.ProductID != f.ProductID {
			return false
		}
		if f.From != nil && m.Date.Before(*f.From) {
			return false
		}
		if f.To != nil && m.Date.After(*f.To) {
			return false
		}
		return true
	})
	inventory.SortNewestFirst(out)

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*entity.Movement{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// ListByProductAsc movimientos de un producto en orden de inserción.
func (r *MovementRepository) ListByProductAsc(_ context.Context, productID string) ([]*entity.Movement, error) {
	return r.snapshot(func(m *entity.Movement) bool { return m.ProductID == productID }), nil
}

// Count longitud del ledger.
func (r *MovementRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	n := len(r.s.movements)
	r.s.mu.RUnlock()
	if r.tx != nil {
		n += len(r.tx.movements)
	}
	return n, nil
}

// snapshot copia los movimientos que cumplen keep, en orden de inserción.
func (r *MovementRepository) snapshot(keep func(*entity.Movement) bool) []*entity.Movement {
	out := []*entity.Movement{}
	r.s.mu.RLock()
	for _, m := range r.s.movements {
		if keep(m) {
			out = append(out, m.Clone())
		}
	}
	r.s.mu.RUnlock()
	if r.tx != nil {
		for _, m := range r.tx.movements {
			if keep(m) {
				out = append(out, m.Clone())
			}
		}
	}
	return out
}
