package memory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository implementa repository.ProductRepository.
// Con tx != nil opera dentro de una transacción de TxRunner.
type ProductRepository struct {
	s  *Store
	tx *tx
}

// NewProductRepository crea el repositorio fuera de transacción.
func NewProductRepository(s *Store) *ProductRepository {
	return &ProductRepository{s: s}
}

// Create inserta un producto y asigna Seq.
func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	if r.tx != nil {
		if _, err := r.tx.product(p.ID); err == nil {
			return domain.ErrDuplicate
		}
		r.tx.products[p.ID] = p
		if !r.tx.created[p.ID] {
			r.tx.created[p.ID] = true
			r.tx.order = append(r.tx.order, p.ID)
		}
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertProductLocked(p)
}

// GetByID obtiene un producto por ID.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	if r.tx != nil {
		p, err := r.tx.product(id)
		if err != nil {
			return nil, err
		}
		return p.Clone(), nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, err := r.s.productLocked(id)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// GetForUpdate toma el bloqueo del producto hasta el fin de la transacción.
// Fuera de transacción equivale a GetByID.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// List devuelve los productos en orden de creación.
func (r *ProductRepository) List(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.RLock()
	list := r.s.productsInOrderLocked()
	r.s.mu.RUnlock()

	if r.tx == nil {
		return list, nil
	}
	out := make([]*entity.Product, 0, len(list))
	for _, p := range list {
		staged, ok := r.tx.products[p.ID]
		switch {
		case !ok:
			out = append(out, p)
		case staged != nil:
			out = append(out, staged.Clone())
		}
	}
	for _, id := range r.tx.order {
		if p := r.tx.products[id]; p != nil {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

// ApplyDelta suma delta a la existencia. Rechaza dejarla negativa.
func (r *ProductRepository) ApplyDelta(ctx context.Context, id string, delta int) (*entity.Product, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, id); err != nil {
			return nil, err
		}
		p, err := r.tx.product(id)
		if err != nil {
			return nil, err
		}
		next, err := withDelta(p, delta, r.s.now())
		if err != nil {
			return nil, err
		}
		r.tx.products[id] = next
		return next.Clone(), nil
	}

	unlock, err := r.s.locks.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, err := r.s.productLocked(id)
	if err != nil {
		return nil, err
	}
	next, err := withDelta(p, delta, r.s.now())
	if err != nil {
		return nil, err
	}
	r.s.products[id] = next
	return next.Clone(), nil
}

// Update persiste los campos de catálogo. Quantity, InitialQuantity y Seq se conservan.
func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	if r.tx != nil {
		if err := r.tx.lock(ctx, p.ID); err != nil {
			return err
		}
		cur, err := r.tx.product(p.ID)
		if err != nil {
			return err
		}
		r.tx.products[p.ID] = withCatalog(cur, p)
		return nil
	}

	unlock, err := r.s.locks.Lock(ctx, p.ID)
	if err != nil {
		return err
	}
	defer unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, err := r.s.productLocked(p.ID)
	if err != nil {
		return err
	}
	r.s.products[p.ID] = withCatalog(cur, p)
	return nil
}

// Delete elimina el producto. Los movimientos que lo referencian se conservan.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if r.tx != nil {
		if err := r.tx.lock(ctx, id); err != nil {
			return err
		}
		if _, err := r.tx.product(id); err != nil {
			return err
		}
		r.tx.products[id] = nil
		return nil
	}

	unlock, err := r.s.locks.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, err := r.s.productLocked(id); err != nil {
		return err
	}
	delete(r.s.products, id)
	return nil
}

// Count número de productos publicados.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	if r.tx != nil {
		list, err := r.List(ctx)
		return len(list), err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.products), nil
}

func withDelta(p *entity.Product, delta int, now time.Time) (*entity.Product, error) {
	next := p.Clone()
	next.Quantity += delta
	if next.Quantity < 0 {
		return nil, &domain.InsufficientStockError{ProductID: p.ID, Available: p.Quantity, Requested: -delta}
	}
	next.UpdatedAt = now
	return next, nil
}

func withCatalog(cur, in *entity.Product) *entity.Product {
	next := cur.Clone()
	next.Name = in.Name
	next.Category = in.Category
	next.BuyPrice = in.BuyPrice
	next.SellPrice = in.SellPrice
	next.MinThreshold = in.MinThreshold
	next.UpdatedAt = in.UpdatedAt
	return next
}
