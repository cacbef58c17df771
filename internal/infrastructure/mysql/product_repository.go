package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = "id, name, category, quantity, initial_quantity, buy_price, sell_price, min_threshold, created_by, seq, created_at, updated_at"

// ProductRepo implementación sobre MySQL (usable con *sql.DB o *sql.Tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un producto. seq es AUTO_INCREMENT.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO products (id, name, category, quantity, initial_quantity, buy_price, sell_price, min_threshold, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Category, p.Quantity, p.InitialQuantity, p.BuyPrice, p.SellPrice,
		p.MinThreshold, p.CreatedBy, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return domain.ErrDuplicate
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert product: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("product seq: %w", err)
	}
	p.Seq = seq
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
}

// GetForUpdate lee el producto con SELECT ... FOR UPDATE (bloqueo de fila InnoDB).
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, "SELECT "+productColumns+" FROM products WHERE id = ? FOR UPDATE", id)
}

func (r *ProductRepo) get(ctx context.Context, query, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List devuelve todos los productos en orden de creación.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ApplyDelta suma delta a la existencia con un UPDATE condicionado y relee la fila.
func (r *ProductRepo) ApplyDelta(ctx context.Context, id string, delta int) (*entity.Product, error) {
	res, err := r.q.ExecContext(ctx,
		"UPDATE products SET quantity = quantity + ?, updated_at = ? WHERE id = ? AND quantity + ? >= 0",
		delta, time.Now().UTC(), id, delta,
	)
	if err != nil && !isCheckViolation(err) {
		return nil, fmt.Errorf("apply stock delta: %w", err)
	}
	if err == nil {
		if n, _ := res.RowsAffected(); n > 0 {
			return r.GetByID(ctx, id)
		}
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, &domain.InsufficientStockError{ProductID: id, Available: current.Quantity, Requested: -delta}
}

// Update actualiza los campos de catálogo. No modifica quantity.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	if _, err := r.q.ExecContext(ctx, `
		UPDATE products SET name = ?, category = ?, buy_price = ?, sell_price = ?, min_threshold = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Category, p.BuyPrice, p.SellPrice, p.MinThreshold, p.UpdatedAt.UTC(), p.ID,
	); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	// RowsAffected en MySQL cuenta filas cambiadas, no encontradas
	return r.exists(ctx, p.ID)
}

// Delete elimina un producto. Sus movimientos se conservan.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count número de productos.
func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (r *ProductRepo) exists(ctx context.Context, id string) error {
	var one int
	err := r.q.QueryRowContext(ctx, "SELECT 1 FROM products WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Quantity, &p.InitialQuantity, &p.BuyPrice, &p.SellPrice,
		&p.MinThreshold, &p.CreatedBy, &p.Seq, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
