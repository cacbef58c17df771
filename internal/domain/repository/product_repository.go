package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos de lectura devuelven domain.ErrNotFound cuando el id no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate lee el producto tomando el bloqueo exclusivo de su fila
	// hasta el fin de la transacción en curso.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// List devuelve todos los productos en orden de creación.
	List(ctx context.Context) ([]*entity.Product, error)
	// ApplyDelta suma delta a Quantity; único camino de mutación de existencias.
	ApplyDelta(ctx context.Context, id string, delta int) (*entity.Product, error)
	// Update persiste campos de catálogo; nunca toca Quantity.
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
