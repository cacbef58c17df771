package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter filtros opcionales para listar el ledger.
type MovementFilter struct {
	ProductID string
	From      *time.Time
	To        *time.Time
	Limit     int // 0 = sin límite
	Offset    int
}

// MovementRepository puerto del ledger de movimientos. Solo permite agregar.
type MovementRepository interface {
	// Append asigna Seq y persiste el movimiento.
	Append(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// List devuelve los movimientos más recientes primero (Date desc, Seq desc).
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	// ListByProductAsc devuelve los movimientos de un producto en orden de inserción.
	ListByProductAsc(ctx context.Context, productID string) ([]*entity.Movement, error)
	Count(ctx context.Context) (int, error)
}
