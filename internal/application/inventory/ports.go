package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error nada de lo escrito queda visible; si no, todo se publica a la vez.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		products repository.ProductRepository,
		movements repository.MovementRepository,
	) error) error
}

// Metrics recibe el resultado de cada intento de movimiento.
type Metrics interface {
	MovementRecorded(t entity.MovementType, quantity int)
	MovementRejected(reason string)
	ObserveLatency(d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) MovementRecorded(entity.MovementType, int) {}
func (noopMetrics) MovementRejected(string)                   {}
func (noopMetrics) ObserveLatency(time.Duration)              {}
