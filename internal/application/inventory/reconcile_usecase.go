package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReconcileUseCase verifica que InitialQuantity + Σ deltas del ledger coincida
// con la existencia guardada de cada producto. Solo lee.
type ReconcileUseCase struct {
	txRunner TxRunner
	products repository.ProductRepository
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(txRunner TxRunner, products repository.ProductRepository) *ReconcileUseCase {
	return &ReconcileUseCase{txRunner: txRunner, products: products}
}

// Execute devuelve los productos en desacuerdo (vacío si todo cuadra).
// Cada producto se lee bloqueado junto con sus movimientos para no mezclar
// estados de un movimiento en curso.
func (uc *ReconcileUseCase) Execute(ctx context.Context) ([]inventory.Discrepancy, error) {
	list, err := uc.products.List(ctx)
	if err != nil {
		return nil, err
	}

	out := []inventory.Discrepancy{}
	for _, p := range list {
		var found []inventory.Discrepancy
		err := uc.txRunner.Run(ctx, func(products repository.ProductRepository, movements repository.MovementRepository) error {
			locked, err := products.GetForUpdate(ctx, p.ID)
			if err != nil {
				return err
			}
			movs, err := movements.ListByProductAsc(ctx, p.ID)
			if err != nil {
				return err
			}
			found = inventory.Reconcile([]*entity.Product{locked}, map[string][]*entity.Movement{p.ID: movs})
			return nil
		})
		if errors.Is(err, domain.ErrNotFound) {
			continue // eliminado mientras se recorría
		}
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}
