// Package analytics deriva vistas de solo lectura (bajo stock, movimientos
// recientes, valuación, dashboard, reposición) a partir del catálogo y del
// ledger. Todo se recalcula en cada llamada; nada se guarda aparte.
package analytics

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ProductReader lectura del catálogo en orden de creación.
type ProductReader interface {
	List(ctx context.Context) ([]*entity.Product, error)
}

// MovementReader lectura del ledger.
type MovementReader interface {
	List(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error)
}

// Snapshotter ejecuta fn sobre una vista consistente del catálogo y del ledger:
// cada movimiento se ve aplicado por completo o no se ve. Las vistas que
// combinan más de una lectura pasan por aquí.
type Snapshotter interface {
	View(ctx context.Context, fn func(
		products repository.ProductRepository,
		movements repository.MovementRepository,
	) error) error
}

// AggregationService calcula las vistas derivadas.
type AggregationService struct {
	products  ProductReader
	movements MovementReader
	snapshots Snapshotter
}

// NewAggregationService construye el servicio.
func NewAggregationService(products ProductReader, movements MovementReader, snapshots Snapshotter) *AggregationService {
	return &AggregationService{products: products, movements: movements, snapshots: snapshots}
}

// LowStock productos con Quantity < MinThreshold, en orden de catálogo.
func (s *AggregationService) LowStock(ctx context.Context) ([]*entity.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.LowStock(products), nil
}

// RecentMovements los n movimientos más recientes (fecha desc, último insertado primero).
func (s *AggregationService) RecentMovements(ctx context.Context, n int) ([]*entity.Movement, error) {
	if n <= 0 {
		return []*entity.Movement{}, nil
	}
	return s.movements.List(ctx, repository.MovementFilter{Limit: n})
}

// InventoryValue Σ qty * buyPrice.
func (s *AggregationService) InventoryValue(ctx context.Context) (decimal.Decimal, error) {
	v, err := s.Valuation(ctx)
	return v.InventoryValue, err
}

// PotentialSalesValue Σ qty * sellPrice.
func (s *AggregationService) PotentialSalesValue(ctx context.Context) (decimal.Decimal, error) {
	v, err := s.Valuation(ctx)
	return v.PotentialSalesValue, err
}

// PotentialProfit ventas potenciales - valor de inventario.
func (s *AggregationService) PotentialProfit(ctx context.Context) (decimal.Decimal, error) {
	v, err := s.Valuation(ctx)
	return v.PotentialProfit, err
}

// Valuation las tres cifras sobre una sola lectura del catálogo.
func (s *AggregationService) Valuation(ctx context.Context) (inventory.Valuation, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return inventory.Valuation{}, err
	}
	return inventory.Valuate(products), nil
}

// Movements página del ledger (más recientes primero) y total de movimientos
// que cumplen el filtro sin paginar. Ambos salen de la misma vista.
func (s *AggregationService) Movements(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, int, error) {
	var (
		page  []*entity.Movement
		total int
	)
	err := s.snapshots.View(ctx, func(_ repository.ProductRepository, movements repository.MovementRepository) error {
		var err error
		page, err = movements.List(ctx, filter)
		if err != nil {
			return err
		}
		if filter.ProductID == "" && filter.From == nil && filter.To == nil {
			total, err = movements.Count(ctx)
			return err
		}
		all, err := movements.List(ctx, repository.MovementFilter{ProductID: filter.ProductID, From: filter.From, To: filter.To})
		if err != nil {
			return err
		}
		total = len(all)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page, total, nil
}
