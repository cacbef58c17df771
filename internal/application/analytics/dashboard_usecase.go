package analytics

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// DefaultRecentLimit movimientos recientes en el dashboard si no se configura otro valor.
const DefaultRecentLimit = 5

// DashboardUseCase genera el resumen de la pantalla principal.
type DashboardUseCase struct {
	snapshots   Snapshotter
	recentLimit int
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(snapshots Snapshotter, recentLimit int) *DashboardUseCase {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &DashboardUseCase{snapshots: snapshots, recentLimit: recentLimit}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Tres lecturas sobre la misma vista:
//  1. catálogo            → total, bajo stock, valuación
//  2. ledger (recientes)  → RecentMovements
//  3. ledger (conteo)     → TotalMovements
//
// Van en secuencia: una transacción SQL no admite consultas concurrentes.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	var (
		products []*entity.Product
		recent   []*entity.Movement
		count    int
	)
	err := uc.snapshots.View(ctx, func(pr repository.ProductRepository, mr repository.MovementRepository) error {
		var err error
		if products, err = pr.List(ctx); err != nil {
			return fmt.Errorf("dashboard: productos: %w", err)
		}
		if recent, err = mr.List(ctx, repository.MovementFilter{Limit: uc.recentLimit}); err != nil {
			return fmt.Errorf("dashboard: movimientos recientes: %w", err)
		}
		if count, err = mr.Count(ctx); err != nil {
			return fmt.Errorf("dashboard: conteo de movimientos: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	low := inventory.LowStock(products)
	return &dto.DashboardSummaryDTO{
		TotalProducts:   len(products),
		TotalMovements:  count,
		LowStockCount:   len(low),
		LowStock:        dto.FromProducts(low),
		RecentMovements: dto.FromMovements(recent),
		Valuation:       dto.FromValuation(inventory.Valuate(products)),
	}, nil
}
