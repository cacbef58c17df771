package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const replenishmentWindow = 90 * 24 * time.Hour

// ReplenishmentUseCase genera la lista de reposición a partir del bajo stock.
// Prioriza por margen, luego por salidas recientes, luego por déficit.
type ReplenishmentUseCase struct {
	snapshots Snapshotter
	now       func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(snapshots Snapshotter) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		snapshots: snapshots,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GenerateReplenishmentList devuelve los productos bajo punto de reorden con la
// cantidad sugerida de pedido y su prioridad (1 = más urgente).
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	var (
		low    []*entity.Product
		recent []*entity.Movement
	)
	from := uc.now().Add(-replenishmentWindow)
	err := uc.snapshots.View(ctx, func(products repository.ProductRepository, movements repository.MovementRepository) error {
		all, err := products.List(ctx)
		if err != nil {
			return err
		}
		if low = inventory.LowStock(all); len(low) == 0 {
			return nil
		}
		recent, err = movements.List(ctx, repository.MovementFilter{From: &from})
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(low) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}
	unitsOut := make(map[string]int)
	for _, m := range recent {
		if m.Type == entity.MovementTypeOUT {
			unitsOut[m.ProductID] += m.Quantity
		}
	}

	hundred := decimal.NewFromInt(100)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(low))
	for _, p := range low {
		ideal := int(decimal.NewFromInt(int64(p.MinThreshold)).Mul(decimal.RequireFromString("1.5")).Ceil().IntPart())
		suggested := ideal - p.Quantity
		if suggested < 0 {
			suggested = 0
		}
		var margin decimal.Decimal
		if p.SellPrice.GreaterThan(decimal.Zero) {
			margin = p.SellPrice.Sub(p.BuyPrice).Div(p.SellPrice).Mul(hundred).Round(2)
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          p.ID,
			ProductName:        p.Name,
			Category:           p.Category,
			CurrentStock:       p.Quantity,
			ReorderPoint:       p.MinThreshold,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           p.BuyPrice,
			EstimatedOrderCost: p.BuyPrice.Mul(decimal.NewFromInt(int64(suggested))),
			GrossMarginPct:     margin,
			UnitsOutLast90Days: unitsOut[p.ID],
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.GrossMarginPct.Equal(b.GrossMarginPct) {
			return a.GrossMarginPct.GreaterThan(b.GrossMarginPct)
		}
		if a.UnitsOutLast90Days != b.UnitsOutLast90Days {
			return a.UnitsOutLast90Days > b.UnitsOutLast90Days
		}
		return a.ReorderPoint-a.CurrentStock > b.ReorderPoint-b.CurrentStock
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
