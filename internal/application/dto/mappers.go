package dto

import (
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// FromProduct convierte la entidad a su representación HTTP.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Category:        p.Category,
		Quantity:        p.Quantity,
		InitialQuantity: p.InitialQuantity,
		BuyPrice:        p.BuyPrice,
		SellPrice:       p.SellPrice,
		MinThreshold:    p.MinThreshold,
		LowStock:        p.IsLowStock(),
		CreatedBy:       p.CreatedBy,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// FromProducts convierte una lista conservando el orden.
func FromProducts(ps []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromProduct(p))
	}
	return out
}

// FromMovement convierte un movimiento.
func FromMovement(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		Date:        m.Date,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Type:        string(m.Type),
		Quantity:    m.Quantity,
		Note:        m.Note,
		CreatedBy:   m.CreatedBy,
	}
}

// FromMovements convierte una lista conservando el orden.
func FromMovements(ms []*entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromMovement(m))
	}
	return out
}

// FromValuation convierte la valuación de dominio.
func FromValuation(v inventory.Valuation) ValuationResponse {
	return ValuationResponse{
		InventoryValue:      v.InventoryValue,
		PotentialSalesValue: v.PotentialSalesValue,
		PotentialProfit:     v.PotentialProfit,
	}
}

// FromDiscrepancies convierte el resultado de la conciliación.
func FromDiscrepancies(ds []inventory.Discrepancy) []DiscrepancyResponse {
	out := make([]DiscrepancyResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, DiscrepancyResponse{ProductID: d.ProductID, Name: d.Name, Stored: d.Stored, Replayed: d.Replayed})
	}
	return out
}

// FromUser convierte un usuario (sin hash).
func FromUser(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
