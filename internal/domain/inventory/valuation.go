package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Valuation cifras monetarias derivadas del catálogo.
type Valuation struct {
	InventoryValue      decimal.Decimal // Σ qty * buyPrice
	PotentialSalesValue decimal.Decimal // Σ qty * sellPrice
	PotentialProfit     decimal.Decimal // ventas - valor
}

// LowStock filtra los productos con Quantity < MinThreshold conservando el orden.
func LowStock(products []*entity.Product) []*entity.Product {
	out := []*entity.Product{}
	for _, p := range products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}

// InventoryValue Σ qty * buyPrice.
func InventoryValue(products []*entity.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.BuyPrice.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total
}

// PotentialSalesValue Σ qty * sellPrice.
func PotentialSalesValue(products []*entity.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.SellPrice.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total
}

// Valuate calcula las tres cifras sobre el mismo conjunto de productos.
func Valuate(products []*entity.Product) Valuation {
	value := InventoryValue(products)
	sales := PotentialSalesValue(products)
	return Valuation{
		InventoryValue:      value,
		PotentialSalesValue: sales,
		PotentialProfit:     sales.Sub(value),
	}
}
