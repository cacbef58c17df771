package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/movements.
type RecordMovementRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	Note        string    `json:"note"`
	CreatedBy   string    `json:"created_by,omitempty"`
}

// RecordMovementResponse movimiento creado y estado del producto.
type RecordMovementResponse struct {
	Movement MovementResponse `json:"movement"`
	Product  ProductResponse  `json:"product"`
}

// MovementListResponse página del ledger, más recientes primero.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// InsufficientStockResponse error 409 con la existencia actual.
type InsufficientStockResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Available int    `json:"available"`
}

// ValuationResponse cifras monetarias del inventario.
type ValuationResponse struct {
	InventoryValue      decimal.Decimal `json:"inventory_value"`
	PotentialSalesValue decimal.Decimal `json:"potential_sales_value"`
	PotentialProfit     decimal.Decimal `json:"potential_profit"`
}

// DiscrepancyResponse producto cuya existencia no coincide con el ledger.
type DiscrepancyResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Stored    int    `json:"stored"`
	Replayed  int    `json:"replayed"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto bajo su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	Category           string          `json:"category"`
	CurrentStock       int             `json:"current_stock"`
	ReorderPoint       int             `json:"reorder_point"`
	IdealStock         int             `json:"ideal_stock"`          // ceil(ReorderPoint * 1.5)
	SuggestedOrderQty  int             `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // precio de compra
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	GrossMarginPct     decimal.Decimal `json:"gross_margin_pct"`     // (venta - compra) / venta * 100
	UnitsOutLast90Days int             `json:"units_out_last_90d"`   // salidas recientes
	Priority           int             `json:"priority"`             // 1 = más urgente
}
