package dto

// DashboardSummaryDTO resumen para la pantalla principal.
type DashboardSummaryDTO struct {
	TotalProducts   int                `json:"total_products"`
	TotalMovements  int                `json:"total_movements"`
	LowStockCount   int                `json:"low_stock_count"`
	LowStock        []ProductResponse  `json:"low_stock"`
	RecentMovements []MovementResponse `json:"recent_movements"`
	Valuation       ValuationResponse  `json:"valuation"`
}
