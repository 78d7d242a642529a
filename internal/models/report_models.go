package models

// DashboardSummary holds key metrics for the dashboard.
type DashboardSummary struct {
	BranchID           *int64  `json:"branch_id,omitempty"`
	SalesToday         int64   `json:"sales_today"`
	RevenueToday       float64 `json:"revenue_today"`
	RevenueThisMonth   float64 `json:"revenue_this_month"`
	PendingOnlineOrder int64   `json:"pending_online_orders"`
	LowStockCount      int64   `json:"low_stock_count"`
	ProductCount       int64   `json:"product_count"`
	CustomerCount      int64   `json:"customer_count"`
}
