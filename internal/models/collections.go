package models

// Collection names in the document store.
const (
	CollectionCounters       = "counters"
	CollectionUsers          = "users"
	CollectionBranches       = "branches"
	CollectionCategories     = "categories"
	CollectionProducts       = "products"
	CollectionStock          = "stock"
	CollectionStockMovements = "stock_movements"
	CollectionCustomers      = "customers"
	CollectionSuppliers      = "suppliers"
	CollectionSales          = "sales"
	CollectionSaleItems      = "sale_items"
	CollectionOnlineOrders   = "online_orders"
)

// Counter backs the per-collection id allocator.
type Counter struct {
	Count int64 `json:"count"`
}
