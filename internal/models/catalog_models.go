package models

import "time"

// Category groups products.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a catalog entry. Quantities on hand live in Stock.
type Product struct {
	ID            int64     `json:"id"`
	SKU           string    `json:"sku"`
	Barcode       *string   `json:"barcode,omitempty"`
	Name          string    `json:"name"`
	CategoryID    *int64    `json:"category_id,omitempty"`
	Description   *string   `json:"description,omitempty"`
	MRP           float64   `json:"mrp"`
	SellingPrice  float64   `json:"selling_price"`
	PurchasePrice float64   `json:"purchase_price"`
	GSTRate       float64   `json:"gst_rate"`
	MinStock      int64     `json:"min_stock"`
	Unit          string    `json:"unit"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Stock is the on-hand quantity of a product at a branch, optionally per batch.
type Stock struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	BranchID    int64     `json:"branch_id"`
	Quantity    int64     `json:"quantity"`
	BatchNumber *string   `json:"batch_number,omitempty"`
	ExpiryDate  *string   `json:"expiry_date,omitempty"` // YYYY-MM-DD
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Stock movement types.
const (
	MovementInitial    = "initial"
	MovementSale       = "sale"
	MovementSaleReturn = "sale_return"
	MovementAdjustment = "adjustment"
)

// StockMovement records a change applied to a Stock row.
type StockMovement struct {
	ID              int64     `json:"id"`
	StockID         int64     `json:"stock_id"`
	ProductID       int64     `json:"product_id"`
	BranchID        int64     `json:"branch_id"`
	UserID          *int64    `json:"user_id,omitempty"`
	MovementType    string    `json:"movement_type"`
	QuantityChanged int64     `json:"quantity_changed"`
	QuantityAfter   int64     `json:"quantity_after"`
	Reference       *string   `json:"reference,omitempty"` // invoice number for sales
	Reason          *string   `json:"reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// LowStockItem is a (product, branch) whose summed quantity is at or below min_stock.
type LowStockItem struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	BranchID    int64  `json:"branch_id"`
	Quantity    int64  `json:"quantity"`
	MinStock    int64  `json:"min_stock"`
}
