package models

import "time"

// Sale statuses.
const (
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
	SaleStatusRefunded  = "refunded"

	PaymentStatusPaid     = "paid"
	PaymentStatusPending  = "pending"
	PaymentStatusRefunded = "refunded"
)

// Payment methods. Sales take the first four; online orders also take
// cash on delivery in place of cash.
const (
	PaymentCash           = "cash"
	PaymentCard           = "card"
	PaymentUPI            = "upi"
	PaymentWallet         = "wallet"
	PaymentCashOnDelivery = "cash_on_delivery"
)

// ValidSalePaymentMethod reports whether m can settle a POS sale.
func ValidSalePaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentWallet:
		return true
	}
	return false
}

// ValidOrderPaymentMethod reports whether m can settle an online order.
func ValidOrderPaymentMethod(m string) bool {
	switch m {
	case PaymentCashOnDelivery, PaymentCard, PaymentUPI, PaymentWallet:
		return true
	}
	return false
}

// Discount types for a sale.
const (
	DiscountAmount     = "amount"
	DiscountPercentage = "percentage"
)

// Sale is a completed POS invoice. Amounts are fixed at creation.
type Sale struct {
	ID            int64     `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	BranchID      int64     `json:"branch_id"`
	CashierID     int64     `json:"cashier_id"`
	CustomerID    *int64    `json:"customer_id,omitempty"`
	Subtotal      float64   `json:"subtotal"`
	GSTAmount     float64   `json:"gst_amount"`
	Discount      float64   `json:"discount"`
	DiscountType  string    `json:"discount_type,omitempty"`
	GrandTotal    float64   `json:"grand_total"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	Status        string    `json:"status"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SaleItem is one cart line of a sale.
type SaleItem struct {
	ID        int64     `json:"id"`
	SaleID    int64     `json:"sale_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	Discount  float64   `json:"discount"`
	GSTRate   float64   `json:"gst_rate"`
	GSTAmount float64   `json:"gst_amount"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// SaleDetail is a sale with its line items.
type SaleDetail struct {
	Sale
	Items []SaleItem `json:"items"`
}

// Online order statuses.
const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPacked         = "packed"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

// Delivery types.
const (
	DeliveryPickup   = "pickup"
	DeliveryDelivery = "delivery"
)

// OnlineOrder is a storefront order. Items are stored inline.
type OnlineOrder struct {
	ID              int64             `json:"id"`
	OrderNumber     string            `json:"order_number"`
	CustomerID      int64             `json:"customer_id"`
	BranchID        *int64            `json:"branch_id,omitempty"`
	Items           []OnlineOrderItem `json:"items"`
	Subtotal        float64           `json:"subtotal"`
	GSTAmount       float64           `json:"gst_amount"`
	GrandTotal      float64           `json:"grand_total"`
	DeliveryType    string            `json:"delivery_type"`
	DeliveryAddress *string           `json:"delivery_address,omitempty"`
	PaymentMethod   string            `json:"payment_method"`
	PaymentStatus   string            `json:"payment_status"`
	Status          string            `json:"status"`
	Notes           *string           `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// OnlineOrderItem is a priced line captured when the order was placed.
type OnlineOrderItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	GSTRate   float64 `json:"gst_rate"`
	GSTAmount float64 `json:"gst_amount"`
	Total     float64 `json:"total"`
}
