package events

import (
	"context"
	"time"
)

// Event types
const (
	EventTypeSaleCompleted      = "sale.completed"
	EventTypeSaleStatusChanged  = "sale.status_changed"
	EventTypeOnlineOrderPlaced  = "online_order.placed"
	EventTypeOnlineOrderUpdated = "online_order.status_changed"
)

// Envelope wraps every published payload.
type Envelope struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SaleCompletedEvent is emitted after a sale transaction commits.
type SaleCompletedEvent struct {
	SaleID        int64      `json:"sale_id"`
	InvoiceNumber string     `json:"invoice_number"`
	BranchID      int64      `json:"branch_id"`
	CashierID     int64      `json:"cashier_id"`
	CustomerID    *int64     `json:"customer_id,omitempty"`
	GrandTotal    float64    `json:"grand_total"`
	PaymentMethod string     `json:"payment_method"`
	Lines         []SaleLine `json:"lines"`
}

// SaleLine is a product quantity sold.
type SaleLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// StatusChangedEvent is emitted when a sale or online order changes status.
type StatusChangedEvent struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// OnlineOrderPlacedEvent is emitted when a storefront order is created.
type OnlineOrderPlacedEvent struct {
	OrderID      int64   `json:"order_id"`
	OrderNumber  string  `json:"order_number"`
	CustomerID   int64   `json:"customer_id"`
	GrandTotal   float64 `json:"grand_total"`
	DeliveryType string  `json:"delivery_type"`
}

// Publisher delivers domain events. Publishing is best effort: callers log
// failures and never undo committed work because of them.
type Publisher interface {
	PublishSaleCompleted(ctx context.Context, event SaleCompletedEvent) error
	PublishSaleStatusChanged(ctx context.Context, event StatusChangedEvent) error
	PublishOnlineOrderPlaced(ctx context.Context, event OnlineOrderPlacedEvent) error
	PublishOnlineOrderStatusChanged(ctx context.Context, event StatusChangedEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishSaleCompleted(context.Context, SaleCompletedEvent) error { return nil }
func (NopPublisher) PublishSaleStatusChanged(context.Context, StatusChangedEvent) error {
	return nil
}
func (NopPublisher) PublishOnlineOrderPlaced(context.Context, OnlineOrderPlacedEvent) error {
	return nil
}
func (NopPublisher) PublishOnlineOrderStatusChanged(context.Context, StatusChangedEvent) error {
	return nil
}
func (NopPublisher) Close() error { return nil }
