package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/events"
	"petpos_backend/internal/models"
	"petpos_backend/internal/repositories"
	"petpos_backend/pkg/tracing"
	"petpos_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

const defaultOrderPaymentMethod = models.PaymentCashOnDelivery

// --- Online order DTOs ---
type OrderLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int64 `json:"quantity" binding:"required"`
}

type PlaceOrderRequest struct {
	Items           []OrderLineRequest `json:"items"`
	BranchID        *int64             `json:"branch_id"`
	DeliveryType    string             `json:"delivery_type"`
	DeliveryAddress *string            `json:"delivery_address"`
	PaymentMethod   string             `json:"payment_method"`
	Notes           *string            `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// orderTransitions lists the forward moves of an order. Cancellation is
// allowed from any status that is not final.
var orderTransitions = map[string]string{
	models.OrderStatusPending:        models.OrderStatusConfirmed,
	models.OrderStatusConfirmed:      models.OrderStatusPacked,
	models.OrderStatusPacked:         models.OrderStatusOutForDelivery,
	models.OrderStatusOutForDelivery: models.OrderStatusDelivered,
}

// CanTransitionOrder reports whether an order may move from one status to another.
func CanTransitionOrder(from, to string) bool {
	if to == models.OrderStatusCancelled {
		return from != models.OrderStatusDelivered && from != models.OrderStatusCancelled
	}
	next, ok := orderTransitions[from]
	return ok && next == to
}

// FormatOrderNumber renders ORD-<YYYYMMDD>-<id>.
func FormatOrderNumber(at time.Time, id int64) string {
	return fmt.Sprintf("ORD-%s-%05d", at.Format("20060102"), id)
}

// OnlineOrderService handles storefront orders. Orders never touch stock.
type OnlineOrderService interface {
	PlaceOrder(ctx context.Context, customerID int64, req PlaceOrderRequest) (*models.OnlineOrder, error)
	GetOrder(ctx context.Context, id int64) (*models.OnlineOrder, error)
	// GetCustomerOrder returns the order only when it belongs to customerID.
	GetCustomerOrder(ctx context.Context, customerID, id int64) (*models.OnlineOrder, error)
	ListOrders(ctx context.Context, filter repositories.OnlineOrderFilter) ([]models.OnlineOrder, error)
	UpdateStatus(ctx context.Context, id int64, req UpdateOrderStatusRequest) (*models.OnlineOrder, error)
}

type onlineOrderService struct {
	store     docstore.Store
	counters  repositories.CounterRepository
	orders    repositories.OnlineOrderRepository
	products  repositories.ProductRepository
	customers repositories.CustomerRepository
	branches  repositories.BranchRepository
	publisher events.Publisher
	observe   func()
	now       func() time.Time
}

// NewOnlineOrderService creates a new instance of OnlineOrderService.
func NewOnlineOrderService(
	store docstore.Store,
	counters repositories.CounterRepository,
	orders repositories.OnlineOrderRepository,
	products repositories.ProductRepository,
	customers repositories.CustomerRepository,
	branches repositories.BranchRepository,
	publisher events.Publisher,
	observe func(),
) OnlineOrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &onlineOrderService{
		store:     store,
		counters:  counters,
		orders:    orders,
		products:  products,
		customers: customers,
		branches:  branches,
		publisher: publisher,
		observe:   observe,
		now:       nowUTC,
	}
}

func validateOrderRequest(req *PlaceOrderRequest) error {
	if len(req.Items) == 0 {
		return ErrEmptyCart
	}
	for i, line := range req.Items {
		if line.ProductID <= 0 {
			return validationError("items[%d].product_id is required", i)
		}
		if line.Quantity <= 0 {
			return validationError("items[%d].quantity must be greater than 0", i)
		}
	}
	req.DeliveryType = strings.ToLower(strings.TrimSpace(req.DeliveryType))
	if req.DeliveryType == "" {
		req.DeliveryType = models.DeliveryPickup
	}
	switch req.DeliveryType {
	case models.DeliveryPickup:
	case models.DeliveryDelivery:
		if req.DeliveryAddress == nil || utils.IsEmpty(*req.DeliveryAddress) {
			return validationError("delivery_address is required for delivery orders")
		}
	default:
		return validationError("delivery_type must be %q or %q", models.DeliveryPickup, models.DeliveryDelivery)
	}
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if req.PaymentMethod == "" {
		req.PaymentMethod = defaultOrderPaymentMethod
	}
	if !models.ValidOrderPaymentMethod(req.PaymentMethod) {
		return validationError("payment_method must be one of %s, %s, %s or %s",
			models.PaymentCashOnDelivery, models.PaymentCard, models.PaymentUPI, models.PaymentWallet)
	}
	return nil
}

// priceLine prices one order line from the catalog: selling price times
// quantity, with GST taken at the product's rate on top.
func priceLine(product *models.Product, quantity int64) models.OnlineOrderItem {
	net := decimal.NewFromFloat(product.SellingPrice).Mul(decimal.NewFromInt(quantity)).Round(2)
	gst := net.Mul(decimal.NewFromFloat(product.GSTRate)).Div(decimal.NewFromInt(100)).Round(2)
	return models.OnlineOrderItem{
		ProductID: product.ID,
		Name:      product.Name,
		SKU:       product.SKU,
		Quantity:  quantity,
		UnitPrice: product.SellingPrice,
		GSTRate:   product.GSTRate,
		GSTAmount: gst.InexactFloat64(),
		Total:     net.Add(gst).InexactFloat64(),
	}
}

func (s *onlineOrderService) PlaceOrder(ctx context.Context, customerID int64, req PlaceOrderRequest) (*models.OnlineOrder, error) {
	ctx, span := tracing.Tracer("online-order-service").Start(ctx, "online_order.place")
	defer span.End()

	if err := validateOrderRequest(&req); err != nil {
		return nil, err
	}

	var order *models.OnlineOrder
	now := s.now()
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		customer, err := s.customers.GetByID(ctx, tx, customerID)
		if err != nil {
			return notFound(err, ErrCustomerNotFound)
		}
		if !customer.IsActive {
			return ErrUnauthenticated
		}
		if req.BranchID != nil {
			if _, err := s.branches.GetByID(ctx, tx, *req.BranchID); err != nil {
				return notFound(err, ErrBranchNotFound)
			}
		}

		items := make([]models.OnlineOrderItem, 0, len(req.Items))
		subtotal, gst := decimal.Zero, decimal.Zero
		for i, line := range req.Items {
			product, err := s.products.GetByID(ctx, tx, line.ProductID)
			if err != nil {
				return notFound(err, ErrProductNotFound)
			}
			if !product.IsActive {
				return validationError("items[%d]: product %d is not available", i, product.ID)
			}
			item := priceLine(product, line.Quantity)
			items = append(items, item)
			subtotal = subtotal.Add(decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(item.Quantity)).Round(2))
			gst = gst.Add(decimal.NewFromFloat(item.GSTAmount))
		}

		id, err := s.counters.Allocate(ctx, tx, models.CollectionOnlineOrders)
		if err != nil {
			return err
		}
		order = &models.OnlineOrder{
			ID:              id,
			OrderNumber:     FormatOrderNumber(now, id),
			CustomerID:      customerID,
			BranchID:        req.BranchID,
			Items:           items,
			Subtotal:        subtotal.InexactFloat64(),
			GSTAmount:       gst.InexactFloat64(),
			GrandTotal:      subtotal.Add(gst).InexactFloat64(),
			DeliveryType:    req.DeliveryType,
			DeliveryAddress: req.DeliveryAddress,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   models.PaymentStatusPending,
			Status:          models.OrderStatusPending,
			Notes:           req.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return s.orders.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	if s.observe != nil {
		s.observe()
	}
	if err := s.publisher.PublishOnlineOrderPlaced(ctx, events.OnlineOrderPlacedEvent{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		CustomerID:   order.CustomerID,
		GrandTotal:   order.GrandTotal,
		DeliveryType: order.DeliveryType,
	}); err != nil {
		utils.LoggerFromContext(ctx).Warn().Err(err).Int64("order_id", order.ID).Msg("Failed to publish order event")
	}
	utils.LoggerFromContext(ctx).Info().
		Int64("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Float64("grand_total", order.GrandTotal).
		Msg("Online order placed")
	return order, nil
}

func (s *onlineOrderService) GetOrder(ctx context.Context, id int64) (*models.OnlineOrder, error) {
	order, err := s.orders.GetByID(ctx, s.store, id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return order, nil
}

func (s *onlineOrderService) GetCustomerOrder(ctx context.Context, customerID, id int64) (*models.OnlineOrder, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *onlineOrderService) ListOrders(ctx context.Context, filter repositories.OnlineOrderFilter) ([]models.OnlineOrder, error) {
	return s.orders.List(ctx, s.store, filter)
}

func (s *onlineOrderService) UpdateStatus(ctx context.Context, id int64, req UpdateOrderStatusRequest) (*models.OnlineOrder, error) {
	status := strings.ToLower(strings.TrimSpace(req.Status))
	var (
		updated *models.OnlineOrder
		from    string
	)
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		order, err := s.orders.GetByID(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		if !CanTransitionOrder(order.Status, status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, order.Status, status)
		}
		if err := s.orders.UpdateStatus(ctx, tx, id, status); err != nil {
			return err
		}
		from = order.Status
		order.Status = status
		order.UpdatedAt = s.now()
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishOnlineOrderStatusChanged(ctx, events.StatusChangedEvent{
		ID: updated.ID, Reference: updated.OrderNumber, From: from, To: status,
	}); err != nil {
		utils.LoggerFromContext(ctx).Warn().Err(err).Int64("order_id", id).Msg("Failed to publish order status event")
	}
	return updated, nil
}
