package services

import (
	"context"
	"errors"
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

// --- Data Transfer Objects (DTOs) ---

// SaleLineRequest is one cart line. GSTAmount is taken as supplied by the POS.
type SaleLineRequest struct {
	ProductID int64   `json:"product_id" binding:"required"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	GSTAmount float64 `json:"gst_amount"`
	GSTRate   float64 `json:"gst_rate"`
	Discount  float64 `json:"discount"`
}

// CreateSaleRequest is the cart submitted by the POS screen.
type CreateSaleRequest struct {
	Items         []SaleLineRequest `json:"items"`
	CustomerID    *int64            `json:"customer_id"`
	Discount      float64           `json:"discount"`
	DiscountType  string            `json:"discount_type"`
	PaymentMethod string            `json:"payment_method"`
	BranchID      *int64            `json:"branch_id"`
	Notes         *string           `json:"notes"`
}

// UpdateSaleStatusRequest moves a completed sale to cancelled or refunded.
type UpdateSaleStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SaleTotals are the amounts fixed on a sale at creation.
type SaleTotals struct {
	Subtotal   decimal.Decimal
	GSTAmount  decimal.Decimal
	Discount   decimal.Decimal
	GrandTotal decimal.Decimal
}

// SaleObserver receives completed sales for metrics.
type SaleObserver func(branchID int64, paymentMethod string, grandTotal float64)

// SaleService defines the POS sale workflow.
type SaleService interface {
	CreateSale(ctx context.Context, actor Actor, req CreateSaleRequest) (*models.SaleDetail, error)
	GetSale(ctx context.Context, id int64) (*models.SaleDetail, error)
	ListSales(ctx context.Context, filter repositories.SaleFilter) ([]models.Sale, error)
	UpdateSaleStatus(ctx context.Context, actor Actor, id int64, req UpdateSaleStatusRequest) (*models.Sale, error)
}

type saleService struct {
	store     docstore.Store
	counters  repositories.CounterRepository
	sales     repositories.SaleRepository
	stock     repositories.StockRepository
	movements repositories.StockMovementRepository
	customers repositories.CustomerRepository
	branches  repositories.BranchRepository
	publisher events.Publisher
	observe   SaleObserver
	now       func() time.Time
}

// NewSaleService creates a new instance of SaleService.
func NewSaleService(
	store docstore.Store,
	counters repositories.CounterRepository,
	sales repositories.SaleRepository,
	stock repositories.StockRepository,
	movements repositories.StockMovementRepository,
	customers repositories.CustomerRepository,
	branches repositories.BranchRepository,
	publisher events.Publisher,
	observe SaleObserver,
) SaleService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &saleService{
		store:     store,
		counters:  counters,
		sales:     sales,
		stock:     stock,
		movements: movements,
		customers: customers,
		branches:  branches,
		publisher: publisher,
		observe:   observe,
		now:       nowUTC,
	}
}

// ComputeSaleTotals applies the POS pricing rules: subtotal is the sum of
// quantity x unit price, GST is the sum of the supplied line amounts, a
// percentage discount is taken off the subtotal and grand total is not floored.
func ComputeSaleTotals(lines []SaleLineRequest, discount float64, discountType string) SaleTotals {
	subtotal := decimal.Zero
	gst := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(lineTotal(line))
		gst = gst.Add(decimal.NewFromFloat(line.GSTAmount))
	}
	subtotal = subtotal.Round(2)
	gst = gst.Round(2)

	discountAmount := decimal.NewFromFloat(discount)
	if discountType == models.DiscountPercentage {
		discountAmount = subtotal.Mul(discountAmount).Div(decimal.NewFromInt(100))
	}
	discountAmount = discountAmount.Round(2)

	return SaleTotals{
		Subtotal:   subtotal,
		GSTAmount:  gst,
		Discount:   discountAmount,
		GrandTotal: subtotal.Add(gst).Sub(discountAmount),
	}
}

func lineTotal(line SaleLineRequest) decimal.Decimal {
	return decimal.NewFromInt(line.Quantity).Mul(decimal.NewFromFloat(line.UnitPrice)).Round(2)
}

// LoyaltyPointsFor returns floor(grandTotal/100), never negative.
func LoyaltyPointsFor(grandTotal decimal.Decimal) int64 {
	points := grandTotal.Div(decimal.NewFromInt(100)).Floor().IntPart()
	if points < 0 {
		return 0
	}
	return points
}

// FormatInvoiceNumber renders INV-<branch>-<YYYYMMDD>-<seq>.
func FormatInvoiceNumber(branchID int64, at time.Time, seq int64) string {
	return fmt.Sprintf("INV-%d-%s-%04d", branchID, at.Format("20060102"), seq)
}

func validateSaleRequest(req CreateSaleRequest) error {
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
		if line.UnitPrice < 0 || line.GSTAmount < 0 || line.Discount < 0 || line.GSTRate < 0 {
			return validationError("items[%d] amounts must not be negative", i)
		}
	}
	switch req.DiscountType {
	case "", models.DiscountAmount, models.DiscountPercentage:
	default:
		return validationError("discount_type must be %q or %q", models.DiscountAmount, models.DiscountPercentage)
	}
	if req.Discount < 0 {
		return validationError("discount must not be negative")
	}
	if !models.ValidSalePaymentMethod(salePaymentMethod(req.PaymentMethod)) {
		return validationError("payment_method must be one of %s, %s, %s or %s",
			models.PaymentCash, models.PaymentCard, models.PaymentUPI, models.PaymentWallet)
	}
	return nil
}

// salePaymentMethod normalizes the requested method, defaulting to cash.
func salePaymentMethod(m string) string {
	m = strings.ToLower(strings.TrimSpace(m))
	if m == "" {
		return models.PaymentCash
	}
	return m
}

// CreateSale turns a cart into a persisted sale. Everything up to the invoice
// number happens outside the store transaction; the sale, its items, the stock
// decrements and the customer credit then commit together or not at all.
//
// The invoice sequence is a plain count of the branch's sales, so two sales
// racing on the same branch can receive the same invoice number.
func (s *saleService) CreateSale(ctx context.Context, actor Actor, req CreateSaleRequest) (*models.SaleDetail, error) {
	ctx, span := tracing.Tracer("sale-service").Start(ctx, "sale.create")
	defer span.End()

	if err := validateSaleRequest(req); err != nil {
		return nil, err
	}

	branchID := req.BranchID
	if branchID == nil {
		branchID = actor.BranchID
	}
	if branchID == nil {
		return nil, validationError("branch_id is required when the cashier has no assigned branch")
	}
	if _, err := s.branches.GetByID(ctx, s.store, *branchID); err != nil {
		return nil, notFound(err, ErrBranchNotFound)
	}

	paymentMethod := salePaymentMethod(req.PaymentMethod)

	totals := ComputeSaleTotals(req.Items, req.Discount, req.DiscountType)
	now := s.now()

	existing, err := s.sales.CountByBranch(ctx, s.store, *branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive invoice number: %w", err)
	}
	invoiceNumber := FormatInvoiceNumber(*branchID, now, existing+1)

	var detail *models.SaleDetail
	err = s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		saleID, err := s.counters.Allocate(ctx, tx, models.CollectionSales)
		if err != nil {
			return err
		}

		sale := models.Sale{
			ID:            saleID,
			InvoiceNumber: invoiceNumber,
			BranchID:      *branchID,
			CashierID:     actor.UserID,
			CustomerID:    req.CustomerID,
			Subtotal:      totals.Subtotal.InexactFloat64(),
			GSTAmount:     totals.GSTAmount.InexactFloat64(),
			Discount:      totals.Discount.InexactFloat64(),
			DiscountType:  req.DiscountType,
			GrandTotal:    totals.GrandTotal.InexactFloat64(),
			PaymentMethod: paymentMethod,
			PaymentStatus: models.PaymentStatusPaid,
			Status:        models.SaleStatusCompleted,
			Notes:         req.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.sales.Create(ctx, tx, &sale); err != nil {
			return err
		}

		items := make([]models.SaleItem, 0, len(req.Items))
		for _, line := range req.Items {
			itemID, err := s.counters.Allocate(ctx, tx, models.CollectionSaleItems)
			if err != nil {
				return err
			}
			item := models.SaleItem{
				ID:        itemID,
				SaleID:    saleID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Discount:  line.Discount,
				GSTRate:   line.GSTRate,
				GSTAmount: line.GSTAmount,
				Total:     lineTotal(line).InexactFloat64(),
				CreatedAt: now,
			}
			if err := s.sales.CreateItem(ctx, tx, &item); err != nil {
				return err
			}
			if err := s.moveStock(ctx, tx, actor.UserID, *branchID, line.ProductID, -line.Quantity, models.MovementSale, invoiceNumber, now); err != nil {
				return err
			}
			items = append(items, item)
		}

		if req.CustomerID != nil {
			err := s.customers.AddPurchase(ctx, tx, *req.CustomerID, sale.GrandTotal, LoyaltyPointsFor(totals.GrandTotal))
			if err != nil {
				return notFound(err, ErrCustomerNotFound)
			}
		}

		detail = &models.SaleDetail{Sale: sale, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.observe != nil {
		s.observe(detail.BranchID, detail.PaymentMethod, detail.GrandTotal)
	}
	s.publishCompleted(ctx, detail)

	utils.LoggerFromContext(ctx).Info().
		Int64("sale_id", detail.ID).
		Str("invoice_number", detail.InvoiceNumber).
		Int64("branch_id", detail.BranchID).
		Float64("grand_total", detail.GrandTotal).
		Msg("Sale completed")
	return detail, nil
}

// moveStock applies delta to the first stock row for (product, branch),
// flooring the result at zero. A missing stock row is skipped.
func (s *saleService) moveStock(ctx context.Context, tx docstore.Tx, userID, branchID, productID, delta int64,
	movementType, reference string, now time.Time) error {
	row, err := s.stock.FirstFor(ctx, tx, productID, branchID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return err
	}

	newQty := row.Quantity + delta
	if newQty < 0 {
		newQty = 0
	}
	if err := s.stock.SetQuantity(ctx, tx, row.ID, newQty); err != nil {
		return err
	}

	movementID, err := s.counters.Allocate(ctx, tx, models.CollectionStockMovements)
	if err != nil {
		return err
	}
	uid := userID
	ref := reference
	return s.movements.Create(ctx, tx, &models.StockMovement{
		ID:              movementID,
		StockID:         row.ID,
		ProductID:       productID,
		BranchID:        branchID,
		UserID:          &uid,
		MovementType:    movementType,
		QuantityChanged: newQty - row.Quantity,
		QuantityAfter:   newQty,
		Reference:       &ref,
		CreatedAt:       now,
	})
}

func (s *saleService) publishCompleted(ctx context.Context, detail *models.SaleDetail) {
	lines := make([]events.SaleLine, 0, len(detail.Items))
	for _, item := range detail.Items {
		lines = append(lines, events.SaleLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	err := s.publisher.PublishSaleCompleted(ctx, events.SaleCompletedEvent{
		SaleID:        detail.ID,
		InvoiceNumber: detail.InvoiceNumber,
		BranchID:      detail.BranchID,
		CashierID:     detail.CashierID,
		CustomerID:    detail.CustomerID,
		GrandTotal:    detail.GrandTotal,
		PaymentMethod: detail.PaymentMethod,
		Lines:         lines,
	})
	if err != nil {
		utils.LoggerFromContext(ctx).Warn().Err(err).Int64("sale_id", detail.ID).Msg("Failed to publish sale event")
	}
}

func (s *saleService) GetSale(ctx context.Context, id int64) (*models.SaleDetail, error) {
	sale, err := s.sales.GetByID(ctx, s.store, id)
	if err != nil {
		return nil, notFound(err, ErrSaleNotFound)
	}
	items, err := s.sales.ListItems(ctx, s.store, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale items: %w", err)
	}
	return &models.SaleDetail{Sale: *sale, Items: items}, nil
}

func (s *saleService) ListSales(ctx context.Context, filter repositories.SaleFilter) ([]models.Sale, error) {
	return s.sales.List(ctx, s.store, filter)
}

// UpdateSaleStatus cancels or refunds a completed sale, returning each line's
// quantity to stock and reversing the customer credit in one transaction.
func (s *saleService) UpdateSaleStatus(ctx context.Context, actor Actor, id int64, req UpdateSaleStatusRequest) (*models.Sale, error) {
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != models.SaleStatusCancelled && status != models.SaleStatusRefunded {
		return nil, validationError("status must be %q or %q", models.SaleStatusCancelled, models.SaleStatusRefunded)
	}

	var (
		updated *models.Sale
		from    string
	)
	now := s.now()
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		sale, err := s.sales.GetByID(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrSaleNotFound)
		}
		if sale.Status != models.SaleStatusCompleted {
			return fmt.Errorf("%w: sale is %s", ErrInvalidStatusTransition, sale.Status)
		}
		from = sale.Status

		items, err := s.sales.ListItems(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := s.moveStock(ctx, tx, actor.UserID, sale.BranchID, item.ProductID, item.Quantity, models.MovementSaleReturn, sale.InvoiceNumber, now); err != nil {
				return err
			}
		}

		if sale.CustomerID != nil {
			points := LoyaltyPointsFor(decimal.NewFromFloat(sale.GrandTotal))
			err := s.customers.AddPurchase(ctx, tx, *sale.CustomerID, -sale.GrandTotal, -points)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return err
			}
		}

		if err := s.sales.UpdateStatus(ctx, tx, id, status, models.PaymentStatusRefunded); err != nil {
			return err
		}
		sale.Status = status
		sale.PaymentStatus = models.PaymentStatusRefunded
		sale.UpdatedAt = now
		updated = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishSaleStatusChanged(ctx, events.StatusChangedEvent{
		ID: updated.ID, Reference: updated.InvoiceNumber, From: from, To: status,
	}); err != nil {
		utils.LoggerFromContext(ctx).Warn().Err(err).Int64("sale_id", id).Msg("Failed to publish sale status event")
	}
	return updated, nil
}
