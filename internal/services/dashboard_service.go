package services

import (
	"context"
	"fmt"
	"time"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
	"petpos_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// DashboardService builds the staff dashboard summary.
type DashboardService interface {
	Summary(ctx context.Context, branchID *int64) (*models.DashboardSummary, error)
}

type dashboardService struct {
	store     docstore.Store
	sales     repositories.SaleRepository
	orders    repositories.OnlineOrderRepository
	products  repositories.ProductRepository
	customers repositories.CustomerRepository
	stock     StockService
	now       func() time.Time
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(store docstore.Store, sales repositories.SaleRepository, orders repositories.OnlineOrderRepository,
	products repositories.ProductRepository, customers repositories.CustomerRepository, stock StockService) DashboardService {
	return &dashboardService{
		store:     store,
		sales:     sales,
		orders:    orders,
		products:  products,
		customers: customers,
		stock:     stock,
		now:       nowUTC,
	}
}

// Summary counts completed sales only. Day and month boundaries are UTC.
func (s *dashboardService) Summary(ctx context.Context, branchID *int64) (*models.DashboardSummary, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.AddDate(0, 0, 1)
	completed := models.SaleStatusCompleted

	monthSales, err := s.sales.List(ctx, s.store, repositories.SaleFilter{
		BranchID: branchID, Status: &completed, From: &startOfMonth, To: &endOfDay,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	summary := &models.DashboardSummary{BranchID: branchID}
	today, month := decimal.Zero, decimal.Zero
	for _, sale := range monthSales {
		total := decimal.NewFromFloat(sale.GrandTotal)
		month = month.Add(total)
		if !sale.CreatedAt.Before(startOfDay) {
			today = today.Add(total)
			summary.SalesToday++
		}
	}
	summary.RevenueToday = today.Round(2).InexactFloat64()
	summary.RevenueThisMonth = month.Round(2).InexactFloat64()

	if branchID == nil {
		summary.PendingOnlineOrder, err = s.orders.CountByStatus(ctx, s.store, models.OrderStatusPending)
	} else {
		pending := models.OrderStatusPending
		var orders []models.OnlineOrder
		orders, err = s.orders.List(ctx, s.store, repositories.OnlineOrderFilter{BranchID: branchID, Status: &pending})
		summary.PendingOnlineOrder = int64(len(orders))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}

	low, err := s.stock.LowStock(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load low stock: %w", err)
	}
	summary.LowStockCount = int64(len(low))

	if summary.ProductCount, err = s.products.Count(ctx, s.store); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if summary.CustomerCount, err = s.customers.Count(ctx, s.store); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	return summary, nil
}
