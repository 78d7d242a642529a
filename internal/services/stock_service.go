package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
	"petpos_backend/internal/repositories"
)

// CreateStockRequest DTO
type CreateStockRequest struct {
	ProductID   int64   `json:"product_id" binding:"required"`
	BranchID    int64   `json:"branch_id" binding:"required"`
	Quantity    int64   `json:"quantity" binding:"gte=0"`
	BatchNumber *string `json:"batch_number"`
	ExpiryDate  *string `json:"expiry_date"` // YYYY-MM-DD
}

// AdjustStockRequest applies a signed delta to a stock row.
type AdjustStockRequest struct {
	Delta  int64   `json:"delta" binding:"required"`
	Reason *string `json:"reason"`
}

// StockService manages per-branch inventory.
type StockService interface {
	CreateStock(ctx context.Context, actor Actor, req CreateStockRequest) (*models.Stock, error)
	AdjustStock(ctx context.Context, actor Actor, id int64, req AdjustStockRequest) (*models.Stock, error)
	ListStock(ctx context.Context, filter repositories.StockFilter) ([]models.Stock, error)
	// LowStock sums quantities per (product, branch) and reports those at or below min_stock.
	LowStock(ctx context.Context, branchID *int64) ([]models.LowStockItem, error)
	ListMovements(ctx context.Context, filter repositories.StockMovementFilter) ([]models.StockMovement, error)
}

type stockService struct {
	store     docstore.Store
	counters  repositories.CounterRepository
	stock     repositories.StockRepository
	movements repositories.StockMovementRepository
	products  repositories.ProductRepository
	branches  repositories.BranchRepository
}

// NewStockService creates a new instance of StockService.
func NewStockService(store docstore.Store, counters repositories.CounterRepository, stock repositories.StockRepository,
	movements repositories.StockMovementRepository, products repositories.ProductRepository, branches repositories.BranchRepository) StockService {
	return &stockService{store: store, counters: counters, stock: stock, movements: movements, products: products, branches: branches}
}

func (s *stockService) recordMovement(ctx context.Context, tx docstore.Tx, actor Actor, row *models.Stock,
	movementType string, changed int64, reason *string, now time.Time) error {
	id, err := s.counters.Allocate(ctx, tx, models.CollectionStockMovements)
	if err != nil {
		return err
	}
	uid := actor.UserID
	return s.movements.Create(ctx, tx, &models.StockMovement{
		ID:              id,
		StockID:         row.ID,
		ProductID:       row.ProductID,
		BranchID:        row.BranchID,
		UserID:          &uid,
		MovementType:    movementType,
		QuantityChanged: changed,
		QuantityAfter:   row.Quantity,
		Reason:          reason,
		CreatedAt:       now,
	})
}

func (s *stockService) CreateStock(ctx context.Context, actor Actor, req CreateStockRequest) (*models.Stock, error) {
	if req.Quantity < 0 {
		return nil, validationError("quantity must not be negative")
	}
	if req.ExpiryDate != nil {
		if _, err := time.Parse("2006-01-02", *req.ExpiryDate); err != nil {
			return nil, validationError("expiry_date must use YYYY-MM-DD")
		}
	}
	if req.BatchNumber != nil {
		trimmed := strings.TrimSpace(*req.BatchNumber)
		req.BatchNumber = &trimmed
	}

	now := nowUTC()
	row := &models.Stock{
		ProductID:   req.ProductID,
		BranchID:    req.BranchID,
		Quantity:    req.Quantity,
		BatchNumber: req.BatchNumber,
		ExpiryDate:  req.ExpiryDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := createWithID(ctx, s.store, s.counters, models.CollectionStock, func(ctx context.Context, tx docstore.Tx, id int64) error {
		if _, err := s.products.GetByID(ctx, tx, req.ProductID); err != nil {
			return notFound(err, ErrProductNotFound)
		}
		if _, err := s.branches.GetByID(ctx, tx, req.BranchID); err != nil {
			return notFound(err, ErrBranchNotFound)
		}
		row.ID = id
		if err := s.stock.Create(ctx, tx, row); err != nil {
			return err
		}
		return s.recordMovement(ctx, tx, actor, row, models.MovementInitial, row.Quantity, nil, now)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// AdjustStock applies a signed delta, flooring the quantity at zero.
func (s *stockService) AdjustStock(ctx context.Context, actor Actor, id int64, req AdjustStockRequest) (*models.Stock, error) {
	if req.Delta == 0 {
		return nil, validationError("delta must not be zero")
	}
	var updated *models.Stock
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		row, err := s.stock.GetByID(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrStockNotFound)
		}
		before := row.Quantity
		row.Quantity += req.Delta
		if row.Quantity < 0 {
			row.Quantity = 0
		}
		now := nowUTC()
		row.UpdatedAt = now
		if err := s.stock.SetQuantity(ctx, tx, row.ID, row.Quantity); err != nil {
			return err
		}
		updated = row
		return s.recordMovement(ctx, tx, actor, row, models.MovementAdjustment, row.Quantity-before, req.Reason, now)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *stockService) ListStock(ctx context.Context, filter repositories.StockFilter) ([]models.Stock, error) {
	return s.stock.List(ctx, s.store, filter)
}

func (s *stockService) LowStock(ctx context.Context, branchID *int64) ([]models.LowStockItem, error) {
	rows, err := s.stock.List(ctx, s.store, repositories.StockFilter{BranchID: branchID})
	if err != nil {
		return nil, err
	}
	products, err := s.products.List(ctx, s.store, repositories.ProductFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	type key struct{ product, branch int64 }
	totals := map[key]int64{}
	for _, row := range rows {
		totals[key{row.ProductID, row.BranchID}] += row.Quantity
	}

	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	low := []models.LowStockItem{}
	for k, qty := range totals {
		p, ok := byID[k.product]
		if !ok || qty > p.MinStock {
			continue
		}
		low = append(low, models.LowStockItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			SKU:         p.SKU,
			BranchID:    k.branch,
			Quantity:    qty,
			MinStock:    p.MinStock,
		})
	}
	sort.Slice(low, func(i, j int) bool {
		if low[i].BranchID != low[j].BranchID {
			return low[i].BranchID < low[j].BranchID
		}
		return low[i].ProductID < low[j].ProductID
	})
	return low, nil
}

func (s *stockService) ListMovements(ctx context.Context, filter repositories.StockMovementFilter) ([]models.StockMovement, error) {
	return s.movements.List(ctx, s.store, filter)
}
