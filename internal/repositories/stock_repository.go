package repositories

import (
	"context"
	"time"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
)

// StockFilter narrows a stock listing.
type StockFilter struct {
	ProductID *int64
	BranchID  *int64
}

// StockRepository defines persistence for per-branch stock rows.
type StockRepository interface {
	Create(ctx context.Context, ex Executor, stock *models.Stock) error
	GetByID(ctx context.Context, ex Executor, id int64) (*models.Stock, error)
	// FirstFor returns the lowest-id row for (product, branch) or ErrNotFound.
	FirstFor(ctx context.Context, ex Executor, productID, branchID int64) (*models.Stock, error)
	List(ctx context.Context, ex Executor, filter StockFilter) ([]models.Stock, error)
	SetQuantity(ctx context.Context, ex Executor, id, quantity int64) error
}

type stockRepository struct {
	stock collection[models.Stock]
}

// NewStockRepository creates a new instance of StockRepository.
func NewStockRepository() StockRepository {
	return &stockRepository{stock: collection[models.Stock]{name: models.CollectionStock}}
}

func (r *stockRepository) Create(ctx context.Context, ex Executor, stock *models.Stock) error {
	return r.stock.set(ctx, ex, stock.ID, stock)
}

func (r *stockRepository) GetByID(ctx context.Context, ex Executor, id int64) (*models.Stock, error) {
	return r.stock.get(ctx, ex, id)
}

func (r *stockRepository) FirstFor(ctx context.Context, ex Executor, productID, branchID int64) (*models.Stock, error) {
	return r.stock.first(ctx, ex,
		docstore.Where("product_id", productID),
		docstore.Where("branch_id", branchID))
}

func (r *stockRepository) List(ctx context.Context, ex Executor, filter StockFilter) ([]models.Stock, error) {
	var filters []docstore.Filter
	if filter.ProductID != nil {
		filters = append(filters, docstore.Where("product_id", *filter.ProductID))
	}
	if filter.BranchID != nil {
		filters = append(filters, docstore.Where("branch_id", *filter.BranchID))
	}
	return r.stock.find(ctx, ex, filters...)
}

func (r *stockRepository) SetQuantity(ctx context.Context, ex Executor, id, quantity int64) error {
	return r.stock.update(ctx, ex, id, map[string]interface{}{
		"quantity":   quantity,
		"updated_at": time.Now().UTC(),
	})
}
