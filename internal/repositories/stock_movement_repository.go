package repositories

import (
	"context"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
)

// StockMovementFilter narrows the movement log.
type StockMovementFilter struct {
	ProductID    *int64
	BranchID     *int64
	MovementType *string
}

// StockMovementRepository defines the interface for the stock movement log.
type StockMovementRepository interface {
	Create(ctx context.Context, ex Executor, movement *models.StockMovement) error
	List(ctx context.Context, ex Executor, filter StockMovementFilter) ([]models.StockMovement, error)
}

type stockMovementRepository struct {
	movements collection[models.StockMovement]
}

// NewStockMovementRepository creates a new instance of StockMovementRepository.
func NewStockMovementRepository() StockMovementRepository {
	return &stockMovementRepository{movements: collection[models.StockMovement]{name: models.CollectionStockMovements}}
}

func (r *stockMovementRepository) Create(ctx context.Context, ex Executor, movement *models.StockMovement) error {
	return r.movements.set(ctx, ex, movement.ID, movement)
}

// List returns movements newest first.
func (r *stockMovementRepository) List(ctx context.Context, ex Executor, filter StockMovementFilter) ([]models.StockMovement, error) {
	var filters []docstore.Filter
	if filter.ProductID != nil {
		filters = append(filters, docstore.Where("product_id", *filter.ProductID))
	}
	if filter.BranchID != nil {
		filters = append(filters, docstore.Where("branch_id", *filter.BranchID))
	}
	if filter.MovementType != nil {
		filters = append(filters, docstore.Where("movement_type", *filter.MovementType))
	}
	movements, err := r.movements.find(ctx, ex, filters...)
	if err != nil {
		return nil, err
	}
	return reversed(movements), nil
}
