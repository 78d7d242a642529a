package repositories

import (
	"context"
	"time"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
)

// OnlineOrderFilter narrows an order listing.
type OnlineOrderFilter struct {
	CustomerID *int64
	BranchID   *int64
	Status     *string
}

// OnlineOrderRepository defines storefront order persistence.
type OnlineOrderRepository interface {
	Create(ctx context.Context, ex Executor, order *models.OnlineOrder) error
	GetByID(ctx context.Context, ex Executor, id int64) (*models.OnlineOrder, error)
	List(ctx context.Context, ex Executor, filter OnlineOrderFilter) ([]models.OnlineOrder, error)
	UpdateStatus(ctx context.Context, ex Executor, id int64, status string) error
	CountByStatus(ctx context.Context, cn Counter, status string) (int64, error)
}

type onlineOrderRepository struct {
	orders collection[models.OnlineOrder]
}

// NewOnlineOrderRepository creates a new instance of OnlineOrderRepository.
func NewOnlineOrderRepository() OnlineOrderRepository {
	return &onlineOrderRepository{orders: collection[models.OnlineOrder]{name: models.CollectionOnlineOrders}}
}

func (r *onlineOrderRepository) Create(ctx context.Context, ex Executor, order *models.OnlineOrder) error {
	return r.orders.set(ctx, ex, order.ID, order)
}

func (r *onlineOrderRepository) GetByID(ctx context.Context, ex Executor, id int64) (*models.OnlineOrder, error) {
	return r.orders.get(ctx, ex, id)
}

// List returns matching orders newest first.
func (r *onlineOrderRepository) List(ctx context.Context, ex Executor, filter OnlineOrderFilter) ([]models.OnlineOrder, error) {
	var filters []docstore.Filter
	if filter.CustomerID != nil {
		filters = append(filters, docstore.Where("customer_id", *filter.CustomerID))
	}
	if filter.BranchID != nil {
		filters = append(filters, docstore.Where("branch_id", *filter.BranchID))
	}
	if filter.Status != nil {
		filters = append(filters, docstore.Where("status", *filter.Status))
	}
	orders, err := r.orders.find(ctx, ex, filters...)
	if err != nil {
		return nil, err
	}
	return reversed(orders), nil
}

func (r *onlineOrderRepository) UpdateStatus(ctx context.Context, ex Executor, id int64, status string) error {
	return r.orders.update(ctx, ex, id, map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
}

func (r *onlineOrderRepository) CountByStatus(ctx context.Context, cn Counter, status string) (int64, error) {
	return r.orders.count(ctx, cn, docstore.Where("status", status))
}
