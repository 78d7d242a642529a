package repositories

import (
	"context"
	"time"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
)

// SaleFilter narrows a sales listing. From is inclusive, To exclusive.
type SaleFilter struct {
	BranchID   *int64
	CashierID  *int64
	CustomerID *int64
	Status     *string
	From       *time.Time
	To         *time.Time
}

// SaleRepository defines persistence for sales and their line items.
type SaleRepository interface {
	Create(ctx context.Context, ex Executor, sale *models.Sale) error
	GetByID(ctx context.Context, ex Executor, id int64) (*models.Sale, error)
	List(ctx context.Context, ex Executor, filter SaleFilter) ([]models.Sale, error)
	CountByBranch(ctx context.Context, cn Counter, branchID int64) (int64, error)
	UpdateStatus(ctx context.Context, ex Executor, id int64, status, paymentStatus string) error

	CreateItem(ctx context.Context, ex Executor, item *models.SaleItem) error
	ListItems(ctx context.Context, ex Executor, saleID int64) ([]models.SaleItem, error)
}

type saleRepository struct {
	sales collection[models.Sale]
	items collection[models.SaleItem]
}

// NewSaleRepository creates a new instance of SaleRepository.
func NewSaleRepository() SaleRepository {
	return &saleRepository{
		sales: collection[models.Sale]{name: models.CollectionSales},
		items: collection[models.SaleItem]{name: models.CollectionSaleItems},
	}
}

func (r *saleRepository) Create(ctx context.Context, ex Executor, sale *models.Sale) error {
	return r.sales.set(ctx, ex, sale.ID, sale)
}

func (r *saleRepository) GetByID(ctx context.Context, ex Executor, id int64) (*models.Sale, error) {
	return r.sales.get(ctx, ex, id)
}

// List returns matching sales newest first.
func (r *saleRepository) List(ctx context.Context, ex Executor, filter SaleFilter) ([]models.Sale, error) {
	var filters []docstore.Filter
	if filter.BranchID != nil {
		filters = append(filters, docstore.Where("branch_id", *filter.BranchID))
	}
	if filter.CashierID != nil {
		filters = append(filters, docstore.Where("cashier_id", *filter.CashierID))
	}
	if filter.CustomerID != nil {
		filters = append(filters, docstore.Where("customer_id", *filter.CustomerID))
	}
	if filter.Status != nil {
		filters = append(filters, docstore.Where("status", *filter.Status))
	}
	sales, err := r.sales.find(ctx, ex, filters...)
	if err != nil {
		return nil, err
	}
	if filter.From != nil || filter.To != nil {
		inRange := sales[:0]
		for _, s := range sales {
			if filter.From != nil && s.CreatedAt.Before(*filter.From) {
				continue
			}
			if filter.To != nil && !s.CreatedAt.Before(*filter.To) {
				continue
			}
			inRange = append(inRange, s)
		}
		sales = inRange
	}
	return reversed(sales), nil
}

// CountByBranch is a plain count, not part of any transaction.
func (r *saleRepository) CountByBranch(ctx context.Context, cn Counter, branchID int64) (int64, error) {
	return r.sales.count(ctx, cn, docstore.Where("branch_id", branchID))
}

func (r *saleRepository) UpdateStatus(ctx context.Context, ex Executor, id int64, status, paymentStatus string) error {
	return r.sales.update(ctx, ex, id, map[string]interface{}{
		"status":         status,
		"payment_status": paymentStatus,
		"updated_at":     time.Now().UTC(),
	})
}

func (r *saleRepository) CreateItem(ctx context.Context, ex Executor, item *models.SaleItem) error {
	return r.items.set(ctx, ex, item.ID, item)
}

func (r *saleRepository) ListItems(ctx context.Context, ex Executor, saleID int64) ([]models.SaleItem, error) {
	return r.items.find(ctx, ex, docstore.Where("sale_id", saleID))
}
