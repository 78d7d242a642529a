package repositories

import (
	"context"

	"petpos_backend/internal/models"
)

// SupplierRepository defines supplier persistence.
type SupplierRepository interface {
	Create(ctx context.Context, ex Executor, supplier *models.Supplier) error
	GetByID(ctx context.Context, ex Executor, id int64) (*models.Supplier, error)
	List(ctx context.Context, ex Executor) ([]models.Supplier, error)
	Update(ctx context.Context, ex Executor, supplier *models.Supplier) error
	Delete(ctx context.Context, ex Executor, id int64) error
}

type supplierRepository struct {
	suppliers collection[models.Supplier]
}

// NewSupplierRepository creates a new instance of SupplierRepository.
func NewSupplierRepository() SupplierRepository {
	return &supplierRepository{suppliers: collection[models.Supplier]{name: models.CollectionSuppliers}}
}

func (r *supplierRepository) Create(ctx context.Context, ex Executor, supplier *models.Supplier) error {
	return r.suppliers.set(ctx, ex, supplier.ID, supplier)
}

func (r *supplierRepository) GetByID(ctx context.Context, ex Executor, id int64) (*models.Supplier, error) {
	return r.suppliers.get(ctx, ex, id)
}

func (r *supplierRepository) List(ctx context.Context, ex Executor) ([]models.Supplier, error) {
	return r.suppliers.find(ctx, ex)
}

func (r *supplierRepository) Update(ctx context.Context, ex Executor, supplier *models.Supplier) error {
	if _, err := r.suppliers.get(ctx, ex, supplier.ID); err != nil {
		return err
	}
	return r.suppliers.set(ctx, ex, supplier.ID, supplier)
}

func (r *supplierRepository) Delete(ctx context.Context, ex Executor, id int64) error {
	return r.suppliers.delete(ctx, ex, id)
}
