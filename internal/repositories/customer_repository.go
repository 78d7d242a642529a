package repositories

import (
	"context"
	"strings"
	"time"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
)

// CustomerFilter narrows a customer listing.
type CustomerFilter struct {
	CustomerType *string
	Search       string // name, phone or email
}

// CustomerRepository defines the interface for customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, ex Executor, customer *models.Customer) error
	GetByID(ctx context.Context, ex Executor, id int64) (*models.Customer, error)
	GetByPhone(ctx context.Context, ex Executor, phone string) (*models.Customer, error)
	List(ctx context.Context, ex Executor, filter CustomerFilter) ([]models.Customer, error)
	Update(ctx context.Context, ex Executor, customer *models.Customer) error
	Delete(ctx context.Context, ex Executor, id int64) error
	// AddPurchase credits a completed sale using the store's increment primitive.
	AddPurchase(ctx context.Context, ex Executor, id int64, amount float64, points int64) error
	Count(ctx context.Context, cn Counter) (int64, error)
}

type customerRepository struct {
	customers collection[models.Customer]
}

// NewCustomerRepository creates a new instance of CustomerRepository.
func NewCustomerRepository() CustomerRepository {
	return &customerRepository{customers: collection[models.Customer]{name: models.CollectionCustomers}}
}

func (r *customerRepository) Create(ctx context.Context, ex Executor, customer *models.Customer) error {
	return r.customers.set(ctx, ex, customer.ID, customer)
}

func (r *customerRepository) GetByID(ctx context.Context, ex Executor, id int64) (*models.Customer, error) {
	return r.customers.get(ctx, ex, id)
}

func (r *customerRepository) GetByPhone(ctx context.Context, ex Executor, phone string) (*models.Customer, error) {
	return r.customers.first(ctx, ex, docstore.Where("phone", phone))
}

func (r *customerRepository) List(ctx context.Context, ex Executor, filter CustomerFilter) ([]models.Customer, error) {
	var filters []docstore.Filter
	if filter.CustomerType != nil {
		filters = append(filters, docstore.Where("customer_type", *filter.CustomerType))
	}
	customers, err := r.customers.find(ctx, ex, filters...)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	if search == "" {
		return customers, nil
	}
	matched := customers[:0]
	for _, c := range customers {
		if strings.Contains(strings.ToLower(c.Name), search) ||
			strings.Contains(c.Phone, search) ||
			(c.Email != nil && strings.Contains(strings.ToLower(*c.Email), search)) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (r *customerRepository) Update(ctx context.Context, ex Executor, customer *models.Customer) error {
	if _, err := r.customers.get(ctx, ex, customer.ID); err != nil {
		return err
	}
	return r.customers.set(ctx, ex, customer.ID, customer)
}

func (r *customerRepository) Delete(ctx context.Context, ex Executor, id int64) error {
	return r.customers.delete(ctx, ex, id)
}

func (r *customerRepository) AddPurchase(ctx context.Context, ex Executor, id int64, amount float64, points int64) error {
	return r.customers.update(ctx, ex, id, map[string]interface{}{
		"total_purchases": docstore.Increment(amount),
		"loyalty_points":  docstore.Increment(float64(points)),
		"updated_at":      time.Now().UTC(),
	})
}

func (r *customerRepository) Count(ctx context.Context, cn Counter) (int64, error) {
	return r.customers.count(ctx, cn)
}
