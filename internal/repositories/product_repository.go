package repositories

import (
	"context"
	"strings"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
)

// ProductFilter narrows a catalog listing.
type ProductFilter struct {
	CategoryID *int64
	ActiveOnly bool
	Search     string // matched against name, sku and barcode
}

// ProductRepository defines catalog persistence for products and categories.
type ProductRepository interface {
	Create(ctx context.Context, ex Executor, product *models.Product) error
	GetByID(ctx context.Context, ex Executor, id int64) (*models.Product, error)
	GetBySKU(ctx context.Context, ex Executor, sku string) (*models.Product, error)
	GetByBarcode(ctx context.Context, ex Executor, barcode string) (*models.Product, error)
	List(ctx context.Context, ex Executor, filter ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, ex Executor, product *models.Product) error
	Delete(ctx context.Context, ex Executor, id int64) error
	Count(ctx context.Context, cn Counter) (int64, error)

	CreateCategory(ctx context.Context, ex Executor, category *models.Category) error
	GetCategoryByID(ctx context.Context, ex Executor, id int64) (*models.Category, error)
	ListCategories(ctx context.Context, ex Executor) ([]models.Category, error)
	UpdateCategory(ctx context.Context, ex Executor, category *models.Category) error
	DeleteCategory(ctx context.Context, ex Executor, id int64) error
}

type productRepository struct {
	products   collection[models.Product]
	categories collection[models.Category]
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository() ProductRepository {
	return &productRepository{
		products:   collection[models.Product]{name: models.CollectionProducts},
		categories: collection[models.Category]{name: models.CollectionCategories},
	}
}

func (r *productRepository) Create(ctx context.Context, ex Executor, product *models.Product) error {
	return r.products.set(ctx, ex, product.ID, product)
}

func (r *productRepository) GetByID(ctx context.Context, ex Executor, id int64) (*models.Product, error) {
	return r.products.get(ctx, ex, id)
}

func (r *productRepository) GetBySKU(ctx context.Context, ex Executor, sku string) (*models.Product, error) {
	return r.products.first(ctx, ex, docstore.Where("sku", sku))
}

func (r *productRepository) GetByBarcode(ctx context.Context, ex Executor, barcode string) (*models.Product, error) {
	return r.products.first(ctx, ex, docstore.Where("barcode", barcode))
}

func (r *productRepository) List(ctx context.Context, ex Executor, filter ProductFilter) ([]models.Product, error) {
	var filters []docstore.Filter
	if filter.CategoryID != nil {
		filters = append(filters, docstore.Where("category_id", *filter.CategoryID))
	}
	if filter.ActiveOnly {
		filters = append(filters, docstore.Where("is_active", true))
	}
	products, err := r.products.find(ctx, ex, filters...)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	if search == "" {
		return products, nil
	}
	matched := products[:0]
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), search) ||
			strings.Contains(strings.ToLower(p.SKU), search) ||
			(p.Barcode != nil && strings.Contains(*p.Barcode, search)) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (r *productRepository) Update(ctx context.Context, ex Executor, product *models.Product) error {
	if _, err := r.products.get(ctx, ex, product.ID); err != nil {
		return err
	}
	return r.products.set(ctx, ex, product.ID, product)
}

func (r *productRepository) Delete(ctx context.Context, ex Executor, id int64) error {
	return r.products.delete(ctx, ex, id)
}

func (r *productRepository) Count(ctx context.Context, cn Counter) (int64, error) {
	return r.products.count(ctx, cn)
}

func (r *productRepository) CreateCategory(ctx context.Context, ex Executor, category *models.Category) error {
	return r.categories.set(ctx, ex, category.ID, category)
}

func (r *productRepository) GetCategoryByID(ctx context.Context, ex Executor, id int64) (*models.Category, error) {
	return r.categories.get(ctx, ex, id)
}

func (r *productRepository) ListCategories(ctx context.Context, ex Executor) ([]models.Category, error) {
	return r.categories.find(ctx, ex)
}

func (r *productRepository) UpdateCategory(ctx context.Context, ex Executor, category *models.Category) error {
	if _, err := r.categories.get(ctx, ex, category.ID); err != nil {
		return err
	}
	return r.categories.set(ctx, ex, category.ID, category)
}

func (r *productRepository) DeleteCategory(ctx context.Context, ex Executor, id int64) error {
	return r.categories.delete(ctx, ex, id)
}
