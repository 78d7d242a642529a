package services

import (
	"context"
	"errors"
	"strings"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
	"petpos_backend/internal/repositories"
	"petpos_backend/pkg/utils"
)

// ProductRequest DTO for create and update.
type ProductRequest struct {
	SKU           string  `json:"sku" binding:"required"`
	Barcode       *string `json:"barcode"`
	Name          string  `json:"name" binding:"required"`
	CategoryID    *int64  `json:"category_id"`
	Description   *string `json:"description"`
	MRP           float64 `json:"mrp" binding:"gte=0"`
	SellingPrice  float64 `json:"selling_price" binding:"gte=0"`
	PurchasePrice float64 `json:"purchase_price" binding:"gte=0"`
	GSTRate       float64 `json:"gst_rate" binding:"gte=0,lte=100"`
	MinStock      int64   `json:"min_stock" binding:"gte=0"`
	Unit          string  `json:"unit"`
	IsActive      *bool   `json:"is_active"`
}

// CategoryRequest DTO
type CategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// CatalogService manages products and categories.
type CatalogService interface {
	CreateProduct(ctx context.Context, req ProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	// LookupProduct finds a product by SKU, falling back to barcode.
	LookupProduct(ctx context.Context, code string) (*models.Product, error)
	ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id int64, req ProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	CreateCategory(ctx context.Context, req CategoryRequest) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id int64, req CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type catalogService struct {
	store    docstore.Store
	counters repositories.CounterRepository
	products repositories.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(store docstore.Store, counters repositories.CounterRepository, products repositories.ProductRepository) CatalogService {
	return &catalogService{store: store, counters: counters, products: products}
}

// checkUnique enforces SKU and barcode uniqueness against every other product.
func (s *catalogService) checkUnique(ctx context.Context, ex repositories.Executor, sku string, barcode *string, selfID int64) error {
	if p, err := s.products.GetBySKU(ctx, ex, sku); err == nil && p.ID != selfID {
		return ErrSKUExists
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	if barcode == nil {
		return nil
	}
	if p, err := s.products.GetByBarcode(ctx, ex, *barcode); err == nil && p.ID != selfID {
		return ErrBarcodeExists
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	return nil
}

func (s *catalogService) checkCategory(ctx context.Context, ex repositories.Executor, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.products.GetCategoryByID(ctx, ex, *categoryID); err != nil {
		return notFound(err, ErrCategoryNotFound)
	}
	return nil
}

func normalizeProduct(req *ProductRequest) error {
	req.SKU = strings.TrimSpace(req.SKU)
	req.Name = strings.TrimSpace(req.Name)
	req.Barcode = utils.NewNullString(derefString(req.Barcode))
	if req.SKU == "" || req.Name == "" {
		return validationError("sku and name are required")
	}
	if req.SellingPrice > req.MRP && req.MRP > 0 {
		return validationError("selling_price must not exceed mrp")
	}
	if req.Unit == "" {
		req.Unit = "pcs"
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *catalogService) CreateProduct(ctx context.Context, req ProductRequest) (*models.Product, error) {
	if err := normalizeProduct(&req); err != nil {
		return nil, err
	}
	now := nowUTC()
	product := &models.Product{
		SKU:           req.SKU,
		Barcode:       req.Barcode,
		Name:          req.Name,
		CategoryID:    req.CategoryID,
		Description:   req.Description,
		MRP:           req.MRP,
		SellingPrice:  req.SellingPrice,
		PurchasePrice: req.PurchasePrice,
		GSTRate:       req.GSTRate,
		MinStock:      req.MinStock,
		Unit:          req.Unit,
		IsActive:      req.IsActive == nil || *req.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := createWithID(ctx, s.store, s.counters, models.CollectionProducts, func(ctx context.Context, tx docstore.Tx, id int64) error {
		if err := s.checkUnique(ctx, tx, req.SKU, req.Barcode, 0); err != nil {
			return err
		}
		if err := s.checkCategory(ctx, tx, req.CategoryID); err != nil {
			return err
		}
		product.ID = id
		return s.products.Create(ctx, tx, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, s.store, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return product, nil
}

func (s *catalogService) LookupProduct(ctx context.Context, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, validationError("code is required")
	}
	product, err := s.products.GetBySKU(ctx, s.store, code)
	if errors.Is(err, repositories.ErrNotFound) {
		product, err = s.products.GetByBarcode(ctx, s.store, code)
	}
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, error) {
	return s.products.List(ctx, s.store, filter)
}

func (s *catalogService) UpdateProduct(ctx context.Context, id int64, req ProductRequest) (*models.Product, error) {
	if err := normalizeProduct(&req); err != nil {
		return nil, err
	}
	var updated *models.Product
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		product, err := s.products.GetByID(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrProductNotFound)
		}
		if err := s.checkUnique(ctx, tx, req.SKU, req.Barcode, id); err != nil {
			return err
		}
		if err := s.checkCategory(ctx, tx, req.CategoryID); err != nil {
			return err
		}
		product.SKU = req.SKU
		product.Barcode = req.Barcode
		product.Name = req.Name
		product.CategoryID = req.CategoryID
		product.Description = req.Description
		product.MRP = req.MRP
		product.SellingPrice = req.SellingPrice
		product.PurchasePrice = req.PurchasePrice
		product.GSTRate = req.GSTRate
		product.MinStock = req.MinStock
		product.Unit = req.Unit
		if req.IsActive != nil {
			product.IsActive = *req.IsActive
		}
		product.UpdatedAt = nowUTC()
		updated = product
		return s.products.Update(ctx, tx, product)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, s.store, id); err != nil {
		return notFound(err, ErrProductNotFound)
	}
	return nil
}

func (s *catalogService) CreateCategory(ctx context.Context, req CategoryRequest) (*models.Category, error) {
	if utils.IsEmpty(req.Name) {
		return nil, validationError("name is required")
	}
	now := nowUTC()
	category := &models.Category{Name: strings.TrimSpace(req.Name), Description: req.Description, CreatedAt: now, UpdatedAt: now}
	err := createWithID(ctx, s.store, s.counters, models.CollectionCategories, func(ctx context.Context, tx docstore.Tx, id int64) error {
		category.ID = id
		return s.products.CreateCategory(ctx, tx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.products.ListCategories(ctx, s.store)
}

func (s *catalogService) UpdateCategory(ctx context.Context, id int64, req CategoryRequest) (*models.Category, error) {
	if utils.IsEmpty(req.Name) {
		return nil, validationError("name is required")
	}
	var updated *models.Category
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		category, err := s.products.GetCategoryByID(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrCategoryNotFound)
		}
		category.Name = strings.TrimSpace(req.Name)
		category.Description = req.Description
		category.UpdatedAt = nowUTC()
		updated = category
		return s.products.UpdateCategory(ctx, tx, category)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.products.DeleteCategory(ctx, s.store, id); err != nil {
		return notFound(err, ErrCategoryNotFound)
	}
	return nil
}
