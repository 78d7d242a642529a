package services

import (
	"context"
	"strings"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
	"petpos_backend/internal/repositories"
	"petpos_backend/pkg/utils"
)

// SupplierRequest DTO for create and update.
type SupplierRequest struct {
	Name          string  `json:"name" binding:"required"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	GSTNumber     *string `json:"gst_number"`
	IsActive      *bool   `json:"is_active"`
}

// SupplierService manages suppliers.
type SupplierService interface {
	CreateSupplier(ctx context.Context, req SupplierRequest) (*models.Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*models.Supplier, error)
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	UpdateSupplier(ctx context.Context, id int64, req SupplierRequest) (*models.Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) error
}

type supplierService struct {
	store     docstore.Store
	counters  repositories.CounterRepository
	suppliers repositories.SupplierRepository
}

// NewSupplierService creates a new instance of SupplierService.
func NewSupplierService(store docstore.Store, counters repositories.CounterRepository, suppliers repositories.SupplierRepository) SupplierService {
	return &supplierService{store: store, counters: counters, suppliers: suppliers}
}

func validateSupplier(req SupplierRequest) error {
	if utils.IsEmpty(req.Name) {
		return validationError("name is required")
	}
	if req.Email != nil && !utils.IsValidEmail(*req.Email) {
		return validationError("invalid email format")
	}
	return nil
}

func (s *supplierService) CreateSupplier(ctx context.Context, req SupplierRequest) (*models.Supplier, error) {
	if err := validateSupplier(req); err != nil {
		return nil, err
	}
	now := nowUTC()
	supplier := &models.Supplier{
		Name:          strings.TrimSpace(req.Name),
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		GSTNumber:     req.GSTNumber,
		IsActive:      req.IsActive == nil || *req.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := createWithID(ctx, s.store, s.counters, models.CollectionSuppliers, func(ctx context.Context, tx docstore.Tx, id int64) error {
		supplier.ID = id
		return s.suppliers.Create(ctx, tx, supplier)
	})
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	supplier, err := s.suppliers.GetByID(ctx, s.store, id)
	if err != nil {
		return nil, notFound(err, ErrSupplierNotFound)
	}
	return supplier, nil
}

func (s *supplierService) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	return s.suppliers.List(ctx, s.store)
}

func (s *supplierService) UpdateSupplier(ctx context.Context, id int64, req SupplierRequest) (*models.Supplier, error) {
	if err := validateSupplier(req); err != nil {
		return nil, err
	}
	var updated *models.Supplier
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		supplier, err := s.suppliers.GetByID(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrSupplierNotFound)
		}
		supplier.Name = strings.TrimSpace(req.Name)
		supplier.ContactPerson = req.ContactPerson
		supplier.Phone = req.Phone
		supplier.Email = req.Email
		supplier.Address = req.Address
		supplier.GSTNumber = req.GSTNumber
		if req.IsActive != nil {
			supplier.IsActive = *req.IsActive
		}
		supplier.UpdatedAt = nowUTC()
		updated = supplier
		return s.suppliers.Update(ctx, tx, supplier)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *supplierService) DeleteSupplier(ctx context.Context, id int64) error {
	if err := s.suppliers.Delete(ctx, s.store, id); err != nil {
		return notFound(err, ErrSupplierNotFound)
	}
	return nil
}
