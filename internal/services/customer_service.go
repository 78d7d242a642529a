package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
	"petpos_backend/internal/repositories"
	"petpos_backend/internal/revocation"
	"petpos_backend/pkg/utils"
)

// --- Customer DTOs ---
type CreateCustomerRequest struct {
	Name         string  `json:"name" binding:"required"`
	Phone        string  `json:"phone" binding:"required"`
	Email        *string `json:"email"`
	Address      *string `json:"address"`
	CustomerType string  `json:"customer_type"`
}

type UpdateCustomerRequest struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	Address      *string `json:"address"`
	CustomerType *string `json:"customer_type"`
	IsActive     *bool   `json:"is_active"`
}

// CustomerService manages customers from the staff side.
type CustomerService interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	ListCustomers(ctx context.Context, filter repositories.CustomerFilter) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, req UpdateCustomerRequest) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

type customerService struct {
	store     docstore.Store
	counters  repositories.CounterRepository
	customers repositories.CustomerRepository
	revoked   revocation.List
	tokenTTL  time.Duration
}

// NewCustomerService creates a new instance of CustomerService. Deactivating or
// deleting a customer revokes the storefront tokens issued to them so far.
func NewCustomerService(store docstore.Store, counters repositories.CounterRepository, customers repositories.CustomerRepository,
	revoked revocation.List, customerTokenTTL time.Duration) CustomerService {
	return &customerService{store: store, counters: counters, customers: customers, revoked: revoked, tokenTTL: customerTokenTTL}
}

func customerSubject(customerID int64) string {
	return "customer:" + utils.Int64ToStr(customerID)
}

func normalizePhone(phone string) (string, error) {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if !utils.IsValidPhone(phone) {
		return "", validationError("invalid phone number")
	}
	return phone, nil
}

func validCustomerType(t string) bool {
	return t == models.CustomerRetail || t == models.CustomerWholesale
}

// ensurePhoneFree fails when a customer other than selfID owns phone.
func ensurePhoneFree(ctx context.Context, repo repositories.CustomerRepository, ex repositories.Executor, phone string, selfID int64) error {
	existing, err := repo.GetByPhone(ctx, ex, phone)
	if err == nil && existing.ID != selfID {
		return ErrPhoneExists
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	return nil
}

func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*models.Customer, error) {
	if utils.IsEmpty(req.Name) {
		return nil, validationError("name is required")
	}
	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}
	if req.Email != nil && !utils.IsValidEmail(*req.Email) {
		return nil, validationError("invalid email format")
	}
	customerType := strings.ToLower(req.CustomerType)
	if customerType == "" {
		customerType = models.CustomerRetail
	}
	if !validCustomerType(customerType) {
		return nil, validationError("customer_type must be retail or wholesale")
	}

	now := nowUTC()
	customer := &models.Customer{
		Name:         strings.TrimSpace(req.Name),
		Phone:        phone,
		Email:        req.Email,
		Address:      req.Address,
		CustomerType: customerType,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = createWithID(ctx, s.store, s.counters, models.CollectionCustomers, func(ctx context.Context, tx docstore.Tx, id int64) error {
		if err := ensurePhoneFree(ctx, s.customers, tx, phone, 0); err != nil {
			return err
		}
		customer.ID = id
		return s.customers.Create(ctx, tx, customer)
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	customer, err := s.customers.GetByID(ctx, s.store, id)
	if err != nil {
		return nil, notFound(err, ErrCustomerNotFound)
	}
	customer.PasswordHash = ""
	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context, filter repositories.CustomerFilter) ([]models.Customer, error) {
	customers, err := s.customers.List(ctx, s.store, filter)
	if err != nil {
		return nil, err
	}
	for i := range customers {
		customers[i].PasswordHash = ""
	}
	return customers, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id int64, req UpdateCustomerRequest) (*models.Customer, error) {
	var phone string
	if req.Phone != nil {
		var err error
		if phone, err = normalizePhone(*req.Phone); err != nil {
			return nil, err
		}
	}
	if req.Email != nil && !utils.IsValidEmail(*req.Email) {
		return nil, validationError("invalid email format")
	}
	if req.CustomerType != nil && !validCustomerType(strings.ToLower(*req.CustomerType)) {
		return nil, validationError("customer_type must be retail or wholesale")
	}

	var (
		updated     *models.Customer
		deactivated bool
	)
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		customer, err := s.customers.GetByID(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrCustomerNotFound)
		}
		if phone != "" && phone != customer.Phone {
			if err := ensurePhoneFree(ctx, s.customers, tx, phone, id); err != nil {
				return err
			}
			customer.Phone = phone
		}
		if req.Name != nil {
			customer.Name = strings.TrimSpace(*req.Name)
		}
		if req.Email != nil {
			customer.Email = req.Email
		}
		if req.Address != nil {
			customer.Address = req.Address
		}
		if req.CustomerType != nil {
			customer.CustomerType = strings.ToLower(*req.CustomerType)
		}
		deactivated = false
		if req.IsActive != nil {
			deactivated = customer.IsActive && !*req.IsActive
			customer.IsActive = *req.IsActive
		}
		customer.UpdatedAt = nowUTC()
		updated = customer
		return s.customers.Update(ctx, tx, customer)
	})
	if err != nil {
		return nil, err
	}
	if deactivated {
		if err := s.revokeTokens(ctx, id); err != nil {
			return nil, err
		}
	}
	updated.PasswordHash = ""
	return updated, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.customers.Delete(ctx, s.store, id); err != nil {
		return notFound(err, ErrCustomerNotFound)
	}
	return s.revokeTokens(ctx, id)
}

func (s *customerService) revokeTokens(ctx context.Context, id int64) error {
	if s.revoked == nil {
		return nil
	}
	if err := s.revoked.RevokeSubject(ctx, customerSubject(id), nowUTC(), s.tokenTTL); err != nil {
		return fmt.Errorf("failed to revoke customer tokens: %w", err)
	}
	return nil
}
