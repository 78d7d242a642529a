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

	"golang.org/x/crypto/bcrypt"
)

// --- Storefront auth DTOs ---
type CustomerRegisterRequest struct {
	Name     string  `json:"name" binding:"required"`
	Phone    string  `json:"phone" binding:"required"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	Password string  `json:"password" binding:"required"`
}

type CustomerLoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CustomerAuthService authenticates storefront customers.
type CustomerAuthService interface {
	Register(ctx context.Context, req CustomerRegisterRequest) (*models.LoginResponse, error)
	Login(ctx context.Context, req CustomerLoginRequest) (*models.LoginResponse, error)
	// Authenticate trusts the token claims and only consults the revocation
	// list. Any failure of that check rejects the token.
	Authenticate(ctx context.Context, token string) (*utils.Claims, error)
	Logout(ctx context.Context, claims *utils.Claims) error
	Me(ctx context.Context, customerID int64) (*models.Customer, error)
}

type customerAuthService struct {
	store     docstore.Store
	counters  repositories.CounterRepository
	customers repositories.CustomerRepository
	revoked   revocation.List
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewCustomerAuthService creates a new instance of CustomerAuthService.
func NewCustomerAuthService(store docstore.Store, counters repositories.CounterRepository, customers repositories.CustomerRepository,
	revoked revocation.List, jwtSecret []byte, tokenTTL time.Duration) CustomerAuthService {
	return &customerAuthService{
		store:     store,
		counters:  counters,
		customers: customers,
		revoked:   revoked,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register creates a storefront account. A customer already known to a
// branch by phone but without a password claims that record instead.
func (s *customerAuthService) Register(ctx context.Context, req CustomerRegisterRequest) (*models.LoginResponse, error) {
	if utils.IsEmpty(req.Name) {
		return nil, validationError("name is required")
	}
	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}
	if !utils.IsValidPasswordLength(req.Password, minPasswordLength) {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}
	if req.Email != nil && !utils.IsValidEmail(*req.Email) {
		return nil, validationError("invalid email format")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var customer *models.Customer
	err = s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		now := nowUTC()
		existing, err := s.customers.GetByPhone(ctx, tx, phone)
		switch {
		case err == nil:
			if existing.PasswordHash != "" || !existing.IsActive {
				return ErrPhoneExists
			}
			existing.PasswordHash = string(hash)
			if existing.Email == nil {
				existing.Email = req.Email
			}
			if existing.Address == nil {
				existing.Address = req.Address
			}
			existing.UpdatedAt = now
			customer = existing
			return s.customers.Update(ctx, tx, existing)
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}

		id, err := s.counters.Allocate(ctx, tx, models.CollectionCustomers)
		if err != nil {
			return err
		}
		customer = &models.Customer{
			ID:           id,
			Name:         strings.TrimSpace(req.Name),
			Phone:        phone,
			Email:        req.Email,
			Address:      req.Address,
			PasswordHash: string(hash),
			CustomerType: models.CustomerRetail,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return s.customers.Create(ctx, tx, customer)
	})
	if err != nil {
		return nil, err
	}
	return s.issue(customer)
}

func (s *customerAuthService) Login(ctx context.Context, req CustomerLoginRequest) (*models.LoginResponse, error) {
	phone := strings.ReplaceAll(strings.TrimSpace(req.Phone), " ", "")
	customer, err := s.customers.GetByPhone(ctx, s.store, phone)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("customer login failed: %w", err)
	}
	if !customer.IsActive || customer.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(customer)
}

func (s *customerAuthService) issue(customer *models.Customer) (*models.LoginResponse, error) {
	claims := utils.NewCustomerClaims(customer.ID, customer.Phone)
	token, err := utils.GenerateToken(s.jwtSecret, utils.CustomerIssuer, claims, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	customer.PasswordHash = ""
	return &models.LoginResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: customer}, nil
}

func (s *customerAuthService) Authenticate(ctx context.Context, token string) (*utils.Claims, error) {
	claims, err := utils.ValidateToken(token, s.jwtSecret, utils.CustomerIssuer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.CustomerID <= 0 {
		return nil, fmt.Errorf("%w: token carries no customer", ErrUnauthenticated)
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID, customerSubject(claims.CustomerID), claims.IssuedAt.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: revocation check failed: %v", ErrUnauthenticated, err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", ErrUnauthenticated)
		}
	}
	return claims, nil
}

func (s *customerAuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	if s.revoked == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.revoked.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *customerAuthService) Me(ctx context.Context, customerID int64) (*models.Customer, error) {
	customer, err := s.customers.GetByID(ctx, s.store, customerID)
	if err != nil {
		return nil, notFound(err, ErrCustomerNotFound)
	}
	customer.PasswordHash = ""
	return customer, nil
}
