package services

import (
	"errors"
	"fmt"

	"petpos_backend/internal/repositories"
)

// --- Custom Service Errors ---
var (
	// ErrValidation marks input that was rejected before any write.
	ErrValidation = errors.New("validation failed")
	ErrEmptyCart  = fmt.Errorf("%w: cart is empty", ErrValidation)

	ErrInvalidCredentials      = errors.New("invalid username or password")
	ErrUnauthenticated         = errors.New("authentication required")
	ErrUsernameExists          = errors.New("username already exists")
	ErrUserNotFound            = errors.New("user not found")
	ErrBranchNotFound          = errors.New("branch not found")
	ErrBranchCodeExists        = errors.New("branch code already exists")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrSKUExists               = errors.New("sku already exists")
	ErrBarcodeExists           = errors.New("barcode already exists")
	ErrStockNotFound           = errors.New("stock record not found")
	ErrCustomerNotFound        = errors.New("customer not found")
	ErrPhoneExists             = errors.New("phone number already registered")
	ErrSupplierNotFound        = errors.New("supplier not found")
	ErrSaleNotFound            = errors.New("sale not found")
	ErrOrderNotFound           = errors.New("online order not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// validationError wraps ErrValidation with a field-level detail.
func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound translates a repository miss into the service sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return sentinel
	}
	return err
}
