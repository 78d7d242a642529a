package services

import (
	"context"
	"testing"

	"petpos_backend/internal/models"
	"petpos_backend/internal/repositories"
	"petpos_backend/internal/revocation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestCatalogProductUniquenessAndLookup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCatalogService(f.store, f.counters, f.products)

	_, err := svc.CreateProduct(ctx, ProductRequest{SKU: "CAT-1", Name: "Litter", CategoryID: int64Ptr(9)})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	category, err := svc.CreateCategory(ctx, CategoryRequest{Name: " Cat care "})
	require.NoError(t, err)
	assert.Equal(t, "Cat care", category.Name)

	litter, err := svc.CreateProduct(ctx, ProductRequest{
		SKU: " CAT-1 ", Barcode: strPtr("8901"), Name: "Litter", CategoryID: &category.ID, MRP: 300, SellingPrice: 280,
	})
	require.NoError(t, err)
	assert.Equal(t, "CAT-1", litter.SKU)
	assert.Equal(t, "pcs", litter.Unit)
	assert.True(t, litter.IsActive)

	_, err = svc.CreateProduct(ctx, ProductRequest{SKU: "CAT-1", Name: "Other"})
	assert.ErrorIs(t, err, ErrSKUExists)
	_, err = svc.CreateProduct(ctx, ProductRequest{SKU: "CAT-2", Barcode: strPtr("8901"), Name: "Other"})
	assert.ErrorIs(t, err, ErrBarcodeExists)
	_, err = svc.CreateProduct(ctx, ProductRequest{SKU: "CAT-3", Name: "Pricey", MRP: 100, SellingPrice: 150})
	assert.ErrorIs(t, err, ErrValidation)

	bySKU, err := svc.LookupProduct(ctx, "CAT-1")
	require.NoError(t, err)
	assert.Equal(t, litter.ID, bySKU.ID)
	byBarcode, err := svc.LookupProduct(ctx, "8901")
	require.NoError(t, err)
	assert.Equal(t, litter.ID, byBarcode.ID)
	_, err = svc.LookupProduct(ctx, "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)

	// Updating a product to its own SKU is not a conflict.
	updated, err := svc.UpdateProduct(ctx, litter.ID, ProductRequest{SKU: "CAT-1", Name: "Clumping litter", IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	active, err := svc.ListProducts(ctx, repositories.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, svc.DeleteProduct(ctx, litter.ID))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, litter.ID), ErrProductNotFound)
}

func TestBranchCodeIsUniqueCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewBranchService(f.store, f.counters, f.branches)

	branch, err := svc.CreateBranch(ctx, BranchRequest{Name: "Main", Code: "mg-1"})
	require.NoError(t, err)
	assert.Equal(t, "MG-1", branch.Code)

	_, err = svc.CreateBranch(ctx, BranchRequest{Name: "Second", Code: "MG-1"})
	assert.ErrorIs(t, err, ErrBranchCodeExists)

	next, err := f.counters.Current(ctx, models.CollectionBranches)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next, "rejected creates leave no gap")
}

func TestUserCreationValidatesAndHidesHash(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedBranch(t, 1)
	svc := NewUserService(f.store, f.counters, f.users, f.branches)

	_, err := svc.CreateUser(ctx, CreateUserRequest{Username: "kim", Password: "short", Role: models.RoleCashier})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateUser(ctx, CreateUserRequest{Username: "kim", Password: "long-enough", Role: "owner"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateUser(ctx, CreateUserRequest{Username: "kim", Password: "long-enough", Role: models.RoleCashier, BranchID: int64Ptr(7)})
	assert.ErrorIs(t, err, ErrBranchNotFound)

	user, err := svc.CreateUser(ctx, CreateUserRequest{Username: " Kim ", Password: "long-enough", Role: "Cashier", BranchID: int64Ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, "kim", user.Username)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.CreateUser(ctx, CreateUserRequest{Username: "KIM", Password: "long-enough", Role: models.RoleCashier})
	assert.ErrorIs(t, err, ErrUsernameExists)

	stored, err := f.users.GetByID(ctx, f.store, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestSupplierCRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewSupplierService(f.store, f.counters, repositories.NewSupplierRepository())

	_, err := svc.CreateSupplier(ctx, SupplierRequest{Name: "Pawsome", Email: strPtr("not-an-email")})
	assert.ErrorIs(t, err, ErrValidation)

	supplier, err := svc.CreateSupplier(ctx, SupplierRequest{Name: "Pawsome", GSTNumber: strPtr("29ABCDE1234F1Z5")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), supplier.ID)

	updated, err := svc.UpdateSupplier(ctx, supplier.ID, SupplierRequest{Name: "Pawsome Wholesale"})
	require.NoError(t, err)
	assert.Equal(t, "Pawsome Wholesale", updated.Name)

	all, err := svc.ListSuppliers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.DeleteSupplier(ctx, supplier.ID))
	_, err = svc.GetSupplier(ctx, supplier.ID)
	assert.ErrorIs(t, err, ErrSupplierNotFound)
}

func TestCustomerPhoneUniqueAndTypeChecked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCustomerService(f.store, f.counters, f.customers, revocation.NewMemoryList(), 0)

	customer, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "Ravi", Phone: "98765 43210"})
	require.NoError(t, err)
	assert.Equal(t, "9876543210", customer.Phone)
	assert.Equal(t, models.CustomerRetail, customer.CustomerType)

	_, err = svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "Other", Phone: "9876543210"})
	assert.ErrorIs(t, err, ErrPhoneExists)
	_, err = svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "Other", Phone: "12ab"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "Other", Phone: "9000000001", CustomerType: "vip"})
	assert.ErrorIs(t, err, ErrValidation)
}
