package services

import (
	"context"
	"sync"
	"testing"

	"petpos_backend/internal/metrics"
	"petpos_backend/internal/models"
	"petpos_backend/internal/repositories"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func happyCart() []SaleLineRequest {
	return []SaleLineRequest{{ProductID: 1, Quantity: 2, UnitPrice: 100, GSTAmount: 10}}
}

func cashier(branchID int64) Actor {
	return Actor{UserID: 9, Username: "cashier", Role: models.RoleCashier, BranchID: &branchID}
}

func TestCreateSaleHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedBranch(t, 1)
	f.seedStock(t, 1, 1, 1, 10)
	svc := f.saleService()

	sale, err := svc.CreateSale(ctx, cashier(1), CreateSaleRequest{Items: happyCart()})
	require.NoError(t, err)

	assert.Equal(t, int64(1), sale.ID)
	assert.Equal(t, 200.0, sale.Subtotal)
	assert.Equal(t, 10.0, sale.GSTAmount)
	assert.Equal(t, 0.0, sale.Discount)
	assert.Equal(t, 210.0, sale.GrandTotal)
	assert.Equal(t, models.SaleStatusCompleted, sale.Status)
	assert.Equal(t, models.PaymentStatusPaid, sale.PaymentStatus)
	assert.Equal(t, "INV-1-20260301-0001", sale.InvoiceNumber)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, 200.0, sale.Items[0].Total)

	stock, err := f.stock.GetByID(ctx, f.store, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(8), stock.Quantity)

	movements, err := f.movements.List(ctx, f.store, repositories.StockMovementFilter{})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, int64(-2), movements[0].QuantityChanged)
	assert.Equal(t, models.MovementSale, movements[0].MovementType)

	require.Len(t, f.publisher.sales, 1)
	assert.Equal(t, sale.InvoiceNumber, f.publisher.sales[0].InvoiceNumber)
}

func TestCreateSalePercentageDiscount(t *testing.T) {
	f := newFixture(t)
	f.seedBranch(t, 1)
	svc := f.saleService()

	sale, err := svc.CreateSale(context.Background(), cashier(1), CreateSaleRequest{
		Items:        happyCart(),
		Discount:     10,
		DiscountType: models.DiscountPercentage,
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, sale.Discount)
	assert.Equal(t, 190.0, sale.GrandTotal)
}

func TestCreateSalePercentageAboveHundredGoesNegative(t *testing.T) {
	f := newFixture(t)
	f.seedBranch(t, 1)
	svc := f.saleService()

	sale, err := svc.CreateSale(context.Background(), cashier(1), CreateSaleRequest{
		Items:        happyCart(),
		Discount:     150,
		DiscountType: models.DiscountPercentage,
	})
	require.NoError(t, err)
	assert.Equal(t, 300.0, sale.Discount)
	assert.Equal(t, -90.0, sale.GrandTotal)
}

func TestCreateSalePaymentMethodAllowList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedBranch(t, 1)
	m := metrics.New(prometheus.NewRegistry())
	svc := NewSaleService(f.store, f.counters, f.sales, f.stock, f.movements, f.customers, f.branches, f.publisher, m.ObserveSale)

	for _, method := range []string{"junk-1", "junk-2", "cheque", "cash_on_delivery"} {
		_, err := svc.CreateSale(ctx, cashier(1), CreateSaleRequest{Items: happyCart(), PaymentMethod: method})
		assert.ErrorIs(t, err, ErrValidation, method)
	}
	assert.Equal(t, 0, testutil.CollectAndCount(m.SalesCompleted))

	for _, method := range []string{"", " Card ", "upi", "wallet", "cash"} {
		_, err := svc.CreateSale(ctx, cashier(1), CreateSaleRequest{Items: happyCart(), PaymentMethod: method})
		require.NoError(t, err, method)
	}
	assert.Equal(t, 4, testutil.CollectAndCount(m.SalesCompleted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SalesCompleted.WithLabelValues("1", models.PaymentCash)))
}

func TestComputeSaleTotalsIdentity(t *testing.T) {
	cases := []struct {
		name         string
		lines        []SaleLineRequest
		discount     float64
		discountType string
	}{
		{"amount", []SaleLineRequest{{Quantity: 3, UnitPrice: 19.99, GSTAmount: 5.4}}, 7.5, models.DiscountAmount},
		{"percentage", []SaleLineRequest{{Quantity: 1, UnitPrice: 33.33}, {Quantity: 7, UnitPrice: 0.1, GSTAmount: 0.13}}, 12.5, models.DiscountPercentage},
		{"no discount", []SaleLineRequest{{Quantity: 5, UnitPrice: 2.5}}, 0, ""},
		{"negative total", []SaleLineRequest{{Quantity: 1, UnitPrice: 10}}, 50, models.DiscountAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := ComputeSaleTotals(tc.lines, tc.discount, tc.discountType)
			assert.True(t, totals.GrandTotal.Equal(totals.Subtotal.Add(totals.GSTAmount).Sub(totals.Discount)))
		})
	}

	negative := ComputeSaleTotals([]SaleLineRequest{{Quantity: 1, UnitPrice: 10}}, 50, models.DiscountAmount)
	assert.Equal(t, -40.0, negative.GrandTotal.InexactFloat64())
}

func TestCreateSaleFloorsStockAtZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedBranch(t, 1)
	f.seedStock(t, 1, 1, 1, 1)
	svc := f.saleService()

	_, err := svc.CreateSale(ctx, cashier(1), CreateSaleRequest{
		Items: []SaleLineRequest{{ProductID: 1, Quantity: 5, UnitPrice: 10}},
	})
	require.NoError(t, err)

	stock, err := f.stock.GetByID(ctx, f.store, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock.Quantity)
}

func TestCreateSaleSkipsMissingStockAndUsesFirstRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedBranch(t, 1)
	f.seedStock(t, 5, 1, 1, 10)
	f.seedStock(t, 3, 1, 1, 10)
	svc := f.saleService()

	_, err := svc.CreateSale(ctx, cashier(1), CreateSaleRequest{
		Items: []SaleLineRequest{
			{ProductID: 1, Quantity: 4, UnitPrice: 10},
			{ProductID: 2, Quantity: 1, UnitPrice: 10},
		},
	})
	require.NoError(t, err)

	first, err := f.stock.GetByID(ctx, f.store, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(6), first.Quantity)
	second, err := f.stock.GetByID(ctx, f.store, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(10), second.Quantity)
}

func TestCreateSaleAccruesLoyalty(t *testing.T) {
	cases := []struct {
		unitPrice  float64
		wantPoints int64
	}{
		{100, 3},
		{149.5, 4},
		{30, 0},
	}
	for _, tc := range cases {
		ctx := context.Background()
		f := newFixture(t)
		f.seedBranch(t, 1)
		f.seedCustomer(t, 1)
		svc := f.saleService()

		sale, err := svc.CreateSale(ctx, cashier(1), CreateSaleRequest{
			Items:      []SaleLineRequest{{ProductID: 1, Quantity: 3, UnitPrice: tc.unitPrice}},
			CustomerID: int64Ptr(1),
		})
		require.NoError(t, err)

		customer, err := f.customers.GetByID(ctx, f.store, 1)
		require.NoError(t, err)
		assert.Equal(t, tc.wantPoints, customer.LoyaltyPoints)
		assert.InDelta(t, sale.GrandTotal, customer.TotalPurchases, 1e-9)
	}
}

func TestLoyaltyPointsForMultiplesOfHundred(t *testing.T) {
	for k := int64(0); k < 20; k++ {
		assert.Equal(t, k, LoyaltyPointsFor(decimal.NewFromInt(100*k)))
	}
	assert.Equal(t, int64(0), LoyaltyPointsFor(decimal.NewFromInt(-250)))
}

func TestCreateSaleValidation(t *testing.T) {
	f := newFixture(t)
	f.seedBranch(t, 1)
	svc := f.saleService()
	ctx := context.Background()

	_, err := svc.CreateSale(ctx, cashier(1), CreateSaleRequest{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateSale(ctx, cashier(1), CreateSaleRequest{Items: []SaleLineRequest{{ProductID: 1, Quantity: 0, UnitPrice: 1}}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateSale(ctx, cashier(1), CreateSaleRequest{Items: happyCart(), DiscountType: "coupon"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateSale(ctx, Actor{UserID: 1, Role: models.RoleAdmin}, CreateSaleRequest{Items: happyCart()})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateSale(ctx, cashier(2), CreateSaleRequest{Items: happyCart()})
	assert.ErrorIs(t, err, ErrBranchNotFound)

	current, err := f.counters.Current(ctx, models.CollectionSales)
	require.NoError(t, err)
	assert.Equal(t, int64(0), current, "no id is allocated for rejected input")
}

func TestCreateSaleUnknownCustomerLeavesNoPartialState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedBranch(t, 1)
	f.seedStock(t, 1, 1, 1, 10)
	svc := f.saleService()

	_, err := svc.CreateSale(ctx, cashier(1), CreateSaleRequest{Items: happyCart(), CustomerID: int64Ptr(42)})
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	stock, err := f.stock.GetByID(ctx, f.store, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock.Quantity)

	n, err := f.store.Count(ctx, models.CollectionSales)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	n, err = f.store.Count(ctx, models.CollectionSaleItems)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestInvoiceSequenceCountsBranchSales(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedBranch(t, 1)
	f.seedBranch(t, 2)
	svc := f.saleService()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateSale(ctx, cashier(1), CreateSaleRequest{Items: happyCart()})
		require.NoError(t, err)
	}
	sale, err := svc.CreateSale(ctx, cashier(1), CreateSaleRequest{Items: happyCart()})
	require.NoError(t, err)
	assert.Equal(t, "INV-1-20260301-0004", sale.InvoiceNumber)

	other, err := svc.CreateSale(ctx, cashier(2), CreateSaleRequest{Items: happyCart()})
	require.NoError(t, err)
	assert.Equal(t, "INV-2-20260301-0001", other.InvoiceNumber)
}

// Two sales that both count three existing sales before either commits get the
// same invoice number; their sale ids still differ.
func TestConcurrentSalesCanShareInvoiceNumber(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedBranch(t, 1)
	svc := f.saleService()
	for i := 0; i < 3; i++ {
		_, err := svc.CreateSale(ctx, cashier(1), CreateSaleRequest{Items: happyCart()})
		require.NoError(t, err)
	}

	gate := &countGate{SaleRepository: f.sales, waiting: 2}
	gate.cond = sync.NewCond(&gate.mu)
	svc.sales = gate

	var wg sync.WaitGroup
	results := make([]*models.SaleDetail, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.CreateSale(ctx, cashier(1), CreateSaleRequest{Items: happyCart()})
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, "INV-1-20260301-0004", results[0].InvoiceNumber)
	assert.Equal(t, results[0].InvoiceNumber, results[1].InvoiceNumber)
	assert.NotEqual(t, results[0].ID, results[1].ID)
}

// countGate holds every CountByBranch caller until all expected callers have counted.
type countGate struct {
	repositories.SaleRepository
	mu      sync.Mutex
	cond    *sync.Cond
	waiting int
}

func (g *countGate) CountByBranch(ctx context.Context, cn repositories.Counter, branchID int64) (int64, error) {
	n, err := g.SaleRepository.CountByBranch(ctx, cn, branchID)
	g.mu.Lock()
	g.waiting--
	for g.waiting > 0 {
		g.cond.Wait()
	}
	g.cond.Broadcast()
	g.mu.Unlock()
	return n, err
}

func TestUpdateSaleStatusReturnsStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedBranch(t, 1)
	f.seedStock(t, 1, 1, 1, 10)
	f.seedCustomer(t, 1)
	svc := f.saleService()

	sale, err := svc.CreateSale(ctx, cashier(1), CreateSaleRequest{Items: happyCart(), CustomerID: int64Ptr(1)})
	require.NoError(t, err)

	updated, err := svc.UpdateSaleStatus(ctx, cashier(1), sale.ID, UpdateSaleStatusRequest{Status: "refunded"})
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusRefunded, updated.Status)

	stock, err := f.stock.GetByID(ctx, f.store, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock.Quantity)

	customer, err := f.customers.GetByID(ctx, f.store, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), customer.LoyaltyPoints)
	assert.InDelta(t, 0, customer.TotalPurchases, 1e-9)

	_, err = svc.UpdateSaleStatus(ctx, cashier(1), sale.ID, UpdateSaleStatusRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = svc.UpdateSaleStatus(ctx, cashier(1), 99, UpdateSaleStatusRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

func TestConcurrentSalesNeverDriveStockNegative(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedBranch(t, 1)
	f.seedStock(t, 1, 1, 1, 5)
	svc := f.saleService()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.CreateSale(ctx, cashier(1), CreateSaleRequest{
				Items: []SaleLineRequest{{ProductID: 1, Quantity: 2, UnitPrice: 1}},
			})
		}()
	}
	wg.Wait()

	stock, err := f.stock.GetByID(ctx, f.store, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock.Quantity)
}
