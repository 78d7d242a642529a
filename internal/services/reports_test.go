package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"petpos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReportData(t *testing.T, f *fixture) {
	ctx := context.Background()
	f.seedBranch(t, 1)
	f.seedCustomer(t, 1)
	f.seedProduct(t, models.Product{ID: 1, SKU: "KIBBLE", Name: "Kibble", SellingPrice: 100, GSTRate: 5, MinStock: 10, IsActive: true, CreatedAt: fixedNow})
	f.seedStock(t, 1, 1, 1, 10)

	_, err := f.saleService().CreateSale(ctx, cashier(1), CreateSaleRequest{Items: happyCart()})
	require.NoError(t, err)

	lastMonth := fixedNow.AddDate(0, 0, -1)
	require.NoError(t, f.sales.Create(ctx, f.store, &models.Sale{
		ID: 50, InvoiceNumber: "INV-1-20260228-0001", BranchID: 1, GrandTotal: 50,
		Status: models.SaleStatusCompleted, CreatedAt: lastMonth, UpdatedAt: lastMonth,
	}))

	_, err = f.orderService().PlaceOrder(ctx, 1, PlaceOrderRequest{Items: []OrderLineRequest{{ProductID: 1, Quantity: 1}}})
	require.NoError(t, err)
}

func TestDashboardSummary(t *testing.T) {
	f := newFixture(t)
	seedReportData(t, f)

	svc := NewDashboardService(f.store, f.sales, f.orders, f.products, f.customers, f.stockService()).(*dashboardService)
	svc.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }

	summary, err := svc.Summary(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.SalesToday)
	assert.Equal(t, 210.0, summary.RevenueToday)
	assert.Equal(t, 210.0, summary.RevenueThisMonth)
	assert.Equal(t, int64(1), summary.PendingOnlineOrder)
	assert.Equal(t, int64(1), summary.LowStockCount)
	assert.Equal(t, int64(1), summary.ProductCount)
	assert.Equal(t, int64(1), summary.CustomerCount)

	other := int64(2)
	summary, err = svc.Summary(context.Background(), &other)
	require.NoError(t, err)
	assert.Zero(t, summary.SalesToday)
	assert.Zero(t, summary.PendingOnlineOrder)
	assert.Zero(t, summary.LowStockCount)
}

func TestExportSalesCSV(t *testing.T) {
	f := newFixture(t)
	seedReportData(t, f)
	svc := NewExportService(f.store, f.sales, f.products)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, svc.ExportSales(context.Background(), &buf, nil, DateRange{From: &from}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, salesCSVHeader, records[0])
	assert.Equal(t, "INV-1-20260301-0001", records[1][1])
	assert.Equal(t, "210.00", records[1][8])

	buf.Reset()
	require.NoError(t, svc.ExportSales(context.Background(), &buf, nil, DateRange{}))
	records, err = csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "INV-1-20260228-0001", records[1][1], "oldest first")
}

func TestExportProductsCSV(t *testing.T) {
	f := newFixture(t)
	seedReportData(t, f)
	svc := NewExportService(f.store, f.sales, f.products)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportProducts(context.Background(), &buf, DateRange{}))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "KIBBLE", records[1][1])
	assert.Equal(t, "100.00", records[1][6])

	to := fixedNow
	buf.Reset()
	require.NoError(t, svc.ExportProducts(context.Background(), &buf, DateRange{To: &to}))
	records, err = csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
