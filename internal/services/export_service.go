package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
	"petpos_backend/internal/repositories"
)

// DateRange bounds an export. From is inclusive, To exclusive; nil is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (r DateRange) contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && !t.Before(*r.To) {
		return false
	}
	return true
}

// ExportService writes CSV reports.
type ExportService interface {
	ExportSales(ctx context.Context, w io.Writer, branchID *int64, period DateRange) error
	ExportProducts(ctx context.Context, w io.Writer, period DateRange) error
}

type exportService struct {
	store    docstore.Store
	sales    repositories.SaleRepository
	products repositories.ProductRepository
}

// NewExportService creates a new instance of ExportService.
func NewExportService(store docstore.Store, sales repositories.SaleRepository, products repositories.ProductRepository) ExportService {
	return &exportService{store: store, sales: sales, products: products}
}

var salesCSVHeader = []string{
	"id", "invoice_number", "branch_id", "cashier_id", "customer_id", "subtotal", "gst_amount",
	"discount", "grand_total", "payment_method", "payment_status", "status", "created_at",
}

var productsCSVHeader = []string{
	"id", "sku", "barcode", "name", "category_id", "mrp", "selling_price", "purchase_price",
	"gst_rate", "min_stock", "unit", "is_active", "created_at",
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func optionalID(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// ExportSales writes sales oldest first.
func (s *exportService) ExportSales(ctx context.Context, w io.Writer, branchID *int64, period DateRange) error {
	sales, err := s.sales.List(ctx, s.store, repositories.SaleFilter{BranchID: branchID, From: period.From, To: period.To})
	if err != nil {
		return fmt.Errorf("failed to load sales: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(salesCSVHeader); err != nil {
		return err
	}
	sort.SliceStable(sales, func(i, j int) bool {
		if !sales[i].CreatedAt.Equal(sales[j].CreatedAt) {
			return sales[i].CreatedAt.Before(sales[j].CreatedAt)
		}
		return sales[i].ID < sales[j].ID
	})
	for _, sale := range sales {
		if err := cw.Write(saleRecord(sale)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportProducts writes products created within period.
func (s *exportService) ExportProducts(ctx context.Context, w io.Writer, period DateRange) error {
	products, err := s.products.List(ctx, s.store, repositories.ProductFilter{})
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(productsCSVHeader); err != nil {
		return err
	}
	for _, p := range products {
		if !period.contains(p.CreatedAt) {
			continue
		}
		if err := cw.Write(productRecord(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func saleRecord(sale models.Sale) []string {
	return []string{
		strconv.FormatInt(sale.ID, 10),
		sale.InvoiceNumber,
		strconv.FormatInt(sale.BranchID, 10),
		strconv.FormatInt(sale.CashierID, 10),
		optionalID(sale.CustomerID),
		money(sale.Subtotal),
		money(sale.GSTAmount),
		money(sale.Discount),
		money(sale.GrandTotal),
		sale.PaymentMethod,
		sale.PaymentStatus,
		sale.Status,
		sale.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func productRecord(p models.Product) []string {
	barcode := ""
	if p.Barcode != nil {
		barcode = *p.Barcode
	}
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.SKU,
		barcode,
		p.Name,
		optionalID(p.CategoryID),
		money(p.MRP),
		money(p.SellingPrice),
		money(p.PurchasePrice),
		strconv.FormatFloat(p.GSTRate, 'f', -1, 64),
		strconv.FormatInt(p.MinStock, 10),
		p.Unit,
		strconv.FormatBool(p.IsActive),
		p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
