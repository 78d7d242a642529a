package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/events"
	"petpos_backend/internal/models"
	"petpos_backend/internal/repositories"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// recordingPublisher keeps every event it is given.
type recordingPublisher struct {
	events.NopPublisher
	mu     sync.Mutex
	sales  []events.SaleCompletedEvent
	orders []events.OnlineOrderPlacedEvent
}

func (p *recordingPublisher) PublishSaleCompleted(_ context.Context, e events.SaleCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sales = append(p.sales, e)
	return nil
}

func (p *recordingPublisher) PublishOnlineOrderPlaced(_ context.Context, e events.OnlineOrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, e)
	return nil
}

type fixture struct {
	store     *docstore.MemoryStore
	counters  repositories.CounterRepository
	users     repositories.UserRepository
	branches  repositories.BranchRepository
	products  repositories.ProductRepository
	stock     repositories.StockRepository
	movements repositories.StockMovementRepository
	customers repositories.CustomerRepository
	sales     repositories.SaleRepository
	orders    repositories.OnlineOrderRepository
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := docstore.NewMemoryStore(docstore.WithMaxAttempts(64))
	return &fixture{
		store:     store,
		counters:  repositories.NewCounterRepository(store, nil),
		users:     repositories.NewUserRepository(),
		branches:  repositories.NewBranchRepository(),
		products:  repositories.NewProductRepository(),
		stock:     repositories.NewStockRepository(),
		movements: repositories.NewStockMovementRepository(),
		customers: repositories.NewCustomerRepository(),
		sales:     repositories.NewSaleRepository(),
		orders:    repositories.NewOnlineOrderRepository(),
		publisher: &recordingPublisher{},
	}
}

func (f *fixture) saleService() *saleService {
	svc := NewSaleService(f.store, f.counters, f.sales, f.stock, f.movements, f.customers, f.branches, f.publisher, nil).(*saleService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func (f *fixture) seedBranch(t *testing.T, id int64) {
	t.Helper()
	require.NoError(t, f.branches.Create(context.Background(), f.store, &models.Branch{ID: id, Name: "Branch", Code: "B" + string(rune('0'+id)), IsActive: true}))
}

func (f *fixture) seedStock(t *testing.T, id, productID, branchID, qty int64) {
	t.Helper()
	require.NoError(t, f.stock.Create(context.Background(), f.store, &models.Stock{ID: id, ProductID: productID, BranchID: branchID, Quantity: qty}))
}

func (f *fixture) seedCustomer(t *testing.T, id int64) {
	t.Helper()
	require.NoError(t, f.customers.Create(context.Background(), f.store, &models.Customer{
		ID: id, Name: "Ann", Phone: "555000" + string(rune('0'+id)), CustomerType: models.CustomerRetail, IsActive: true,
	}))
}

func (f *fixture) seedProduct(t *testing.T, p models.Product) {
	t.Helper()
	require.NoError(t, f.products.Create(context.Background(), f.store, &p))
}

func int64Ptr(v int64) *int64 { return &v }
