package router

import (
	"petpos_backend/internal/config"
	"petpos_backend/internal/docstore"
	"petpos_backend/internal/events"
	"petpos_backend/internal/metrics"
	"petpos_backend/internal/repositories"
	"petpos_backend/internal/revocation"
	"petpos_backend/internal/services"
)

// NewServices wires repositories and services over one store. m may be nil.
func NewServices(cfg *config.Config, store docstore.Store, revoked revocation.List, publisher events.Publisher, m *metrics.Metrics) Services {
	var (
		observeAllocation func(string)
		observeSale       services.SaleObserver
		observeOrder      func()
	)
	if m != nil {
		observeAllocation = m.ObserveAllocation
		observeSale = m.ObserveSale
		observeOrder = m.ObserveOrder
	}

	counters := repositories.NewCounterRepository(store, observeAllocation)
	users := repositories.NewUserRepository()
	branches := repositories.NewBranchRepository()
	products := repositories.NewProductRepository()
	stock := repositories.NewStockRepository()
	movements := repositories.NewStockMovementRepository()
	customers := repositories.NewCustomerRepository()
	suppliers := repositories.NewSupplierRepository()
	sales := repositories.NewSaleRepository()
	orders := repositories.NewOnlineOrderRepository()

	stockService := services.NewStockService(store, counters, stock, movements, products, branches)
	return Services{
		Auth:         services.NewAuthService(store, counters, users, revoked, cfg.StaffSecret, cfg.StaffTokenTTL),
		CustomerAuth: services.NewCustomerAuthService(store, counters, customers, revoked, cfg.CustomerSecret, cfg.CustomerTTL),
		Users:        services.NewUserService(store, counters, users, branches),
		Branches:     services.NewBranchService(store, counters, branches),
		Catalog:      services.NewCatalogService(store, counters, products),
		Stock:        stockService,
		Customers:    services.NewCustomerService(store, counters, customers, revoked, cfg.CustomerTTL),
		Suppliers:    services.NewSupplierService(store, counters, suppliers),
		Sales:        services.NewSaleService(store, counters, sales, stock, movements, customers, branches, publisher, observeSale),
		OnlineOrders: services.NewOnlineOrderService(store, counters, orders, products, customers, branches, publisher, observeOrder),
		Dashboard:    services.NewDashboardService(store, sales, orders, products, customers, stockService),
		Exports:      services.NewExportService(store, sales, products),
	}
}
