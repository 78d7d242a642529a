package router

import (
	"petpos_backend/internal/handlers"
	"petpos_backend/internal/middleware"
	"petpos_backend/internal/models"
	"petpos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

var (
	adminOnly      = middleware.RoleAuthMiddleware(models.RoleAdmin)
	adminOrManager = middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager)
)

// SetupUserRoutes sets up the staff account routes.
func SetupUserRoutes(authenticatedGroup *gin.RouterGroup, userHandler *handlers.UserHandler) {
	userRoutes := authenticatedGroup.Group("/users")
	userRoutes.Use(adminOnly)
	{
		userRoutes.POST("", userHandler.CreateUser)
		userRoutes.GET("", userHandler.GetUsers)
		userRoutes.GET("/:id", userHandler.GetUserByID)
		userRoutes.PUT("/:id", userHandler.UpdateUser)
		userRoutes.DELETE("/:id", userHandler.DeleteUser)
	}
}

// SetupBranchRoutes sets up the branch routes.
func SetupBranchRoutes(authenticatedGroup *gin.RouterGroup, branchHandler *handlers.BranchHandler) {
	branchRoutes := authenticatedGroup.Group("/branches")
	{
		branchRoutes.GET("", branchHandler.GetBranches)
		branchRoutes.GET("/:id", branchHandler.GetBranchByID)
		branchRoutes.POST("", adminOnly, branchHandler.CreateBranch)
		branchRoutes.PUT("/:id", adminOnly, branchHandler.UpdateBranch)
		branchRoutes.DELETE("/:id", adminOnly, branchHandler.DeleteBranch)
	}
}

// SetupCategoryRoutes sets up the product category routes.
func SetupCategoryRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	categoryRoutes := authenticatedGroup.Group("/categories")
	{
		categoryRoutes.GET("", catalogHandler.GetCategories)
		categoryRoutes.POST("", adminOrManager, catalogHandler.CreateCategory)
		categoryRoutes.PUT("/:id", adminOrManager, catalogHandler.UpdateCategory)
		categoryRoutes.DELETE("/:id", adminOrManager, catalogHandler.DeleteCategory)
	}
}

// SetupProductRoutes sets up the product routes.
func SetupProductRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	productRoutes := authenticatedGroup.Group("/products")
	{
		productRoutes.GET("", catalogHandler.GetProducts)
		productRoutes.GET("/lookup", catalogHandler.LookupProduct)
		productRoutes.GET("/:id", catalogHandler.GetProductByID)
		productRoutes.POST("", adminOrManager, catalogHandler.CreateProduct)
		productRoutes.PUT("/:id", adminOrManager, catalogHandler.UpdateProduct)
		productRoutes.DELETE("/:id", adminOrManager, catalogHandler.DeleteProduct)
	}
}

// SetupStockRoutes sets up the inventory routes.
func SetupStockRoutes(authenticatedGroup *gin.RouterGroup, stockHandler *handlers.StockHandler) {
	stockRoutes := authenticatedGroup.Group("/stock")
	{
		stockRoutes.GET("", stockHandler.GetStock)
		stockRoutes.GET("/low", stockHandler.GetLowStock)
		stockRoutes.GET("/movements", stockHandler.GetMovements)
		stockRoutes.POST("", adminOrManager, stockHandler.CreateStock)
		stockRoutes.PATCH("/:id/adjust", adminOrManager, stockHandler.AdjustStock)
	}
}

// SetupCustomerRoutes sets up the customer routes.
func SetupCustomerRoutes(authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customerRoutes := authenticatedGroup.Group("/customers")
	{
		customerRoutes.GET("", customerHandler.GetCustomers)
		customerRoutes.GET("/:id", customerHandler.GetCustomerByID)
		customerRoutes.POST("", customerHandler.CreateCustomer)
		customerRoutes.PUT("/:id", adminOrManager, customerHandler.UpdateCustomer)
		customerRoutes.DELETE("/:id", adminOrManager, customerHandler.DeleteCustomer)
	}
}

// SetupSupplierRoutes sets up the supplier routes.
func SetupSupplierRoutes(authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	supplierRoutes := authenticatedGroup.Group("/suppliers")
	{
		supplierRoutes.GET("", customerHandler.GetSuppliers)
		supplierRoutes.GET("/:id", customerHandler.GetSupplierByID)
		supplierRoutes.POST("", adminOrManager, customerHandler.CreateSupplier)
		supplierRoutes.PUT("/:id", adminOrManager, customerHandler.UpdateSupplier)
		supplierRoutes.DELETE("/:id", adminOrManager, customerHandler.DeleteSupplier)
	}
}

// SetupSaleRoutes sets up the POS sale routes.
func SetupSaleRoutes(authenticatedGroup *gin.RouterGroup, saleHandler *handlers.SaleHandler) {
	saleRoutes := authenticatedGroup.Group("/sales")
	{
		saleRoutes.POST("", saleHandler.CreateSale)
		saleRoutes.GET("", saleHandler.GetSales)
		saleRoutes.GET("/:id", saleHandler.GetSaleByID)
		saleRoutes.PATCH("/:id/status", adminOrManager, saleHandler.UpdateSaleStatus)
	}
}

// SetupOnlineOrderRoutes sets up the staff view of storefront orders.
func SetupOnlineOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OnlineOrderHandler) {
	orderRoutes := authenticatedGroup.Group("/online-orders")
	{
		orderRoutes.GET("", orderHandler.GetOnlineOrders)
		orderRoutes.GET("/:id", orderHandler.GetOnlineOrderByID)
		orderRoutes.PATCH("/:id/status", orderHandler.UpdateOnlineOrderStatus)
	}
}

// SetupReportRoutes sets up the dashboard and export routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	authenticatedGroup.GET("/dashboard/summary", reportHandler.GetDashboardSummary)

	exportRoutes := authenticatedGroup.Group("/exports")
	exportRoutes.Use(adminOrManager)
	{
		exportRoutes.GET("/sales.csv", reportHandler.ExportSales)
		exportRoutes.GET("/products.csv", reportHandler.ExportProducts)
	}
}

// SetupStorefrontRoutes sets up the customer-facing routes.
func SetupStorefrontRoutes(storeGroup *gin.RouterGroup, storefrontHandler *handlers.StorefrontHandler,
	catalogHandler *handlers.CatalogHandler, customerAuth services.CustomerAuthService) {
	storeGroup.POST("/auth/register", storefrontHandler.Register)
	storeGroup.POST("/auth/login", storefrontHandler.Login)
	storeGroup.GET("/products", catalogHandler.GetStoreProducts)

	customerRoutes := storeGroup.Group("")
	customerRoutes.Use(middleware.CustomerAuthMiddleware(customerAuth))
	{
		customerRoutes.GET("/me", storefrontHandler.Me)
		customerRoutes.POST("/auth/logout", storefrontHandler.Logout)
		customerRoutes.POST("/orders", storefrontHandler.PlaceOrder)
		customerRoutes.GET("/orders", storefrontHandler.GetMyOrders)
		customerRoutes.GET("/orders/:id", storefrontHandler.GetMyOrder)
	}
}
