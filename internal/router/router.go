package router

import (
	"net/http"

	"petpos_backend/internal/handlers"
	"petpos_backend/internal/middleware"
	"petpos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Services bundles what the route table needs.
type Services struct {
	Auth         services.AuthService
	CustomerAuth services.CustomerAuthService
	Users        services.UserService
	Branches     services.BranchService
	Catalog      services.CatalogService
	Stock        services.StockService
	Customers    services.CustomerService
	Suppliers    services.SupplierService
	Sales        services.SaleService
	OnlineOrders services.OnlineOrderService
	Dashboard    services.DashboardService
	Exports      services.ExportService
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, svc Services) {
	authHandler := handlers.NewAuthHandler(svc.Auth)
	userHandler := handlers.NewUserHandler(svc.Users)
	branchHandler := handlers.NewBranchHandler(svc.Branches)
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog)
	stockHandler := handlers.NewStockHandler(svc.Stock)
	customerHandler := handlers.NewCustomerHandler(svc.Customers, svc.Suppliers)
	saleHandler := handlers.NewSaleHandler(svc.Sales)
	onlineOrderHandler := handlers.NewOnlineOrderHandler(svc.OnlineOrders)
	reportHandler := handlers.NewReportHandler(svc.Dashboard, svc.Exports)
	storefrontHandler := handlers.NewStorefrontHandler(svc.CustomerAuth, svc.OnlineOrders)

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(svc.Auth))
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupUserRoutes(authenticated, userHandler)
		SetupBranchRoutes(authenticated, branchHandler)
		SetupCategoryRoutes(authenticated, catalogHandler)
		SetupProductRoutes(authenticated, catalogHandler)
		SetupStockRoutes(authenticated, stockHandler)
		SetupCustomerRoutes(authenticated, customerHandler)
		SetupSupplierRoutes(authenticated, customerHandler)
		SetupSaleRoutes(authenticated, saleHandler)
		SetupOnlineOrderRoutes(authenticated, onlineOrderHandler)
		SetupReportRoutes(authenticated, reportHandler)
	}

	SetupStorefrontRoutes(apiV1.Group("/store"), storefrontHandler, catalogHandler, svc.CustomerAuth)
}

func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.LoginUser)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/logout", authHandler.LogoutUser)
	group.GET("/me", authHandler.GetCurrentUser)
}
