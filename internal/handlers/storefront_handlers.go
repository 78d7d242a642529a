package handlers

import (
	"net/http"

	"petpos_backend/internal/middleware"
	"petpos_backend/internal/repositories"
	"petpos_backend/internal/services"
	"petpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StorefrontHandler serves customer-facing routes.
type StorefrontHandler struct {
	authService  services.CustomerAuthService
	orderService services.OnlineOrderService
}

// NewStorefrontHandler creates a new StorefrontHandler.
func NewStorefrontHandler(as services.CustomerAuthService, ors services.OnlineOrderService) *StorefrontHandler {
	return &StorefrontHandler{authService: as, orderService: ors}
}

func (h *StorefrontHandler) Register(c *gin.Context) {
	var req services.CustomerRegisterRequest
	if !bindJSON(c, &req, "Register") {
		return
	}
	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Register", "Failed to register.")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *StorefrontHandler) Login(c *gin.Context) {
	var req services.CustomerLoginRequest
	if !bindJSON(c, &req, "CustomerLogin") {
		return
	}
	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CustomerLogin", "Failed to login.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StorefrontHandler) Logout(c *gin.Context) {
	claims, _ := c.Get(middleware.ContextClaims)
	tokenClaims, _ := claims.(*utils.Claims)
	if err := h.authService.Logout(c.Request.Context(), tokenClaims); err != nil {
		respondServiceError(c, err, "CustomerLogout", "Failed to logout.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *StorefrontHandler) Me(c *gin.Context) {
	customer, err := h.authService.Me(c.Request.Context(), c.GetInt64(middleware.ContextCustomerID))
	if err != nil {
		respondServiceError(c, err, "CustomerMe", "Failed to fetch profile.")
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *StorefrontHandler) PlaceOrder(c *gin.Context) {
	var req services.PlaceOrderRequest
	if !bindJSON(c, &req, "PlaceOrder") {
		return
	}
	order, err := h.orderService.PlaceOrder(c.Request.Context(), c.GetInt64(middleware.ContextCustomerID), req)
	if err != nil {
		respondServiceError(c, err, "PlaceOrder", "Failed to place order.")
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *StorefrontHandler) GetMyOrders(c *gin.Context) {
	customerID := c.GetInt64(middleware.ContextCustomerID)
	orders, err := h.orderService.ListOrders(c.Request.Context(), repositories.OnlineOrderFilter{
		CustomerID: &customerID,
		Status:     queryString(c, "status"),
	})
	if err != nil {
		respondServiceError(c, err, "GetMyOrders", "Failed to fetch orders.")
		return
	}
	respondPage(c, orders)
}

func (h *StorefrontHandler) GetMyOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetCustomerOrder(c.Request.Context(), c.GetInt64(middleware.ContextCustomerID), id)
	if err != nil {
		respondServiceError(c, err, "GetMyOrder", "Failed to fetch order.")
		return
	}
	c.JSON(http.StatusOK, order)
}
