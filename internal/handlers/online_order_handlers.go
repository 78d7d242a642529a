package handlers

import (
	"net/http"

	"petpos_backend/internal/repositories"
	"petpos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// OnlineOrderHandler is the staff view of storefront orders.
type OnlineOrderHandler struct {
	orderService services.OnlineOrderService
}

// NewOnlineOrderHandler creates a new OnlineOrderHandler.
func NewOnlineOrderHandler(ors services.OnlineOrderService) *OnlineOrderHandler {
	return &OnlineOrderHandler{orderService: ors}
}

func (h *OnlineOrderHandler) GetOnlineOrders(c *gin.Context) {
	customerID, ok := queryInt64(c, "customer_id")
	if !ok {
		return
	}
	branchID, ok := queryInt64(c, "branch_id")
	if !ok {
		return
	}
	orders, err := h.orderService.ListOrders(c.Request.Context(), repositories.OnlineOrderFilter{
		CustomerID: customerID,
		BranchID:   branchID,
		Status:     queryString(c, "status"),
	})
	if err != nil {
		respondServiceError(c, err, "GetOnlineOrders", "Failed to fetch online orders.")
		return
	}
	respondPage(c, orders)
}

func (h *OnlineOrderHandler) GetOnlineOrderByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetOnlineOrderByID", "Failed to fetch online order.")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OnlineOrderHandler) UpdateOnlineOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateOrderStatusRequest
	if !bindJSON(c, &req, "UpdateOnlineOrderStatus") {
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateOnlineOrderStatus", "Failed to update online order status.")
		return
	}
	c.JSON(http.StatusOK, order)
}
