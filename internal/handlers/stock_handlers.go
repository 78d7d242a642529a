package handlers

import (
	"net/http"

	"petpos_backend/internal/repositories"
	"petpos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// StockHandler serves per-branch inventory.
type StockHandler struct {
	stockService services.StockService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(ss services.StockService) *StockHandler {
	return &StockHandler{stockService: ss}
}

func (h *StockHandler) CreateStock(c *gin.Context) {
	var req services.CreateStockRequest
	if !bindJSON(c, &req, "CreateStock") {
		return
	}
	stock, err := h.stockService.CreateStock(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondServiceError(c, err, "CreateStock", "Failed to create stock record.")
		return
	}
	c.JSON(http.StatusCreated, stock)
}

func (h *StockHandler) AdjustStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.AdjustStockRequest
	if !bindJSON(c, &req, "AdjustStock") {
		return
	}
	stock, err := h.stockService.AdjustStock(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondServiceError(c, err, "AdjustStock", "Failed to adjust stock.")
		return
	}
	c.JSON(http.StatusOK, stock)
}

func (h *StockHandler) GetStock(c *gin.Context) {
	productID, ok := queryInt64(c, "product_id")
	if !ok {
		return
	}
	branchID, ok := queryInt64(c, "branch_id")
	if !ok {
		return
	}
	rows, err := h.stockService.ListStock(c.Request.Context(), repositories.StockFilter{ProductID: productID, BranchID: branchID})
	if err != nil {
		respondServiceError(c, err, "GetStock", "Failed to fetch stock.")
		return
	}
	respondPage(c, rows)
}

func (h *StockHandler) GetLowStock(c *gin.Context) {
	branchID, ok := queryInt64(c, "branch_id")
	if !ok {
		return
	}
	items, err := h.stockService.LowStock(c.Request.Context(), branchID)
	if err != nil {
		respondServiceError(c, err, "GetLowStock", "Failed to fetch low stock.")
		return
	}
	respondPage(c, items)
}

func (h *StockHandler) GetMovements(c *gin.Context) {
	productID, ok := queryInt64(c, "product_id")
	if !ok {
		return
	}
	branchID, ok := queryInt64(c, "branch_id")
	if !ok {
		return
	}
	movements, err := h.stockService.ListMovements(c.Request.Context(), repositories.StockMovementFilter{
		ProductID:    productID,
		BranchID:     branchID,
		MovementType: queryString(c, "movement_type"),
	})
	if err != nil {
		respondServiceError(c, err, "GetMovements", "Failed to fetch stock movements.")
		return
	}
	respondPage(c, movements)
}
