package handlers

import (
	"net/http"

	"petpos_backend/internal/repositories"
	"petpos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SaleHandler serves the POS sale workflow.
type SaleHandler struct {
	saleService services.SaleService
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(ss services.SaleService) *SaleHandler {
	return &SaleHandler{saleService: ss}
}

// CreateSale records a cart as a completed sale for the calling cashier.
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req services.CreateSaleRequest
	if !bindJSON(c, &req, "CreateSale") {
		return
	}
	sale, err := h.saleService.CreateSale(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondServiceError(c, err, "CreateSale", "Failed to create sale.")
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// GetSales lists sales newest first. from/to are YYYY-MM-DD.
func (h *SaleHandler) GetSales(c *gin.Context) {
	var filter repositories.SaleFilter
	var ok bool
	if filter.BranchID, ok = queryInt64(c, "branch_id"); !ok {
		return
	}
	if filter.CashierID, ok = queryInt64(c, "cashier_id"); !ok {
		return
	}
	if filter.CustomerID, ok = queryInt64(c, "customer_id"); !ok {
		return
	}
	period, ok := dateRange(c)
	if !ok {
		return
	}
	filter.From, filter.To = period.From, period.To
	filter.Status = queryString(c, "status")

	sales, err := h.saleService.ListSales(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err, "GetSales", "Failed to fetch sales.")
		return
	}
	respondPage(c, sales)
}

func (h *SaleHandler) GetSaleByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetSaleByID", "Failed to fetch sale.")
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) UpdateSaleStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateSaleStatusRequest
	if !bindJSON(c, &req, "UpdateSaleStatus") {
		return
	}
	sale, err := h.saleService.UpdateSaleStatus(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateSaleStatus", "Failed to update sale status.")
		return
	}
	c.JSON(http.StatusOK, sale)
}
