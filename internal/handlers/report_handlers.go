package handlers

import (
	"fmt"
	"net/http"
	"time"

	"petpos_backend/internal/services"
	"petpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the dashboard and CSV exports.
type ReportHandler struct {
	dashboardService services.DashboardService
	exportService    services.ExportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(ds services.DashboardService, es services.ExportService) *ReportHandler {
	return &ReportHandler{dashboardService: ds, exportService: es}
}

// GetDashboardSummary provides a summary of key metrics for the dashboard.
func (h *ReportHandler) GetDashboardSummary(c *gin.Context) {
	branchID, ok := queryInt64(c, "branch_id")
	if !ok {
		return
	}
	summary, err := h.dashboardService.Summary(c.Request.Context(), branchID)
	if err != nil {
		respondServiceError(c, err, "GetDashboardSummary", "Failed to build dashboard summary.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func csvHeaders(c *gin.Context, name string) {
	filename := fmt.Sprintf("%s-%s.csv", name, time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)
}

// ExportSales streams sales as CSV. Filters: branch_id, from, to.
func (h *ReportHandler) ExportSales(c *gin.Context) {
	branchID, ok := queryInt64(c, "branch_id")
	if !ok {
		return
	}
	period, ok := dateRange(c)
	if !ok {
		return
	}
	csvHeaders(c, "sales")
	if err := h.exportService.ExportSales(c.Request.Context(), c.Writer, branchID, period); err != nil {
		// Headers may already be flushed; the error can only be logged.
		utils.LogError(err, "ExportSales: failed to write CSV")
		_ = c.Error(err)
	}
}

// ExportProducts streams the catalog as CSV. Filters: from, to on created_at.
func (h *ReportHandler) ExportProducts(c *gin.Context) {
	period, ok := dateRange(c)
	if !ok {
		return
	}
	csvHeaders(c, "products")
	if err := h.exportService.ExportProducts(c.Request.Context(), c.Writer, period); err != nil {
		utils.LogError(err, "ExportProducts: failed to write CSV")
		_ = c.Error(err)
	}
}
