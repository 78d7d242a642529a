package handlers

import (
	"net/http"

	"petpos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// BranchHandler manages store locations.
type BranchHandler struct {
	branchService services.BranchService
}

// NewBranchHandler creates a new BranchHandler.
func NewBranchHandler(bs services.BranchService) *BranchHandler {
	return &BranchHandler{branchService: bs}
}

func (h *BranchHandler) CreateBranch(c *gin.Context) {
	var req services.BranchRequest
	if !bindJSON(c, &req, "CreateBranch") {
		return
	}
	branch, err := h.branchService.CreateBranch(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateBranch", "Failed to create branch.")
		return
	}
	c.JSON(http.StatusCreated, branch)
}

func (h *BranchHandler) GetBranches(c *gin.Context) {
	branches, err := h.branchService.ListBranches(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "GetBranches", "Failed to fetch branches.")
		return
	}
	respondPage(c, branches)
}

func (h *BranchHandler) GetBranchByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	branch, err := h.branchService.GetBranch(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetBranchByID", "Failed to fetch branch.")
		return
	}
	c.JSON(http.StatusOK, branch)
}

func (h *BranchHandler) UpdateBranch(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.BranchRequest
	if !bindJSON(c, &req, "UpdateBranch") {
		return
	}
	branch, err := h.branchService.UpdateBranch(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateBranch", "Failed to update branch.")
		return
	}
	c.JSON(http.StatusOK, branch)
}

func (h *BranchHandler) DeleteBranch(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.branchService.DeleteBranch(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteBranch", "Failed to delete branch.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Branch deleted successfully"})
}
