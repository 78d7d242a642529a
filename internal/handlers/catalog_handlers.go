package handlers

import (
	"net/http"

	"petpos_backend/internal/repositories"
	"petpos_backend/internal/services"
	"petpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves products and categories.
type CatalogHandler struct {
	catalogService services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cs services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs}
}

// Category handlers

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req services.CategoryRequest
	if !bindJSON(c, &req, "CreateCategory") {
		return
	}
	category, err := h.catalogService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateCategory", "Failed to create category.")
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "GetCategories", "Failed to fetch categories.")
		return
	}
	respondPage(c, categories)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.CategoryRequest
	if !bindJSON(c, &req, "UpdateCategory") {
		return
	}
	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateCategory", "Failed to update category.")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteCategory", "Failed to delete category.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// Product handlers

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req services.ProductRequest
	if !bindJSON(c, &req, "CreateProduct") {
		return
	}
	product, err := h.catalogService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateProduct", "Failed to create product.")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProducts lists products filtered by category_id, search and active.
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	h.listProducts(c, c.Query("active") == "true")
}

// GetStoreProducts is the public storefront listing; it only shows active products.
func (h *CatalogHandler) GetStoreProducts(c *gin.Context) {
	h.listProducts(c, true)
}

func (h *CatalogHandler) listProducts(c *gin.Context, activeOnly bool) {
	categoryID, ok := queryInt64(c, "category_id")
	if !ok {
		return
	}
	products, err := h.catalogService.ListProducts(c.Request.Context(), repositories.ProductFilter{
		CategoryID: categoryID,
		ActiveOnly: activeOnly,
		Search:     c.Query("search"),
	})
	if err != nil {
		respondServiceError(c, err, "GetProducts", "Failed to fetch products.")
		return
	}
	respondPage(c, products)
}

func (h *CatalogHandler) GetProductByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetProductByID", "Failed to fetch product.")
		return
	}
	c.JSON(http.StatusOK, product)
}

// LookupProduct resolves a scanned code (SKU or barcode).
func (h *CatalogHandler) LookupProduct(c *gin.Context) {
	code := c.Query("code")
	if utils.IsEmpty(code) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Query parameter code is required.", ""))
		return
	}
	product, err := h.catalogService.LookupProduct(c.Request.Context(), code)
	if err != nil {
		respondServiceError(c, err, "LookupProduct", "Failed to look up product.")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.ProductRequest
	if !bindJSON(c, &req, "UpdateProduct") {
		return
	}
	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateProduct", "Failed to update product.")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteProduct", "Failed to delete product.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
