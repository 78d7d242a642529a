package handlers

import (
	"net/http"

	"petpos_backend/internal/repositories"
	"petpos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// CustomerHandler holds the customer and supplier services.
type CustomerHandler struct {
	customerService services.CustomerService
	supplierService services.SupplierService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(cs services.CustomerService, ss services.SupplierService) *CustomerHandler {
	return &CustomerHandler{customerService: cs, supplierService: ss}
}

// CreateCustomer handles the creation of a new customer.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req services.CreateCustomerRequest
	if !bindJSON(c, &req, "CreateCustomer") {
		return
	}
	customer, err := h.customerService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateCustomer", "Failed to create customer.")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GetCustomers handles fetching customers with pagination and search.
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	customers, err := h.customerService.ListCustomers(c.Request.Context(), repositories.CustomerFilter{
		CustomerType: queryString(c, "customer_type"),
		Search:       c.Query("search"),
	})
	if err != nil {
		respondServiceError(c, err, "GetCustomers", "Failed to fetch customers.")
		return
	}
	respondPage(c, customers)
}

func (h *CustomerHandler) GetCustomerByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetCustomerByID", "Failed to fetch customer.")
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateCustomerRequest
	if !bindJSON(c, &req, "UpdateCustomer") {
		return
	}
	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateCustomer", "Failed to update customer.")
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteCustomer", "Failed to delete customer.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

// Supplier handlers

func (h *CustomerHandler) CreateSupplier(c *gin.Context) {
	var req services.SupplierRequest
	if !bindJSON(c, &req, "CreateSupplier") {
		return
	}
	supplier, err := h.supplierService.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateSupplier", "Failed to create supplier.")
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func (h *CustomerHandler) GetSuppliers(c *gin.Context) {
	suppliers, err := h.supplierService.ListSuppliers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "GetSuppliers", "Failed to fetch suppliers.")
		return
	}
	respondPage(c, suppliers)
}

func (h *CustomerHandler) GetSupplierByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	supplier, err := h.supplierService.GetSupplier(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetSupplierByID", "Failed to fetch supplier.")
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (h *CustomerHandler) UpdateSupplier(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.SupplierRequest
	if !bindJSON(c, &req, "UpdateSupplier") {
		return
	}
	supplier, err := h.supplierService.UpdateSupplier(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateSupplier", "Failed to update supplier.")
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (h *CustomerHandler) DeleteSupplier(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.supplierService.DeleteSupplier(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteSupplier", "Failed to delete supplier.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully"})
}
