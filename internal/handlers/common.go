package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/middleware"
	"petpos_backend/internal/repositories"
	"petpos_backend/internal/services"
	"petpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
	dateLayout      = "2006-01-02"
)

// parseID reads a positive int64 path parameter. It writes the 400 response itself.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", c.Param(name)))
		return 0, false
	}
	return id, true
}

// queryInt64 reads an optional int64 query parameter.
func queryInt64(c *gin.Context, name string) (*int64, bool) {
	v, err := utils.OptionalInt64(c.Query(name))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" query parameter.", c.Query(name)))
		return nil, false
	}
	return v, true
}

// queryString returns nil for a missing or empty query parameter.
func queryString(c *gin.Context, name string) *string {
	if v := c.Query(name); v != "" {
		return &v
	}
	return nil
}

// dateRange reads from/to as YYYY-MM-DD in UTC. To is inclusive of the whole day.
func dateRange(c *gin.Context) (services.DateRange, bool) {
	var r services.DateRange
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid from date. Use YYYY-MM-DD.", raw))
			return r, false
		}
		r.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid to date. Use YYYY-MM-DD.", raw))
			return r, false
		}
		to = to.AddDate(0, 0, 1)
		r.To = &to
	}
	return r, true
}

// respondPage slices items and writes the paginated envelope.
func respondPage[T any](c *gin.Context, items []T) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	data, total := repositories.Paginate(items, page, pageSize)
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      data,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// bindJSON binds the request body, answering 400 on failure.
func bindJSON(c *gin.Context, req interface{}, op string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.LogError(err, op+": Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return false
	}
	return true
}

// actorFrom builds the acting staff member from values set by AuthMiddleware.
func actorFrom(c *gin.Context) services.Actor {
	actor := services.Actor{
		UserID:   c.GetInt64(middleware.ContextUserID),
		Username: c.GetString(middleware.ContextUsername),
		Role:     c.GetString(middleware.ContextUserRole),
	}
	if v, ok := c.Get(middleware.ContextBranchID); ok {
		if branchID, ok := v.(int64); ok {
			actor.BranchID = &branchID
		}
	}
	return actor
}

var notFoundErrors = []error{
	services.ErrUserNotFound,
	services.ErrBranchNotFound,
	services.ErrCategoryNotFound,
	services.ErrProductNotFound,
	services.ErrStockNotFound,
	services.ErrCustomerNotFound,
	services.ErrSupplierNotFound,
	services.ErrSaleNotFound,
	services.ErrOrderNotFound,
}

var conflictErrors = []error{
	services.ErrUsernameExists,
	services.ErrBranchCodeExists,
	services.ErrSKUExists,
	services.ErrBarcodeExists,
	services.ErrPhoneExists,
	services.ErrInvalidStatusTransition,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondServiceError maps a service error onto the API error envelope.
// Store failures never leak their message to the client.
func respondServiceError(c *gin.Context, err error, op, failure string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondValidationFailed(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid credentials.", ""))
	case errors.Is(err, services.ErrUnauthenticated):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", ""))
	case isAny(err, notFoundErrors):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, capitalize(err.Error())+".", ""))
	case isAny(err, conflictErrors):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, capitalize(err.Error())+".", ""))
	case errors.Is(err, docstore.ErrTxConflict):
		utils.LogWarn(op+": transaction kept conflicting", map[string]interface{}{"error": err.Error()})
		utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeServiceUnavailable, "The store is busy, please retry.", ""))
	default:
		utils.LogError(err, op+": unexpected error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, failure, "Internal error"))
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
