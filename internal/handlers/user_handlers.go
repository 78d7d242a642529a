package handlers

import (
	"net/http"

	"petpos_backend/internal/repositories"
	"petpos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// UserHandler manages staff accounts.
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us services.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if !bindJSON(c, &req, "CreateUser") {
		return
	}
	user, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateUser", "Failed to create user.")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUsers lists staff, optionally filtered by role and branch_id.
func (h *UserHandler) GetUsers(c *gin.Context) {
	branchID, ok := queryInt64(c, "branch_id")
	if !ok {
		return
	}
	users, err := h.userService.ListUsers(c.Request.Context(), repositories.UserFilter{
		Role:     queryString(c, "role"),
		BranchID: branchID,
	})
	if err != nil {
		respondServiceError(c, err, "GetUsers", "Failed to fetch users.")
		return
	}
	respondPage(c, users)
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetUserByID", "Failed to fetch user.")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateUserRequest
	if !bindJSON(c, &req, "UpdateUser") {
		return
	}
	user, err := h.userService.UpdateUser(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateUser", "Failed to update user.")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(c.Request.Context(), actorFrom(c), id); err != nil {
		respondServiceError(c, err, "DeleteUser", "Failed to delete user.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
