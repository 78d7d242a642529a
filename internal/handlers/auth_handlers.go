package handlers

import (
	"net/http"

	"petpos_backend/internal/middleware"
	"petpos_backend/internal/services"
	"petpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the staff authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// LoginUser handles staff login.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req, "LoginUser") {
		return
	}

	authResp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "LoginUser", "Failed to login.")
		return
	}
	c.JSON(http.StatusOK, authResp)
}

// GetCurrentUser returns the user loaded by AuthMiddleware.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, ok := c.Get(middleware.ContextCurrentUser)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}
	c.JSON(http.StatusOK, user)
}

// LogoutUser revokes the presented token.
func (h *AuthHandler) LogoutUser(c *gin.Context) {
	claims, _ := c.Get(middleware.ContextClaims)
	tokenClaims, _ := claims.(*utils.Claims)
	if err := h.authService.Logout(c.Request.Context(), tokenClaims); err != nil {
		respondServiceError(c, err, "LogoutUser", "Failed to logout.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
