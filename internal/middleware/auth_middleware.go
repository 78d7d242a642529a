package middleware

import (
	"net/http"
	"strings"

	"petpos_backend/internal/services"
	"petpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID        = "userID"
	ContextUsername      = "username"
	ContextUserRole      = "userRole"
	ContextBranchID      = "branchID"
	ContextCurrentUser   = "currentUser"
	ContextClaims        = "claims"
	ContextCustomerID    = "customerID"
	ContextCustomerPhone = "customerPhone"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authorization header required", ""))
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid authorization header format. Use Bearer <token>", ""))
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware authenticates staff. The user is reloaded from the store on
// every request, so deactivated or deleted users are turned away at once.
func AuthMiddleware(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}

		user, claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.LoggerFromContext(c.Request.Context()).Warn().Err(err).Msg("Staff authentication failed")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token", ""))
			return
		}

		// Role and branch come from the stored user, not the token.
		c.Set(ContextUserID, user.ID)
		c.Set(ContextUsername, user.Username)
		c.Set(ContextUserRole, user.Role)
		if user.BranchID != nil {
			c.Set(ContextBranchID, *user.BranchID)
		}
		c.Set(ContextCurrentUser, user)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// CustomerAuthMiddleware authenticates storefront customers from token claims.
func CustomerAuthMiddleware(auth services.CustomerAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.LoggerFromContext(c.Request.Context()).Warn().Err(err).Msg("Customer authentication failed")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token", ""))
			return
		}

		c.Set(ContextCustomerID, claims.CustomerID)
		c.Set(ContextCustomerPhone, claims.Phone)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// RoleAuthMiddleware creates a Gin middleware for role-based authorization.
// It checks if the authenticated user's role is one of the allowed roles.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleStr := c.GetString(ContextUserRole)
		if roleStr == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required", ""))
			return
		}

		for _, r := range allowedRoles {
			if strings.EqualFold(roleStr, r) {
				c.Next()
				return
			}
		}

		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden,
			"You do not have permission to access this resource", "Required roles: "+strings.Join(allowedRoles, ", ")))
	}
}
