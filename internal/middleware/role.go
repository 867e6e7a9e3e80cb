package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainUser "shipment-tracker/internal/domain/user"
	"shipment-tracker/pkg/utils"
)

// RequireRoles lets the request through only when the authenticated user
// holds one of allowedRoles. It must run after AuthMiddleware.
func RequireRoles(allowedRoles ...domainUser.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if user.Role == allowedRole {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, "Not authorized to perform this action")
		c.Abort()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRoles(domainUser.RoleAdmin)
}

func CustomerOrAdmin() gin.HandlerFunc {
	return RequireRoles(domainUser.RoleCustomer, domainUser.RoleAdmin)
}
