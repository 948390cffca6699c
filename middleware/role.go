package middleware

import (
	"net/http"

	"wellbook/utils"

	"github.com/gin-gonic/gin"
)

// RequireRoles lets the request through only when the authenticated role is
// one of roles. It must run after JWTAuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role := c.GetString(RoleKey)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Unauthorized"})
			return
		}
		if !allowed[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Error: "Forbidden", Message: "role " + role + " cannot access this resource"})
			return
		}
		c.Next()
	}
}
