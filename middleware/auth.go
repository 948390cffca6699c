package middleware

import (
	"net/http"
	"strings"

	"wellbook/models"
	"wellbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	AccountIDKey = "accountID"
	RoleKey      = "role"
)

// JWTAuthMiddleware validates the bearer token and stores the caller's
// account ID and role on the context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Missing or invalid Authorization header"})
			return
		}

		accountID, role, err := utils.ExtractClaims(tokenString)
		if err != nil {
			zap.L().Debug("Rejected bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Invalid token"})
			return
		}

		switch role {
		case models.RolePatient, models.RoleProfessional, models.RoleAdmin:
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Invalid token", Message: "unknown role"})
			return
		}

		c.Set(AccountIDKey, accountID)
		c.Set(RoleKey, role)
		c.Next()
	}
}

// ActorFromContext returns the authenticated caller set by JWTAuthMiddleware.
func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	id := c.GetString(AccountIDKey)
	role := c.GetString(RoleKey)
	if id == "" || role == "" {
		return models.Actor{}, false
	}
	return models.Actor{ID: id, Role: role}, true
}
