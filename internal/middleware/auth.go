package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carrental-backend/internal/models"
	"carrental-backend/pkg/utils"
)

const (
	CtxUserID    = "userID"
	CtxRoleID    = "roleID"
	CtxRequestID = "requestID"
)

// AuthMiddleware accepts "Bearer <jwt>" and stores the user and role ids in
// the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortResponse(c, http.StatusUnauthorized, "missing token")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.AbortResponse(c, http.StatusUnauthorized, "malformed authorization header")
			return
		}

		userID, roleID, err := utils.ValidateToken(secret, parts[1])
		if err != nil {
			utils.AbortResponse(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxRoleID, roleID)
		c.Next()
	}
}

// StaffOnly lets admins and staff through.
func StaffOnly() gin.HandlerFunc {
	return requireRole("staff only", models.RoleAdmin, models.RoleStaff)
}

func AdminOnly() gin.HandlerFunc {
	return requireRole("admin only", models.RoleAdmin)
}

func requireRole(message string, allowed ...uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetUint(CtxRoleID)
		for _, r := range allowed {
			if role == r {
				c.Next()
				return
			}
		}
		utils.AbortResponse(c, http.StatusForbidden, "access denied: "+message)
	}
}
