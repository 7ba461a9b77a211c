package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole gates a route on the token's role claim. A valid token
// missing the role is forbidden, not unauthorized.
func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, ok := RolesFromContext(c)

		if !ok || len(roles) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		for _, role := range roles {
			if role == required {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": gin.H{
				"code":    "forbidden",
				"message": required + " role required",
			},
		})
	}
}
