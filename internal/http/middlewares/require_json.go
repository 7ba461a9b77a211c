package middlewares

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects write requests whose Content-Type is not JSON.
// Parameters like charset are tolerated.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))

			if err != nil || mediaType != "application/json" {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"error": gin.H{
						"code":    "unsupported_media_type",
						"message": "Content-Type must be application/json",
					},
				})
				return
			}
		}
		c.Next()
	}
}
