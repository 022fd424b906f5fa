package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"renewtrack.com/renewtrack/security"
	"renewtrack.com/renewtrack/web/common"
)

const UsernameKey = "username"

// Authentication checks for a valid Bearer token and records the caller's
// username so handlers can attribute writes to an acting principal.
func Authentication(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Try to get from cookie
			cookie, err := c.Cookie("renewtrack.ApplicationCookie")
			if err != nil {
				// Cookie not found either
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			tokenStr = parts[1]
		}

		claims, err := security.ParseIdentityToken(tokenStr, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

// Username returns the authenticated caller, or empty on unauthenticated routes.
func Username(c *gin.Context) string {
	if v, ok := c.Get(UsernameKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
