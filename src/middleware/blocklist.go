package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// IPBlocker answers blocklist membership checks. The check runs before any
// credential verification, so a blocked source learns nothing about whether
// its credentials would have been accepted.
type IPBlocker interface {
	IsBlocked(ip string) bool
}

// BlocklistMiddleware rejects requests from blocked source addresses with the
// same generic shape an invalid credential produces
func BlocklistMiddleware(blocker IPBlocker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if blocker.IsBlocked(c.ClientIP()) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
