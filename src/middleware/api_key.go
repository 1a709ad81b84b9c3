package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the static secondary secret on every privileged request
const APIKeyHeader = "X-API-Key"

// APIKeyGate validates the static API key header. It is a second factor
// layered on top of the session token: a valid token without the key is
// rejected, and vice versa. The comparison is constant-time.
type APIKeyGate struct {
	key []byte
}

// NewAPIKeyGate creates a gate for the configured secret
func NewAPIKeyGate(key string) *APIKeyGate {
	return &APIKeyGate{key: []byte(key)}
}

// Check reports whether the provided key matches the configured secret
func (g *APIKeyGate) Check(provided string) bool {
	return subtle.ConstantTimeCompare(g.key, []byte(provided)) == 1
}

// Middleware rejects requests that do not carry the correct API key header
func (g *APIKeyGate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.Check(c.GetHeader(APIKeyHeader)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}
