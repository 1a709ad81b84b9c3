package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/souqops/marketplace-admin/src/models"
)

// Context keys set by the auth middleware
const (
	ContextAdminID  = "admin_id"
	ContextUsername = "username"
	ContextRole     = "role"
	ContextTokenID  = "token_id"
)

// AdminClaims represents JWT claims for admin users
type AdminClaims struct {
	AdminID  string `json:"admin_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies admin session tokens. The signing secret
// is loaded once at startup and is never logged. Tokens are stateless; the
// revocation set only holds jtis revoked before their natural expiry, so the
// common verification path stays a pure signature check.
//
// Expiry comparison is strict: no clock-skew leeway is configured.
type Authenticator struct {
	secret []byte
	ttl    time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> token expiry
}

// NewAuthenticator creates an authenticator with the given signing secret and
// token lifetime. The secret must be at least 32 characters.
func NewAuthenticator(secret string, ttl time.Duration) (*Authenticator, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters long")
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Authenticator{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: make(map[string]time.Time),
	}, nil
}

// TTL returns the configured token lifetime
func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// Issue creates a signed session token for an admin
func (a *Authenticator) Issue(adminID uuid.UUID, username, role string) (token string, expiresAt time.Time, err error) {
	now := time.Now()
	expiresAt = now.Add(a.ttl)

	claims := AdminClaims{
		AdminID:  adminID.String(),
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "marketplace-admin",
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a session token, returning its claims
func (a *Authenticator) Verify(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if a.isRevoked(claims.ID) {
		return nil, fmt.Errorf("token has been revoked")
	}

	return claims, nil
}

// Revoke invalidates a token's jti until the token would have expired anyway.
// Logout uses this so a stolen token cannot outlive the session.
func (a *Authenticator) Revoke(claims *AdminClaims) {
	if claims == nil || claims.ID == "" {
		return
	}
	expiry := time.Now().Add(a.ttl)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.revoked[claims.ID] = expiry

	// Prune entries whose tokens have expired on their own
	now := time.Now()
	for jti, exp := range a.revoked {
		if now.After(exp) {
			delete(a.revoked, jti)
		}
	}
}

func (a *Authenticator) isRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	exp, ok := a.revoked[jti]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(a.revoked, jti)
		return false
	}
	return true
}

// Middleware checks for a valid bearer token and stores the admin identity in
// the request context for downstream handlers
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claims, err := a.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Set(ContextAdminID, claims.AdminID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextTokenID, claims.ID)
		c.Next()
	}
}

// RequireRole rejects requests whose verified token does not carry one of the
// allowed roles. Must run after Middleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	// super_admin passes every role check
	allowed[models.RoleSuperAdmin] = true

	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" || !allowed[role] {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentActor returns the authenticated admin username, or "system" when the
// request carries no verified identity
func CurrentActor(c *gin.Context) string {
	if username := c.GetString(ContextUsername); username != "" {
		return username
	}
	return models.SystemActor
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
