package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/souqops/marketplace-admin/src/middleware"
	"github.com/souqops/marketplace-admin/src/services"
)

// AuthHandler handles admin session lifecycle
type AuthHandler struct {
	adminService *services.AdminService
	auth         *middleware.Authenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(adminService *services.AdminService, auth *middleware.Authenticator) *AuthHandler {
	return &AuthHandler{
		adminService: adminService,
		auth:         auth,
	}
}

// LoginRequest represents the request body for admin login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response for successful login
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// HandleLogin authenticates an admin and returns a session token. Failures
// share one generic shape: the caller cannot tell an unknown username from a
// wrong password, a disabled account, or a blocked source.
func (ah *AuthHandler) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	admin, err := ah.adminService.Authenticate(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrStoreUnavailable) {
			log.Error().Err(err).Msg("login unavailable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	token, expiresAt, err := ah.auth.Issue(admin.ID, admin.Username, admin.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to issue session token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		Username:  admin.Username,
		Role:      admin.Role,
	})
}

// HandleLogout revokes the current session token's jti so it cannot be
// replayed before its natural expiry
func (ah *AuthHandler) HandleLogout(c *gin.Context) {
	// Middleware already verified the token; re-verify to get claims for revocation
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 {
		if claims, err := ah.auth.Verify(authHeader[7:]); err == nil {
			ah.auth.Revoke(claims)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// HandleMe returns the identity carried by the verified session token
func (ah *AuthHandler) HandleMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"admin_id": c.GetString(middleware.ContextAdminID),
		"username": c.GetString(middleware.ContextUsername),
		"role":     c.GetString(middleware.ContextRole),
	})
}
