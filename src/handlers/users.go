package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/souqops/marketplace-admin/src/middleware"
	"github.com/souqops/marketplace-admin/src/services"
)

// UsersHandler exposes marketplace user management and the upgrade-request queue
type UsersHandler struct {
	userService *services.UserService
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(userService *services.UserService) *UsersHandler {
	return &UsersHandler{userService: userService}
}

// HandleListUsers returns marketplace users, paginated
func (uh *UsersHandler) HandleListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := uh.userService.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateUserRequest represents the request body for a user update
type UpdateUserRequest struct {
	Role   string `json:"role" binding:"required"`
	Active *bool  `json:"active" binding:"required"`
}

// HandleUpdateUser changes a user's role or active flag
func (uh *UsersHandler) HandleUpdateUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req UpdateUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actor := middleware.CurrentActor(c)
	if err := uh.userService.UpdateUser(c.Request.Context(), userID, req.Role, *req.Active, actor); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error().Err(err).Msg("failed to update user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleDeleteUser removes a marketplace account
func (uh *UsersHandler) HandleDeleteUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	actor := middleware.CurrentActor(c)
	if err := uh.userService.DeleteUser(c.Request.Context(), userID, actor); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error().Err(err).Msg("failed to delete user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleListUpgradeRequests returns the upgrade-request queue for a status
func (uh *UsersHandler) HandleListUpgradeRequests(c *gin.Context) {
	status := c.DefaultQuery("status", "pending")

	requests, err := uh.userService.ListUpgradeRequests(c.Request.Context(), status)
	if err != nil {
		log.Error().Err(err).Msg("failed to list upgrade requests")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list upgrade requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// DecideUpgradeRequest represents the request body for an upgrade decision
type DecideUpgradeRequest struct {
	Approve bool `json:"approve"`
}

// HandleDecideUpgradeRequest approves or rejects a pending upgrade request
func (uh *UsersHandler) HandleDecideUpgradeRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var req DecideUpgradeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actor := middleware.CurrentActor(c)
	if err := uh.userService.DecideUpgradeRequest(c.Request.Context(), requestID, req.Approve, actor); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pending request not found"})
			return
		}
		log.Error().Err(err).Msg("failed to decide upgrade request")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to decide upgrade request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleDashboardStats returns console landing-page counters
func (uh *UsersHandler) HandleDashboardStats(c *gin.Context) {
	stats, err := uh.userService.GetDashboardStats(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to compute dashboard stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
