package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/souqops/marketplace-admin/src/middleware"
	"github.com/souqops/marketplace-admin/src/models"
	"github.com/souqops/marketplace-admin/src/services"
)

// AdminHandler manages admin accounts (super_admin only)
type AdminHandler struct {
	adminService *services.AdminService
	auditService *services.AuditService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *services.AdminService, auditService *services.AuditService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		auditService: auditService,
	}
}

// CreateAdminRequest represents the request body for creating an admin account
type CreateAdminRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// HandleCreateAdmin creates a new admin account
func (ah *AdminHandler) HandleCreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	admin, err := ah.adminService.CreateAdmin(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("failed to create admin")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create admin"})
		return
	}

	ah.auditService.Record(middleware.CurrentActor(c), models.AuditActionCreateAdmin, models.AuditDetails{
		{Key: "username", Value: admin.Username},
		{Key: "role", Value: admin.Role},
	})

	c.JSON(http.StatusCreated, admin)
}

// HandleListAdmins lists all admin accounts
func (ah *AdminHandler) HandleListAdmins(c *gin.Context) {
	admins, err := ah.adminService.ListAdmins(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list admins")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list admins"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admins": admins})
}

// UpdateRoleRequest represents the request body for a role change
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// HandleUpdateRole changes an admin account's role
func (ah *AdminHandler) HandleUpdateRole(c *gin.Context) {
	adminID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin id"})
		return
	}

	var req UpdateRoleRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := ah.adminService.UpdateRole(c.Request.Context(), adminID, req.Role); err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "admin not found"})
		default:
			log.Error().Err(err).Msg("failed to update role")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update role"})
		}
		return
	}

	ah.auditService.Record(middleware.CurrentActor(c), models.AuditActionUpdateRole, models.AuditDetails{
		{Key: "admin_id", Value: adminID.String()},
		{Key: "role", Value: req.Role},
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleDeactivateAdmin disables an admin account
func (ah *AdminHandler) HandleDeactivateAdmin(c *gin.Context) {
	adminID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin id"})
		return
	}

	if err := ah.adminService.Deactivate(c.Request.Context(), adminID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "admin not found"})
			return
		}
		log.Error().Err(err).Msg("failed to deactivate admin")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate admin"})
		return
	}

	ah.auditService.Record(middleware.CurrentActor(c), models.AuditActionDisableAdmin, models.AuditDetails{
		{Key: "admin_id", Value: adminID.String()},
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}
