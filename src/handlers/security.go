package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/souqops/marketplace-admin/src/middleware"
	"github.com/souqops/marketplace-admin/src/services"
)

// SecurityHandler exposes the security monitoring surface: login attempts,
// anomaly detection, IP blocking and the audit trail
type SecurityHandler struct {
	securityService *services.SecurityService
	anomalyService  *services.AnomalyService
	auditService    *services.AuditService
}

// NewSecurityHandler creates a new security handler
func NewSecurityHandler(securityService *services.SecurityService, anomalyService *services.AnomalyService, auditService *services.AuditService) *SecurityHandler {
	return &SecurityHandler{
		securityService: securityService,
		anomalyService:  anomalyService,
		auditService:    auditService,
	}
}

// HandleStats returns login-attempt totals and the blocklist size
func (sh *SecurityHandler) HandleStats(c *gin.Context) {
	stats, err := sh.securityService.Stats(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to compute security stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load security stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// HandleListLoginAttempts returns recent login attempts, newest first
func (sh *SecurityHandler) HandleListLoginAttempts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))

	attempts, err := sh.securityService.ListLoginAttempts(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list login attempts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load login attempts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}

// BlockIPRequest represents the request body for blocking an IP
type BlockIPRequest struct {
	IP     string `json:"ip" binding:"required"`
	Reason string `json:"reason"`
}

// HandleBlockIP blocks a source address. The actor is taken from the
// verified session token, never from the request body. Blocking an
// already-blocked IP succeeds.
func (sh *SecurityHandler) HandleBlockIP(c *gin.Context) {
	var req BlockIPRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actor := middleware.CurrentActor(c)
	if err := sh.securityService.BlockIP(c.Request.Context(), req.IP, req.Reason, actor); err != nil {
		log.Error().Err(err).Str("ip", req.IP).Msg("failed to block ip")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to block ip"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleDetectAnomalies runs both heuristics and returns their findings in
// one response, mirroring the console's single fraud-detection view
func (sh *SecurityHandler) HandleDetectAnomalies(c *gin.Context) {
	suspicious, err := sh.anomalyService.DetectSharedIPs(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("shared-ip detection failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "detection failed"})
		return
	}

	clusters, err := sh.anomalyService.DetectFailedLoginClusters(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed-login clustering failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "detection failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suspicious_ips":        suspicious,
		"failed_login_attempts": clusters,
	})
}

// HandleAuditLog returns audit entries newest first, capped at one page
func (sh *SecurityHandler) HandleAuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := sh.auditService.Query(c.Request.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to query audit log")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
