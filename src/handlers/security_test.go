package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqops/marketplace-admin/src/config"
	"github.com/souqops/marketplace-admin/src/middleware"
	"github.com/souqops/marketplace-admin/src/models"
	"github.com/souqops/marketplace-admin/src/repositories/mock"
	"github.com/souqops/marketplace-admin/src/services"
)

type securityFixture struct {
	blocks    *mock.BlockedIPRepository
	attempts  *mock.LoginAttemptRepository
	regs      *mock.RegistrationRepository
	auditRepo *mock.AuditRepository
	audit     *services.AuditService
	handler   *SecurityHandler
}

func newSecurityFixture(policy config.SecurityPolicy) *securityFixture {
	f := &securityFixture{
		blocks:    mock.NewBlockedIPRepository(),
		attempts:  mock.NewLoginAttemptRepository(),
		regs:      mock.NewRegistrationRepository(),
		auditRepo: mock.NewAuditRepository(),
	}
	f.audit = services.NewAuditServiceWithRepo(f.auditRepo, 0)
	f.audit.Start()

	securityService := services.NewSecurityServiceWithRepos(f.blocks, f.attempts, f.audit)
	anomalyService := services.NewAnomalyServiceWithRepos(f.regs, f.attempts, policy)
	f.handler = NewSecurityHandler(securityService, anomalyService, f.audit)
	return f
}

func TestHandleDetectAnomalies_ResponseShape(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Now()
	f := newSecurityFixture(config.SecurityPolicy{
		SharedIPThreshold:    1,
		FailedLoginThreshold: 5,
		FailedLoginWindow:    24 * time.Hour,
	})
	defer f.audit.Stop()

	f.regs.RegistrationsFunc = func(ctx context.Context) ([]models.AccountRegistration, error) {
		return []models.AccountRegistration{
			{Username: "alice", Email: "alice@example.com", IPAddress: "203.0.113.5", CreatedAt: now},
			{Username: "bob", Email: "bob@example.com", IPAddress: "203.0.113.5", CreatedAt: now},
			{Username: "carol", Email: "carol@example.com", IPAddress: "203.0.113.5", CreatedAt: now},
		}, nil
	}
	f.attempts.ListSinceFunc = func(ctx context.Context, since time.Time) ([]*models.LoginAttempt, error) {
		var out []*models.LoginAttempt
		for i := 0; i < 6; i++ {
			out = append(out, &models.LoginAttempt{IPAddress: "198.51.100.7", Success: false, AttemptedAt: now})
		}
		out = append(out, &models.LoginAttempt{IPAddress: "198.51.100.7", Success: true, AttemptedAt: now})
		return out, nil
	}

	router := gin.New()
	router.POST("/api/admin/ai/detect-fraud", f.handler.HandleDetectAnomalies)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/ai/detect-fraud", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		SuspiciousIPs []models.SuspiciousIP       `json:"suspicious_ips"`
		FailedLogins  []models.FailedLoginCluster `json:"failed_login_attempts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.SuspiciousIPs, 1)
	assert.Equal(t, "203.0.113.5", resp.SuspiciousIPs[0].IPAddress)
	assert.Equal(t, 3, resp.SuspiciousIPs[0].AccountCount)

	require.Len(t, resp.FailedLogins, 1)
	assert.Equal(t, "198.51.100.7", resp.FailedLogins[0].IPAddress)
	assert.Equal(t, 6, resp.FailedLogins[0].FailedAttempts)
}

func TestHandleBlockIP_ActorComesFromSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	f := newSecurityFixture(config.SecurityPolicy{})

	router := gin.New()
	router.POST("/api/admin/security/block-ip", func(c *gin.Context) {
		// Identity a verified token would have set
		c.Set(middleware.ContextUsername, "alice")
	}, f.handler.HandleBlockIP)

	payload, _ := json.Marshal(BlockIPRequest{IP: "198.51.100.7", Reason: "brute force"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/security/block-ip", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	f.audit.Stop()

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	require.Len(t, f.blocks.Calls["Upsert"], 1)
	assert.Equal(t, "alice", f.blocks.Calls["Upsert"][0].(*models.BlockedIP).BlockedBy)

	require.Len(t, f.auditRepo.Calls["Insert"], 1)
	entry := f.auditRepo.Calls["Insert"][0].(*models.AuditEntry)
	assert.Equal(t, "alice", entry.AdminUsername)
	assert.Equal(t, models.AuditActionBlockIP, entry.Action)
}

func TestHandleBlockIP_MissingIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	f := newSecurityFixture(config.SecurityPolicy{})
	defer f.audit.Stop()

	router := gin.New()
	router.POST("/api/admin/security/block-ip", f.handler.HandleBlockIP)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/security/block-ip", bytes.NewReader([]byte(`{"reason":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.blocks.Calls["Upsert"])
}

func TestHandleStats_ReturnsAggregates(t *testing.T) {
	gin.SetMode(gin.TestMode)

	f := newSecurityFixture(config.SecurityPolicy{})
	defer f.audit.Stop()

	f.attempts.StatsFunc = func(ctx context.Context) (int, int, int, error) {
		return 12, 9, 3, nil
	}
	f.blocks.CountFunc = func(ctx context.Context) (int, error) {
		return 4, nil
	}

	router := gin.New()
	router.GET("/api/admin/security/stats", f.handler.HandleStats)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/security/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_attempts":12,"successful":9,"failed":3,"blocked_ips":4}`, w.Body.String())
}
