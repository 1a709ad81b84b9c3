package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/souqops/marketplace-admin/src/config"
	"github.com/souqops/marketplace-admin/src/database"
	"github.com/souqops/marketplace-admin/src/handlers"
	"github.com/souqops/marketplace-admin/src/logging"
	"github.com/souqops/marketplace-admin/src/middleware"
	"github.com/souqops/marketplace-admin/src/models"
	"github.com/souqops/marketplace-admin/src/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logging
	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	log.Info().
		Int("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Msg("starting server")

	// Initialize database
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	log.Info().Msg("database connected")

	// Session token issuer/verifier
	auth, err := middleware.NewAuthenticator(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token authenticator")
	}

	apiKeyGate := middleware.NewAPIKeyGate(cfg.AdminAPIKey)

	// Per-IP rate limiters: a general one for every admin route and a
	// stricter one layered on login-type endpoints
	generalLimiter := middleware.NewIPRateLimiter(cfg.Policy.GeneralRateLimit, cfg.Policy.GeneralRateWindow)
	defer generalLimiter.Stop()
	authLimiter := middleware.NewIPRateLimiter(cfg.Policy.AuthRateLimit, cfg.Policy.AuthRateWindow)
	defer authLimiter.Stop()

	// Initialize services
	auditService := services.NewAuditService(db.GetPool())
	auditService.Start()

	adminService := services.NewAdminService(db.GetPool())
	securityService := services.NewSecurityService(db.GetPool(), auditService)
	anomalyService := services.NewAnomalyService(db.GetPool(), cfg.Policy)
	userService := services.NewUserService(db.GetPool(), auditService)
	cleanupService := services.NewCleanupService(securityService, cfg.Policy.AttemptRetention, cfg.EnableAutoCleanup)

	// The blocklist must be in memory before the first request is served.
	// Refusing to start beats serving blocked sources.
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = securityService.LoadBlocklist(ctx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load IP blocklist")
	}

	// Auto-seed the first admin account (if ADMIN_USERNAME and ADMIN_PASSWORD are set)
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		hasAdmins, err := adminService.HasAdmins(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("failed to check for existing admin accounts")
		} else if !hasAdmins {
			if _, err := adminService.CreateAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword, models.RoleSuperAdmin); err != nil {
				log.Error().Err(err).Msg("failed to create initial admin account")
			} else {
				log.Info().Str("username", cfg.AdminUsername).Msg("initial admin account created")
			}
		}
	}

	// Start background services
	go cleanupService.Start(context.Background())

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.Recovery())

	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	setupRoutes(router, db, auth, apiKeyGate, generalLimiter, authLimiter,
		adminService, securityService, anomalyService, userService, auditService)

	// Create HTTP server with timeouts (G112: protect from Slowloris attack)
	srv := &http.Server{
		Addr:              ":" + fmt.Sprintf("%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	cleanupService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	// Drain queued audit entries after the listener is down so no action
	// accepted before shutdown is lost
	auditService.Stop()
	if dropped := auditService.Dropped(); dropped > 0 {
		log.Warn().Uint64("dropped", dropped).Msg("audit entries dropped during lifetime")
	}

	log.Info().Msg("server shut down successfully")
}

// corsConfig builds the CORS policy from the comma-separated origin list.
// An empty list keeps the console locked to same-origin requests.
func corsConfig(allowedOrigins string) cors.Config {
	origins := make(map[string]bool)
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = true
		}
	}

	return cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if origins[origin] {
				return true
			}
			// Allow localhost for development
			return origin == "http://localhost" || origin == "http://localhost:3000" || origin == "http://localhost:8080"
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.APIKeyHeader},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func setupRoutes(
	router *gin.Engine,
	db *database.Database,
	auth *middleware.Authenticator,
	apiKeyGate *middleware.APIKeyGate,
	generalLimiter, authLimiter *middleware.IPRateLimiter,
	adminService *services.AdminService,
	securityService *services.SecurityService,
	anomalyService *services.AnomalyService,
	userService *services.UserService,
	auditService *services.AuditService,
) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(adminService, auth)
	securityHandler := handlers.NewSecurityHandler(securityService, anomalyService, auditService)
	adminHandler := handlers.NewAdminHandler(adminService, auditService)
	usersHandler := handlers.NewUsersHandler(userService)

	// Health check endpoints (unauthenticated, never rate limited)
	router.GET("/health", healthHandler.HandleHealth)
	router.GET("/ready", healthHandler.HandleReady)
	router.GET("/info", healthHandler.HandleInfo)

	// Every admin route shares the same front half of the pipeline:
	// general rate limit first (cheapest check, also shields the blocklist
	// lookup), then the blocklist
	api := router.Group("/api/admin")
	api.Use(generalLimiter.Middleware())
	api.Use(middleware.BlocklistMiddleware(securityService))

	// Login carries the stricter auth limiter on top of the general one and
	// is the only admin route reachable without a session token
	api.POST("/auth/login", authLimiter.Middleware(), authHandler.HandleLogin)

	// Everything below requires a verified session token plus the shared API key
	protected := api.Group("")
	protected.Use(auth.Middleware())
	protected.Use(apiKeyGate.Middleware())

	protected.POST("/auth/logout", authHandler.HandleLogout)
	protected.GET("/auth/me", authHandler.HandleMe)

	// Dashboard (any admin role)
	protected.GET("/dashboard/stats", usersHandler.HandleDashboardStats)

	// Security monitoring (admin and up)
	security := protected.Group("/security")
	security.Use(middleware.RequireRole(models.RoleAdmin))
	{
		security.GET("/stats", securityHandler.HandleStats)
		security.GET("/login-attempts", securityHandler.HandleListLoginAttempts)
		security.POST("/block-ip", securityHandler.HandleBlockIP)
	}

	// Anomaly detection (admin and up)
	protected.POST("/ai/detect-fraud", middleware.RequireRole(models.RoleAdmin), securityHandler.HandleDetectAnomalies)

	// Audit trail (admin and up)
	protected.GET("/audit-log", middleware.RequireRole(models.RoleAdmin), securityHandler.HandleAuditLog)

	// Marketplace user management (moderators may look, admins may touch)
	users := protected.Group("/users")
	{
		users.GET("", middleware.RequireRole(models.RoleAdmin, models.RoleModerator), usersHandler.HandleListUsers)
		users.PUT("/:id", middleware.RequireRole(models.RoleAdmin), usersHandler.HandleUpdateUser)
		users.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), usersHandler.HandleDeleteUser)
	}

	// Upgrade-request queue
	requests := protected.Group("/upgrade-requests")
	{
		requests.GET("", middleware.RequireRole(models.RoleAdmin, models.RoleModerator), usersHandler.HandleListUpgradeRequests)
		requests.POST("/:id/decide", middleware.RequireRole(models.RoleAdmin), usersHandler.HandleDecideUpgradeRequest)
	}

	// Admin account management (super_admin only)
	accounts := protected.Group("/accounts")
	accounts.Use(middleware.RequireRole(models.RoleSuperAdmin))
	{
		accounts.POST("", adminHandler.HandleCreateAdmin)
		accounts.GET("", adminHandler.HandleListAdmins)
		accounts.PUT("/:id/role", adminHandler.HandleUpdateRole)
		accounts.DELETE("/:id", adminHandler.HandleDeactivateAdmin)
	}
}
