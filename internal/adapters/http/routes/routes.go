package routes

import (
	"time"

	"evapod/internal/adapters/http/handlers"
	"evapod/internal/adapters/http/middleware"
	"evapod/internal/adapters/persistence/repositories"
	"evapod/internal/config"
	"evapod/internal/core/domain"
	"evapod/internal/core/services"
	"evapod/internal/pkg/mailer"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the shared components built by the caller. The OTP
// store is shared with the maintenance jobs that sweep it.
type Dependencies struct {
	DB     *gorm.DB
	Config *config.Config
	Logger *zap.Logger
	Mailer mailer.Mailer
	OTP    *services.OTPService
}

// Setup configures all routes
func Setup(app *fiber.App, deps Dependencies) {
	db, cfg, log := deps.DB, deps.Config, deps.Logger

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	tokenRepo := repositories.NewUserTokenRepository(db)
	regionRepo := repositories.NewRegionRepository(db)
	zoneRepo := repositories.NewZoneRepository(db)
	subzoneRepo := repositories.NewSubzoneRepository(db)
	fellowshipRepo := repositories.NewFellowshipRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	// Initialize services
	resolver := services.NewResolver(userRepo, regionRepo, zoneRepo, subzoneRepo, fellowshipRepo)
	regionService := services.NewRegionService(regionRepo, resolver, log)
	zoneService := services.NewZoneService(zoneRepo, resolver, log)
	subzoneService := services.NewSubzoneService(subzoneRepo, resolver, log)
	fellowshipService := services.NewFellowshipService(fellowshipRepo, resolver, log)
	userService := services.NewUserService(userRepo, sessionRepo, resolver, log)
	reportService := services.NewReportService(reportRepo, userRepo, resolver, log)
	dashboardService := services.NewDashboardService(db, log)

	otpService := deps.OTP
	if otpService == nil {
		otpService = services.NewOTPService(time.Duration(cfg.Auth.OTPMinutes) * time.Minute)
	}
	notificationService := services.NewNotificationService(deps.Mailer, cfg, log)
	authService := services.NewAuthService(
		userService, userRepo, sessionRepo, tokenRepo,
		otpService, notificationService, cfg, log,
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg)
	authHandler := handlers.NewAuthHandler(authService, userService, cfg, log)
	regionHandler := handlers.NewRegionHandler(regionService, log)
	zoneHandler := handlers.NewZoneHandler(zoneService, log)
	subzoneHandler := handlers.NewSubzoneHandler(subzoneService, log)
	fellowshipHandler := handlers.NewFellowshipHandler(fellowshipService, log)
	userHandler := handlers.NewUserHandler(userService, reportService, log)
	reportHandler := handlers.NewReportHandler(reportService, log)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, log)

	// Root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", middleware.CacheControl(time.Hour), swagger.HandlerDefault)

	// API v1 routes
	api := app.Group("/api/v1", middleware.NoStore())
	api.Get("/", healthHandler.APIInfo)

	requireAuth := middleware.AuthMiddleware(authService)
	requireCSRF := middleware.CSRFMiddleware()

	setupUserRoutes(api.Group("/users"), authHandler, requireAuth, requireCSRF)

	reportRoutes := api.Group("/reports", requireAuth, requireCSRF)
	setupReportRoutes(reportRoutes, reportHandler)

	adminRoutes := api.Group("/admin", requireAuth, requireCSRF)
	setupAdminRoutes(adminRoutes, adminHandlers{
		region:     regionHandler,
		zone:       zoneHandler,
		subzone:    subzoneHandler,
		fellowship: fellowshipHandler,
		user:       userHandler,
		dashboard:  dashboardHandler,
	})
}

// setupUserRoutes configures account and session routes
func setupUserRoutes(router fiber.Router, handler *handlers.AuthHandler, requireAuth, requireCSRF fiber.Handler) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/verify", middleware.StrictRateLimiter(), handler.ResendVerification)
	router.Post("/verify/:token", handler.VerifyEmail)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/verifyOtp", middleware.AuthRateLimiter(), handler.VerifyOTP)
	router.Post("/refresh", handler.Refresh)
	router.Post("/forgot-password", middleware.StrictRateLimiter(), handler.ForgotPassword)
	router.Post("/reset-password/:token", middleware.StrictRateLimiter(), handler.ResetPassword)

	// Protected routes. refresh-csrf is how a client recovers a lost CSRF
	// token, so it cannot require one.
	router.Post("/refresh-csrf", requireAuth, handler.RefreshCSRF)
	router.Get("/me", requireAuth, handler.Me)
	router.Post("/logout", requireAuth, requireCSRF, handler.Logout)
	router.Put("/update", requireAuth, requireCSRF, handler.UpdateProfile)
	router.Post("/change-password", requireAuth, requireCSRF, handler.ChangePassword)
}

// setupReportRoutes configures report routes (Authenticated, scoped by position)
func setupReportRoutes(router fiber.Router, handler *handlers.ReportHandler) {
	router.Post("/", handler.Create)
	router.Post("/create", handler.Create)
	router.Get("/", handler.List)
	router.Get("/report-by-user", handler.ListByUser)
	router.Get("/fellowship/:fellowship", handler.ListByFellowship)
	router.Get("/status/:status", handler.ListByStatus)
	router.Get("/followup/:status", handler.ListByFollowUp)
	router.Get("/:id", handler.Get)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
}

type adminHandlers struct {
	region     *handlers.RegionHandler
	zone       *handlers.ZoneHandler
	subzone    *handlers.SubzoneHandler
	fellowship *handlers.FellowshipHandler
	user       *handlers.UserHandler
	dashboard  *handlers.DashboardHandler
}

// setupAdminRoutes configures hierarchy and user management routes.
// Listings are open to coordinators; results that depend on position are
// scoped by the services. Hierarchy writes need admin or regional, user
// writes need admin.
func setupAdminRoutes(router fiber.Router, h adminHandlers) {
	coordinators := middleware.Coordinators()
	hierarchyWriters := middleware.RoleMiddleware(domain.RoleAdmin, domain.RoleRegional)
	admin := middleware.AdminOnly()

	// Any authenticated user; the service narrows to the caller's scope
	router.Get("/dashboard-stats", h.dashboard.GetStats)
	router.Get("/users-reports-paginated", h.user.PaginateReports)

	// Regions
	router.Post("/create-region", hierarchyWriters, h.region.Create)
	router.Get("/get-regions", coordinators, h.region.List)
	router.Get("/get-region/:id", coordinators, h.region.Get)
	router.Put("/update-region/:id", hierarchyWriters, h.region.Update)
	router.Delete("/delete-region/:id", hierarchyWriters, h.region.Delete)

	// Zones
	router.Post("/create-zone", hierarchyWriters, h.zone.Create)
	router.Get("/get-zones", coordinators, h.zone.List)
	router.Get("/get-zone/:id", coordinators, h.zone.Get)
	router.Put("/update-zone/:id", hierarchyWriters, h.zone.Update)
	router.Delete("/delete-zone/:id", hierarchyWriters, h.zone.Delete)

	// Subzones
	router.Post("/create-subzone", hierarchyWriters, h.subzone.Create)
	router.Get("/get-subzones", coordinators, h.subzone.List)
	router.Get("/subzones-paginated", coordinators, h.subzone.Paginate)
	router.Get("/get-subzone/:id", coordinators, h.subzone.Get)
	router.Put("/update-subzone/:id", hierarchyWriters, h.subzone.Update)
	router.Delete("/delete-subzone/:id", hierarchyWriters, h.subzone.Delete)

	// Fellowships
	router.Post("/create-fellowship", hierarchyWriters, h.fellowship.Create)
	router.Get("/get-fellowships", coordinators, h.fellowship.List)
	router.Get("/fellowships-paginated", coordinators, h.fellowship.Paginate)
	router.Get("/get-fellowship/:id", coordinators, h.fellowship.Get)
	router.Put("/update-fellowship/:id", hierarchyWriters, h.fellowship.Update)
	router.Delete("/delete-fellowship/:id", hierarchyWriters, h.fellowship.Delete)

	// Users
	router.Post("/create-user", admin, h.user.Create)
	router.Get("/get-users", coordinators, h.user.List)
	router.Get("/users-paginated", coordinators, h.user.Paginate)
	router.Get("/get-user/:id", coordinators, h.user.Get)
	router.Put("/update-user/:id", admin, h.user.Update)
	router.Delete("/delete-user/:id", admin, h.user.Delete)
}
