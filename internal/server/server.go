// Package server contains the HTTP and WebSocket handlers of the job board API.
package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	_ "jobboard/docs" // swagger docs
	"jobboard/internal/authz"
	"jobboard/internal/cache"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/featureflags"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/notifications"
	"jobboard/internal/repository"
	"jobboard/internal/service"
	"jobboard/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	resolver     *authz.Resolver
	files        *storage.DiskStore
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	dispatcher   *notifications.Dispatcher
	featureFlags *featureflags.Manager

	authService        *service.AuthService
	adminTokenService  *service.AdminTokenService
	jobService         *service.JobService
	applicationService *service.ApplicationService
	companyService     *service.CompanyService
	jobSeekerService   *service.JobSeekerService
	savedJobService    *service.SavedJobService
	contactService     *service.ContactService
	categoryService    *service.CategoryService
	userService        *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; realtime notifications and token revocation are
// then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	users := repository.NewUserRepository(db)
	companies := repository.NewCompanyRepository(db)
	seekers := repository.NewJobSeekerRepository(db)
	jobs := repository.NewJobRepository(db)
	categories := repository.NewCategoryRepository(db)

	flags := featureflags.NewManager(cfg.FeatureFlags)
	files := storage.NewDiskStore(cfg.UploadDir)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("jobboard-api"),
		resolver:       authz.NewResolver(users, companies, seekers),
		files:          files,
		featureFlags:   flags,
	}

	var publisher notifications.UserPublisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		publisher = s.notifier
	}
	s.dispatcher = notifications.NewDispatcher(
		notifications.NewMailer(redisClient, cfg.MailFrom),
		publisher,
		notifications.WithTimeout(cfg.NotifyTimeout()),
		notifications.WithRealtimeGate(func(userID uint) bool {
			return flags.Enabled(featureflags.RealtimeNotifications, userID)
		}),
	)

	maxBytes := cfg.UploadMaxBytes()
	s.authService = service.NewAuthService(db, service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL()))
	s.adminTokenService = service.NewAdminTokenService(db, cfg.AdminTokenTTL())
	s.jobService = service.NewJobService(jobs, categories)
	s.applicationService = service.NewApplicationService(
		repository.NewApplicationRepository(db), jobs, files, s.dispatcher, maxBytes)
	s.companyService = service.NewCompanyService(companies, jobs, files, flags, maxBytes)
	s.jobSeekerService = service.NewJobSeekerService(seekers, files, flags, maxBytes)
	s.savedJobService = service.NewSavedJobService(repository.NewSavedJobRepository(db), jobs, flags)
	s.contactService = service.NewContactService(repository.NewContactRepository(db), s.dispatcher, cfg.ContactInbox)
	s.categoryService = service.NewCategoryService(categories)
	s.userService = service.NewUserService(users)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// Uploaded logos and pictures are embedded by the frontend origin.
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so error responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Public uploads. CVs are only served through the employer routes.
	for _, bucket := range []string{storage.BucketCompanyLogos, storage.BucketProfilePictures} {
		app.Static("/uploads/"+bucket, filepath.Join(s.config.UploadDir, bucket), fiber.Static{
			MaxAge: 3600,
		})
	}

	// Auth
	auth := api.Group("/auth")
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/admin-register",
		middleware.RateLimitWithPolicy(s.redis, 5, 10*time.Minute, middleware.FailClosed, "admin_register"),
		s.AdminRegister)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/me", s.AuthRequired(), s.Me)

	// Public browsing. OptionalAuth lets a logged-in seeker see apply state.
	public := api.Group("", s.OptionalAuth())
	public.Get("/jobs", s.ListJobs)
	public.Get("/jobs/:id", s.GetJob)
	public.Get("/job-details", s.LegacyJobDetails)
	public.Get("/companies", s.ListCompanies)
	public.Get("/companies/:id", s.GetCompany)
	public.Get("/categories", s.ListCategories)
	public.Post("/contact", middleware.RateLimit(s.redis, 5, 10*time.Minute, "contact"), s.SubmitContact)

	protected := api.Group("", s.AuthRequired())
	protected.Post("/jobs/:id/apply", middleware.RateLimit(s.redis, 10, time.Minute, "apply"), s.ApplyForJob)
	protected.Post("/job-details", middleware.RateLimit(s.redis, 10, time.Minute, "apply"), s.LegacyApply)

	// Employer
	employer := protected.Group("/employer", s.RoleRequired(authz.KindEmployer, authz.KindAdmin))
	employer.Get("/company", s.GetOwnCompany)
	employer.Put("/company", s.SaveOwnCompany)
	employer.Post("/company/logo", s.UploadCompanyLogo)
	employer.Post("/post-job", middleware.RateLimit(s.redis, 20, time.Hour, "post_job"), s.PostJob)
	employer.Get("/manage-jobs", s.ManageJobs)
	employer.Patch("/jobs/:id/status", s.SetJobStatus)
	employer.Put("/jobs/:id", s.UpdateJob)
	employer.Delete("/jobs/:id", s.DeleteJob)
	employer.Get("/applications", s.EmployerApplications)
	employer.Get("/applications/:id/cv", s.DownloadApplicationCV)
	employer.Get("/applications/:id", s.GetApplication)
	employer.Patch("/applications/:id/status", s.SetApplicationStatus)

	// Job seeker
	seeker := protected.Group("/jobseeker", s.RoleRequired(authz.KindJobSeeker))
	seeker.Get("/applications", s.MyApplications)
	seeker.Get("/my-resume", s.GetResume)
	seeker.Put("/my-resume", s.SaveProfile)
	seeker.Post("/my-resume/cv", s.UploadCV)
	seeker.Post("/my-resume/picture", s.UploadPicture)
	seeker.Post("/my-resume/education", s.AddEducation)
	seeker.Put("/my-resume/education/:id", s.UpdateEducation)
	seeker.Delete("/my-resume/education/:id", s.DeleteEducation)
	seeker.Post("/my-resume/experience", s.AddExperience)
	seeker.Put("/my-resume/experience/:id", s.UpdateExperience)
	seeker.Delete("/my-resume/experience/:id", s.DeleteExperience)
	seeker.Get("/saved-jobs", s.SavedJobs)
	seeker.Post("/saved-jobs/:jobId", s.SaveJob)
	seeker.Delete("/saved-jobs/:jobId", s.UnsaveJob)

	// Websocket endpoints - protected by AuthRequired
	ws := api.Group("/ws", s.AuthRequired())
	ws.Get("/notifications", s.NotificationsWebSocket())

	// Admin
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/stats", s.AdminStats)
	admin.Get("/users", s.AdminListUsers)
	admin.Get("/users/:id", s.AdminGetUser)
	admin.Patch("/users/:id/status", s.AdminSetUserStatus)
	admin.Get("/jobs", s.AdminListJobs)
	admin.Patch("/jobs/:id/status", s.SetJobStatus)
	admin.Patch("/jobs/:id/featured", s.AdminSetFeatured)
	admin.Delete("/jobs/:id", s.DeleteJob)
	admin.Get("/tokens", s.AdminListTokens)
	admin.Post("/tokens", s.AdminIssueToken)
	admin.Delete("/tokens/:id", s.AdminRevokeToken)
	admin.Get("/contact-messages", s.AdminContactMessages)
	admin.Patch("/contact-messages/:id/read", s.AdminMarkContactRead)
	admin.Post("/categories", s.AdminCreateCategory)
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so
// only the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Job Board API",
		BodyLimit: int(s.config.UploadMaxBytes()) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start builds the app, wires realtime delivery and listens on the
// configured port until Shutdown.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start notification wiring", "error", err)
			}
		}()
	}

	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops the listener, drains pending notifications and closes the
// database and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down notification hub", "error", err)
		}
	}

	if s.dispatcher != nil {
		done := make(chan struct{})
		go func() {
			s.dispatcher.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			middleware.Logger.Warn("pending notifications abandoned at shutdown")
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
