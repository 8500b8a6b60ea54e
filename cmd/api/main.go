package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/younegotiate/negotiate-api/docs" // Swagger docs
	"github.com/younegotiate/negotiate-api/internal/config"
	"github.com/younegotiate/negotiate-api/internal/database"
	"github.com/younegotiate/negotiate-api/internal/handlers"
	"github.com/younegotiate/negotiate-api/internal/jobs"
	"github.com/younegotiate/negotiate-api/internal/middleware"
	"github.com/younegotiate/negotiate-api/internal/repository"
	"github.com/younegotiate/negotiate-api/internal/services"
	"github.com/younegotiate/negotiate-api/internal/storage"
	"github.com/younegotiate/negotiate-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title YouNegotiate API
// @version 1.0
// @description REST API for the YouNegotiate debt negotiation platform

// @contact.name API Support
// @contact.email support@younegotiate.app

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.ResendAPIKey == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY not set. Transactional emails will be skipped.")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Initialize storage for generated agreements and exports
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, store, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
			auth.POST("/forgot_password", h.Auth.ForgotPassword)
			auth.POST("/reset_password", h.Auth.ResetPassword)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.POST("/auth/change_password", h.Auth.ChangePassword)

			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/companies", h.Company.Create)
				admin.POST("/companies/:company_id/memberships", h.Company.CreateMembership)
				admin.PUT("/companies/:company_id/membership", h.Company.UpdateMembership)
				admin.GET("/audit_logs", h.Audit.Index)
			}

			// Creditor agent + admin routes
			agent := protected.Group("")
			agent.Use(middleware.RequireRole("admin", "agent"))
			{
				agent.GET("/companies", h.Company.Index)
				agent.GET("/companies/:company_id", h.Company.Show)
				agent.PUT("/companies/:company_id/terms", h.Company.UpdateTerms)
				agent.GET("/companies/:company_id/subclients", h.Company.Subclients)
				agent.POST("/companies/:company_id/subclients", h.Company.CreateSubclient)
				agent.PUT("/subclients/:subclient_id/terms", h.Company.UpdateSubclientTerms)
				agent.GET("/companies/:company_id/membership", h.Company.Membership)

				// Account management
				agent.GET("/consumers", h.Consumer.Index)
				agent.GET("/consumers/status_counts", h.Consumer.StatusCounts)
				agent.POST("/consumers", h.Consumer.Create)
				agent.POST("/consumers/:consumer_id/deactivate", h.Consumer.Deactivate)

				// Creditor side of the negotiation loop
				agent.GET("/negotiations/pending", h.Negotiation.Pending)
				agent.POST("/consumers/:consumer_id/negotiation/counter", h.Negotiation.Counter)

				// Payments and reporting
				agent.GET("/transactions", h.Payment.Index)
				agent.GET("/transactions/recent", h.Payment.Recent)
				agent.POST("/schedules/:schedule_id/retry", h.Schedule.Retry)
				agent.GET("/reports/consumers.xlsx", h.Report.ExportConsumers)
				agent.GET("/reports/summary", h.Report.Summary)
			}

			// Routes shared by consumers and creditor staff. Service-level
			// checks keep actors on their own accounts.
			protected.GET("/consumers/:consumer_id", h.Consumer.Show)
			protected.GET("/consumers/:consumer_id/offer_terms", h.Consumer.OfferTerms)
			protected.GET("/consumers/:consumer_id/negotiation", h.Negotiation.Show)
			protected.POST("/consumers/:consumer_id/offers", h.Negotiation.SubmitOffer)
			protected.POST("/consumers/:consumer_id/negotiation/accept", h.Negotiation.Accept)
			protected.POST("/consumers/:consumer_id/negotiation/decline", h.Negotiation.Decline)

			protected.GET("/consumers/:consumer_id/schedule", h.Schedule.Index)
			protected.GET("/consumers/:consumer_id/transactions", h.Payment.ConsumerTransactions)
			protected.GET("/consumers/:consumer_id/agreement.pdf", h.Report.SettlementAgreement)

			// Account lifecycle
			protected.POST("/consumers/:consumer_id/dispute", h.Consumer.Dispute)
			protected.POST("/consumers/:consumer_id/not_paying", h.Consumer.NotPaying)
			protected.POST("/consumers/:consumer_id/hold", h.Consumer.Hold)
			protected.POST("/consumers/:consumer_id/restart", h.Consumer.Restart)
			protected.POST("/consumers/:consumer_id/renegotiate", h.Consumer.Renegotiate)

			// Payment profiles
			protected.POST("/consumers/:consumer_id/payment_profiles", h.PaymentProfile.Create)
			protected.DELETE("/consumers/:consumer_id/payment_profiles/:profile_id", h.PaymentProfile.Delete)

			// Notifications
			// Static route first so "read_all" is not matched as :notification_id
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.GET("/unread_count", h.Notification.UnreadCount)
				notifications.POST("/read_all", h.Notification.MarkAllRead)
				notifications.POST("/:notification_id/read", h.Notification.MarkRead)
				notifications.DELETE("/:notification_id", h.Notification.Delete)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Capture due schedule rows every hour, once at startup to pick up
	// anything missed while the process was down
	worker.ScheduleEveryImmediate(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Processing due payment schedules...")
		return svcs.Payment.ProcessDueSchedules(ctx)
	})

	// Resume held plans whose restart date arrived
	worker.ScheduleEvery(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Resuming plans due for restart...")
		return svcs.Consumer.SweepDueRestarts(ctx)
	})

	// Deactivate accounts whose offer window lapsed
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Sweeping expired offers...")
		return svcs.Consumer.SweepExpiredOffers(ctx)
	})

	logger.Info("Scheduled recurring jobs")
}
