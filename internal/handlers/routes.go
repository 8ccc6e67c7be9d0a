package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rebecca-roussel/ecoride/internal/metrics"
	"github.com/rebecca-roussel/ecoride/internal/middleware"
	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/internal/services"
	"github.com/rebecca-roussel/ecoride/pkg/logger"
)

// Services groups what the HTTP layer calls into.
type Services struct {
	Accounts   *services.AccountService
	Vehicles   *services.VehicleService
	Rides      *services.RideService
	Bookings   *services.BookingService
	Lifecycle  *services.LifecycleService
	Reviews    *services.ReviewService
	Moderation *services.ModerationService
	Geocoder   services.Geocoder
	Hub        *services.Hub
}

type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	// UploadDir is served under /uploads when photos are stored locally.
	UploadDir string
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
}

func NewRouter(cfg RouterConfig, s Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Logger, cfg.Metrics))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 || cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	if cfg.UploadDir != "" {
		r.Static("/uploads", cfg.UploadDir)
	}

	auth := middleware.AuthMiddleware(cfg.JWTSecret)

	api := r.Group("/api")
	{
		// Public routes
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", Register(s.Accounts))
			authRoutes.POST("/login", Login(s.Accounts))
			authRoutes.POST("/forgot-password", RequestPasswordReset(s.Accounts))
			authRoutes.POST("/reset-password", ResetPassword(s.Accounts))
		}
		api.GET("/rides", SearchRides(s.Rides))
		api.GET("/rides/:id", GetRide(s.Rides))
		api.GET("/drivers/:id/rating", GetDriverRating(s.Rides))
		api.GET("/places", SuggestPlaces(s.Geocoder))

		api.GET("/ws", auth, WebSocketHandler(s.Hub))

		protected := api.Group("/")
		protected.Use(auth)
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", GetProfile(s.Accounts))
				users.PUT("/profile", UpdateProfile(s.Accounts))
				users.POST("/photo", UploadPhoto(s.Accounts))
			}

			vehicles := protected.Group("/vehicles")
			{
				vehicles.POST("", AddVehicle(s.Vehicles))
				vehicles.GET("", ListVehicles(s.Vehicles))
				vehicles.DELETE("/:id", DeactivateVehicle(s.Vehicles))
			}

			rides := protected.Group("/rides")
			{
				rides.POST("", PublishRide(s.Rides))
				rides.POST("/:id/book", BookRide(s.Bookings))
				rides.DELETE("/:id/book", CancelBooking(s.Bookings))
				rides.POST("/:id/start", StartRide(s.Lifecycle))
				rides.POST("/:id/finish", FinishRide(s.Lifecycle))
				rides.POST("/:id/cancel", CancelRide(s.Lifecycle))
				rides.POST("/:id/incident", DeclareIncident(s.Lifecycle))
				rides.GET("/:id/review-eligibility", GetReviewEligibility(s.Reviews))
				rides.POST("/:id/review", SubmitReview(s.Reviews))
			}

			protected.GET("/driver/rides", GetDriverRides(s.Rides))
			protected.GET("/bookings", GetPassengerBookings(s.Bookings))

			moderation := protected.Group("/moderation")
			moderation.Use(middleware.RequireRole(models.RoleEmployee, models.RoleAdmin))
			{
				moderation.GET("/reviews", GetPendingReviews(s.Moderation))
				moderation.POST("/reviews/:id/approve", ModerateReview(s.Moderation, true))
				moderation.POST("/reviews/:id/reject", ModerateReview(s.Moderation, false))
				moderation.GET("/incidents", GetOpenIncidents(s.Moderation))
				moderation.POST("/incidents/:id/resolve", ResolveIncident(s.Moderation))
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.POST("/employees", CreateEmployee(s.Accounts))
				admin.POST("/users/:id/suspend", SuspendUser(s.Accounts))
				admin.POST("/users/:id/reactivate", ReactivateUser(s.Accounts))
			}
		}
	}

	return r
}
