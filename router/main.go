package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhubhq/learnhub-api/config"
	"github.com/learnhubhq/learnhub-api/database"
	"github.com/learnhubhq/learnhub-api/handlers"
	admin_handlers "github.com/learnhubhq/learnhub-api/handlers/admin"
	auth_handlers "github.com/learnhubhq/learnhub-api/handlers/auth"
	chat_handlers "github.com/learnhubhq/learnhub-api/handlers/chat"
	course_handlers "github.com/learnhubhq/learnhub-api/handlers/course"
	enrollment_handlers "github.com/learnhubhq/learnhub-api/handlers/enrollment"
	notification_handlers "github.com/learnhubhq/learnhub-api/handlers/notification"
	rating_handlers "github.com/learnhubhq/learnhub-api/handlers/rating"
	upload_handlers "github.com/learnhubhq/learnhub-api/handlers/upload"
	"github.com/learnhubhq/learnhub-api/model"
	"github.com/learnhubhq/learnhub-api/services"
	"github.com/learnhubhq/learnhub-api/services/realtime"
	"github.com/learnhubhq/learnhub-api/services/storage"
	"github.com/learnhubhq/learnhub-api/utils/auth"
	"github.com/learnhubhq/learnhub-api/utils/cache"
	"github.com/learnhubhq/learnhub-api/utils/middleware"
)

// Dependencies bundles the shared infrastructure the routes are built
// on, so the app setup can reuse the same instances (cron, shutdown).
type Dependencies struct {
	Hub           *realtime.Hub
	RedisCache    *cache.RedisCache
	Notifications *services.NotificationService
	Ratings       *services.RatingService
	Blacklist     *auth.BlacklistService
}

// SetupRoutes wires every handler onto the Fiber app and returns the
// shared service instances.
func SetupRoutes(app *fiber.App, store *database.GORMStore) *Dependencies {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to read environment configuration")
	}

	jwtSecret := getEnv.JWT_SECRET
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "learnhub-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	db := store.DB()

	// Redis backs brute force protection and the catalog cache. Both
	// degrade gracefully when it is unavailable.
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection and catalog caching will be disabled.", err)
		redisCache = nil
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Object storage for thumbnails and avatars, optional.
	var spacesClient *storage.SpacesClient
	if getEnv.SPACES_ACCESS_KEY != "" && getEnv.SPACES_SECRET_KEY != "" {
		spacesClient, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: getEnv.SPACES_ACCESS_KEY,
			SecretKey: getEnv.SPACES_SECRET_KEY,
			Bucket:    getEnv.SPACES_BUCKET,
			Region:    getEnv.SPACES_REGION,
			Endpoint:  getEnv.SPACES_ENDPOINT,
			CDNURL:    getEnv.SPACES_CDN_URL,
		})
		if err != nil {
			log.Printf("Warning: Failed to create Spaces client: %v. Image uploads will be disabled.", err)
			spacesClient = nil
		}
	}

	// Services
	accessService := services.NewAccessService(db)
	notificationService := services.NewNotificationService(db)
	emailService := services.NewEmailService()
	courseService := services.NewCourseService(db, notificationService, redisCache)
	enrollmentService := services.NewEnrollmentService(db, notificationService, emailService)
	ratingService := services.NewRatingService(db, accessService)
	chatService := services.NewChatService(db, accessService)
	statsService := services.NewStatsService(db)
	hub := realtime.NewHub()

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(courseService)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(enrollmentService, accessService)
	ratingHandler := rating_handlers.NewRatingHandler(ratingService)
	chatHandler := chat_handlers.NewChatHandler(chatService, hub, accessService, authMiddleware)
	notificationHandler := notification_handlers.NewNotificationHandler(notificationService)
	adminHandler := admin_handlers.NewAdminHandler(courseService, statsService)
	uploadHandler := upload_handlers.NewUploadHandler(spacesClient)

	// Security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Course routes. Static paths are registered before /:id so Fiber
	// doesn't swallow them as course ids.
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)                                                                  // Public: catalog
	courses.Get("/enrolled", authMiddleware.Required(), enrollmentHandler.MyEnrolledCourses)                     // Protected: my enrolled courses
	courses.Get("/mine", authMiddleware.RequireRole(model.RoleInstructor), courseHandler.MyCourses)           // Instructor: my courses
	courses.Post("/", authMiddleware.RequireRole(model.RoleInstructor), courseHandler.CreateCourse)           // Instructor: create
	courses.Get("/:id", authMiddleware.Optional(), courseHandler.GetCourse)                                      // Public with draft gating
	courses.Put("/:id", authMiddleware.RequireRole(model.RoleInstructor), courseHandler.UpdateCourse)         // Instructor: update own
	courses.Delete("/:id", authMiddleware.RequireRole(model.RoleInstructor), courseHandler.DeleteCourse)      // Instructor: delete own
	courses.Post("/:id/enroll", authMiddleware.Required(), enrollmentHandler.Enroll)                             // Protected: purchase
	courses.Get("/:id/enrollments", authMiddleware.Required(), enrollmentHandler.CourseEnrollments)              // Instructor/admin: roster
	courses.Patch("/:id/enrollment", authMiddleware.Required(), enrollmentHandler.UpdateEnrollment)              // Protected: own progress
	courses.Get("/:id/enrollment-status", authMiddleware.Required(), enrollmentHandler.EnrollmentStatus)         // Protected: membership
	courses.Post("/:id/rate", authMiddleware.RequireRole(model.RoleStudent), ratingHandler.RateCourse)        // Student: rate
	courses.Get("/:id/my-rating", authMiddleware.Required(), ratingHandler.MyRating)                             // Protected: own rating
	courses.Get("/:id/ratings", ratingHandler.CourseRatings)                                                     // Public: all ratings

	// Chat routes
	chat := api.Group("/chat")
	chat.Get("/ws", chatHandler.UpgradeWebsocket, chatHandler.Websocket())             // Live channel (token query param)
	chat.Get("/:courseId", authMiddleware.Required(), chatHandler.History)             // Protected: room history
	chat.Post("/", authMiddleware.Required(), chatHandler.PostMessage)                 // Protected: post message

	// Notification routes (all protected)
	notifications := api.Group("/notifications", authMiddleware.Required())
	notifications.Get("/", notificationHandler.ListNotifications)
	notifications.Put("/read-all", notificationHandler.MarkAllRead)
	notifications.Put("/:id/read", notificationHandler.MarkAsRead)
	notifications.Delete("/clear", notificationHandler.ClearAll)
	notifications.Delete("/:id", notificationHandler.DeleteNotification)

	// Upload routes (protected)
	api.Post("/uploads/image", authMiddleware.Required(), uploadHandler.UploadImage)

	// Admin routes
	admin := api.Group("/admin", authMiddleware.RequireAdmin())
	admin.Get("/courses/pending", adminHandler.PendingCourses)
	admin.Get("/courses", adminHandler.AllCourses)
	admin.Put("/courses/:id/approve", adminHandler.ApproveCourse)
	admin.Put("/courses/:id/reject", adminHandler.RejectCourse)
	admin.Get("/stats", adminHandler.PlatformStats)

	return &Dependencies{
		Hub:           hub,
		RedisCache:    redisCache,
		Notifications: notificationService,
		Ratings:       ratingService,
		Blacklist:     auth.NewBlacklistService(db),
	}
}
