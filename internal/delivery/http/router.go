package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/robbertpopa/itec-web-2025/internal/config"
	"github.com/robbertpopa/itec-web-2025/internal/delivery/http/controllers"
	"github.com/robbertpopa/itec-web-2025/internal/delivery/http/controllers/auth"
	"github.com/robbertpopa/itec-web-2025/internal/delivery/http/controllers/course"
	"github.com/robbertpopa/itec-web-2025/internal/delivery/http/controllers/lesson"
	"github.com/robbertpopa/itec-web-2025/internal/delivery/http/controllers/middleware"
	"github.com/robbertpopa/itec-web-2025/internal/delivery/http/controllers/user"
	"github.com/robbertpopa/itec-web-2025/internal/service"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

func InitRoutes(l logger.Log, cfg *config.Config, s service.Collection) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = 8 << 20

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsConfig))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}

	maxUpload := cfg.HTTPServer.MaxUploadSize
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	statusController := controllers.NewStatusHandler(cfg.Env)
	authMiddleware := middleware.NewAuthMiddlewareProvider(l, s.Auth)
	authController := auth.NewAuthHandler(l, s.Auth, s.Users)
	userController := user.NewUserHandler(l, s.Users, maxUpload)
	queryController := course.NewQueryHandler(l, s.Courses, cfg.Listing.RecentCount)
	managementController := course.NewManagementHandler(l, s.Management, maxUpload)
	enrollmentController := course.NewEnrollmentHandler(l, s.Enrollment)
	discussionController := course.NewDiscussionHandler(l, s.Discussion)
	lessonController := lesson.NewManagementHandler(l, s.Lessons, maxUpload)
	scheduleController := lesson.NewScheduleHandler(l, s.Schedule)

	requireAuth := authMiddleware.AuthMiddleware

	v1 := r.Group("/v1", middleware.LoggingMiddleware(l), limiter.Middleware())
	{
		v1.GET("/status", statusController.Status)

		v1.GET("/me", requireAuth, authController.Me)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authController.Register)
			authGroup.POST("/login", authController.Login)
			authGroup.POST("/refresh", authController.Refresh)
		}

		users := v1.Group("/users", requireAuth)
		{
			users.POST("", userController.SaveProfile)
			users.GET("/:userId", userController.Profile)
			users.GET("/:userId/programmed-lessons", scheduleController.Days)
			users.POST("/:userId/programmed-lessons", scheduleController.SetMarked)
		}

		courses := v1.Group("/courses")
		{
			courses.GET("", queryController.ListCourses)
			courses.GET("/recent", queryController.RecentCourses)
			courses.GET("/search", queryController.SearchCourses)
			courses.GET("/:courseId", queryController.CourseByID)
			courses.GET("/:courseId/cover", queryController.Cover)

			owner := courses.Group("", requireAuth)
			{
				owner.POST("", managementController.CreateCourse)
				owner.PUT("/:courseId/cover", managementController.ReplaceCover)
				owner.POST("/:courseId/lessons", lessonController.AddLesson)
				owner.POST("/:courseId/lessons/:lessonIndex/files", lessonController.UploadFile)
				owner.POST("/:courseId/lessons/:lessonIndex/summaries", lessonController.RequestSummary)
			}
		}

		catalog := v1.Group("/catalog")
		{
			catalog.GET("", queryController.Catalog)
			catalog.GET("/recent", queryController.CatalogRecent)
		}

		discussions := v1.Group("/discussions")
		{
			discussions.GET("/:courseId", discussionController.Comments)
			discussions.POST("", requireAuth, discussionController.Post)
		}

		enrollments := v1.Group("/enrollments", requireAuth)
		{
			enrollments.GET("", enrollmentController.Enrollments)
			enrollments.POST("", enrollmentController.Enroll)
			enrollments.DELETE("", enrollmentController.Unenroll)
		}
	}
	return r
}
