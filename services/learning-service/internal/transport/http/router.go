package handlers

import (
	"net/http"
	"time"

	"learningcenter/pkg/logger"
	"learningcenter/pkg/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	RoleInstructor = "ROLE_INSTRUCTOR"
	RoleAdmin      = "ROLE_ADMIN"
)

type RouterConfig struct {
	ServiceName      string
	AllowedOrigins   []string
	EnrollmentLimit  int
	EnrollmentWindow time.Duration
}

func NewRouter(
	cfg RouterConfig,
	log *logger.Logger,
	auth *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
	courseHandler *CourseHandler,
	studentHandler *StudentHandler,
	enrollmentHandler *EnrollmentHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middleware.RequestLogger(log))

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limit, window := cfg.EnrollmentLimit, cfg.EnrollmentWindow
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	staff := auth.RequireRoles(RoleInstructor, RoleAdmin)

	api := r.Group("/api/v1")
	api.Use(auth.RequireAuth())
	{
		courses := api.Group("/courses")
		{
			courses.GET("", courseHandler.List)
			courses.POST("", staff, courseHandler.Create)
			courses.GET("/:courseId", courseHandler.GetOne)
			courses.PUT("/:courseId", staff, courseHandler.Update)
			courses.DELETE("/:courseId", staff, courseHandler.Delete)
			courses.GET("/:courseId/learning-path-items", courseHandler.ListPathItems)
			courses.GET("/:courseId/learning-path-items/:tutorialId", courseHandler.GetPathItem)
			courses.POST("/:courseId/learning-path-items/:tutorialId", staff, courseHandler.AddPathItem)
			courses.GET("/:courseId/enrollments", courseHandler.ListEnrollments)
		}
		students := api.Group("/students")
		{
			students.GET("", studentHandler.List)
			students.POST("", studentHandler.Create)
			students.GET("/:studentRecordId", studentHandler.GetOne)
			students.GET("/:studentRecordId/enrollments", studentHandler.ListEnrollments)
		}
		enrollments := api.Group("/enrollments")
		{
			enrollments.GET("", enrollmentHandler.List)
			enrollments.POST("", limiter.Limit("enrollments", limit, window), enrollmentHandler.Request)
			enrollments.GET("/:id", enrollmentHandler.GetOne)
			enrollments.POST("/:id/confirmations", enrollmentHandler.Confirm)
			enrollments.POST("/:id/rejections", enrollmentHandler.Reject)
			enrollments.POST("/:id/cancellations", enrollmentHandler.Cancel)
			enrollments.POST("/:id/tutorials/:tutorialId/starts", enrollmentHandler.StartTutorial)
			enrollments.POST("/:id/tutorials/:tutorialId/completions", enrollmentHandler.CompleteTutorial)
		}
	}
	return r
}
