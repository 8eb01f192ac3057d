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

func NewRouter(serviceName string, origins []string, log *logger.Logger, authHandler *AuthHandler, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.RequestLogger(log))

	config := cors.DefaultConfig()
	if len(origins) > 0 {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(config))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/api/v1/authentication")
	{
		auth.POST("/sign-up", limiter.Limit("sign_up", 5, time.Minute), authHandler.SignUp)
		auth.POST("/sign-in", limiter.Limit("sign_in", 5, time.Minute), authHandler.SignIn)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/sign-out", authHandler.SignOut)
	}
	return r
}
