package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"regauth/internal/handlers"
	"regauth/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	userHandler *handlers.UserHandler,
	verifyHandler *handlers.VerifyHandler,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	tokens middleware.TokenResolver,
	limiter *middleware.RateLimiter,
	metricsHandler http.Handler,
) *gin.Engine {

	// ---- infra
	r.GET("/healthz", healthHandler.Health)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ---- public, rate limited
	public := r.Group("/")
	if limiter != nil {
		public.Use(limiter.Middleware())
	}
	{
		public.POST("/register", userHandler.Register)
		public.POST("/verify", verifyHandler.Verify)
		public.POST("/login", authHandler.Login)
	}

	// ---- bearer
	private := r.Group("/", middleware.Authenticate(tokens))
	{
		private.POST("/logout", authHandler.Logout)
		private.GET("/user", authHandler.Me)
	}

	return r
}
