package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/classora/classora-auth/internal/config"
	"github.com/classora/classora-auth/internal/http/handler"
	httpmiddleware "github.com/classora/classora-auth/internal/http/middleware"
	"github.com/classora/classora-auth/internal/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, authHandler *handler.AuthHandler, authMiddleware *httpmiddleware.Auth, rateLimiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.Tenant())
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/logout", authHandler.Logout)

		authGroup.GET("/me", authMiddleware.RequireAuth, authHandler.Me)
		authGroup.PUT("/updatedetails", authMiddleware.RequireAuth, authHandler.UpdateDetails)
		authGroup.PUT("/updatepassword", authMiddleware.RequireAuth, authHandler.UpdatePassword)
	}

	return r
}
