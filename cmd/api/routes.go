package main

import (
	"log/slog"
	"net/http"

	"callbridge/internal/config"
	"callbridge/internal/cors"
	"callbridge/internal/httpapi"
	"callbridge/pkg/logger"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires middleware and HTTP routes.
// Keep this file free of business logic; handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, cfg config.Config, log *slog.Logger, h httpapi.Handlers, authMW, capMW gin.HandlerFunc) {
	r.Use(logger.Middleware(log))

	// CORS runs before recovery so even panicking requests carry the
	// policy headers; it also answers all preflights with 204.
	r.Use(cors.Middleware(cors.NewPolicy(cfg.CORS.AllowedOrigins)))
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}))

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	if authMW != nil {
		v1.Use(authMW)
	}
	{
		calls := v1.Group("/calls")
		if capMW != nil {
			calls.Use(capMW)
		}
		calls.POST("/invite", h.SendInvite)

		v1.GET("/rtc/token", h.RTCToken)
	}

	// Aliases kept for clients of the original deployment.
	compat := r.Group("/")
	if authMW != nil {
		compat.Use(authMW)
	}
	{
		if capMW != nil {
			compat.POST("/sendCallInvitation", capMW, h.SendInvite)
		} else {
			compat.POST("/sendCallInvitation", h.SendInvite)
		}
		compat.GET("/token", h.RTCToken)
		compat.GET("/rtcToken", h.RTCToken)
	}
}
