// Package api assembles the gin engine serving the /api surface.
package api

import (
	"net/http"
	"time"

	"sentra/backend/internal/api/handler"
	"sentra/backend/internal/api/middleware"
	"sentra/backend/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(h *handler.Handler, authn middleware.Authenticator, cfg config.HTTPConfig, log *zap.Logger) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logger(log))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	authed := middleware.Authenticate(authn, false, log)

	api := r.Group("/api")
	api.GET("/health", h.HealthCheck)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.GET("/me", authed, h.Me)
	authGroup.POST("/logout", authed, h.Logout)

	api.GET("/awareness", h.ListAwareness)
	awareness := api.Group("/awareness", authed)
	awareness.POST("", h.CreateAwareness)
	awareness.PATCH("/:id", h.UpdateAwareness)
	awareness.DELETE("/:id", h.DeleteAwareness)

	incidents := api.Group("/incidents", authed)
	incidents.POST("", h.CreateIncident)
	incidents.GET("", h.ListIncidents)
	incidents.GET("/my", h.ListMyIncidents)
	incidents.GET("/stats", h.IncidentStats)
	incidents.GET("/export", h.ExportIncidents)
	incidents.GET("/:id", h.GetIncident)
	incidents.PATCH("/:id/status", h.UpdateIncidentStatus)
	incidents.PATCH("/:id/assign", h.AssignIncident)

	api.GET("/users/staff", authed, h.ListStaff)
	api.GET("/live", middleware.Authenticate(authn, true, log), h.ServeLive)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
