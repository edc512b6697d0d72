package app

import (
	"cactus_village_backend/internal/middleware"
	"cactus_village_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// Public routes, no login required.
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/signup", c.auth.Signup)
		public.POST("/auth/login", c.auth.Login)
		public.POST("/auth/recovery", c.auth.Recovery)
		public.POST("/auth/reissue", c.auth.Reissue)
	}

	// Everything below requires a valid access token.
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.Config))
	{
		authGroup.POST("/auth/logout", c.auth.Logout)

		authGroup.GET("/members/me", c.auth.GetMemberInfo)
		authGroup.PATCH("/members/me", c.auth.EditMember)
		authGroup.DELETE("/members/me", c.auth.DeleteMember)

		authGroup.POST("/challenges", c.challenge.Enroll)
		authGroup.DELETE("/challenges", c.challenge.Delete)
		authGroup.GET("/challenges/records", c.challenge.GetRecords)
		authGroup.POST("/challenges/histories", c.challenge.WriteHistory)
		authGroup.GET("/challenges/message", c.challenge.GetMessage)
		authGroup.GET("/challenges/ranking", c.challenge.GetRanking)
		authGroup.PATCH("/challenges/notified", c.challenge.SetNotified)
	}
}
