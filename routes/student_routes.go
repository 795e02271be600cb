package routes

import (
	"coachingportal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterStudentRoutes(rg *gin.RouterGroup, jwtSecret string, h Handlers) {
	authed := rg.Group("")
	authed.Use(middleware.AuthMiddleware(jwtSecret))
	{
		authed.GET("/me", h.Users.Me)
		authed.POST("/me/enrollments", h.Users.Enroll)
		authed.DELETE("/me/enrollments/:courseId", h.Users.Unenroll)

		authed.GET("/courses/:courseId/artifacts", h.Artifacts.List) // ?kind=notes|result
		authed.GET("/artifacts/:id/download", h.Artifacts.Download)
	}

	rg.GET("/notifications/stream", middleware.StreamAuthMiddleware(jwtSecret), h.Notifications.Stream) // server-sent events, ?token= allowed

	notifications := rg.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(jwtSecret))
	{
		notifications.GET("", h.Notifications.List)           // ?view=enrolled|all
		notifications.DELETE("", h.Notifications.ConsumeAll)  // clear visible
		notifications.DELETE("/:id", h.Notifications.Consume) // idempotent
		notifications.PATCH("/:id/read", h.Notifications.MarkRead)
		notifications.POST("/:id/open", h.Notifications.Open) // returns click-through route
	}
}
