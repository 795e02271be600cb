package routes

import (
	"coachingportal/middleware"
	"coachingportal/models"

	"github.com/gin-gonic/gin"
)

func RegisterAdminRoutes(rg *gin.RouterGroup, jwtSecret string, h Handlers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtSecret), middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/courses", h.Courses.Create)
		admin.PUT("/courses/:id", h.Courses.Update)
		admin.POST("/courses/:id/archive", h.Courses.Archive)

		admin.POST("/notes", h.Artifacts.UploadNotes)           // multipart: file, title, courseId
		admin.POST("/results/pdf", h.Artifacts.UploadResultPDF) // multipart: file, title, courseId
		admin.POST("/results/manual", h.Artifacts.PublishManualResult)
		admin.DELETE("/artifacts/:id", h.Artifacts.Delete)

		admin.POST("/photos", h.Photos.Upload) // multipart: file, title
		admin.DELETE("/photos/:id", h.Photos.Delete)

		admin.GET("/storage/usage", h.Storage.Usage)
	}
}
