package routes

import "github.com/gin-gonic/gin"

func RegisterPublicRoutes(rg *gin.RouterGroup, h Handlers) {
	rg.GET("/courses", h.Courses.List)                 // GET /courses?status=
	rg.POST("/students/register", h.Users.Register)    // POST /students/register
	rg.POST("/admins/register", h.Users.RegisterAdmin) // first admin only
	rg.GET("/photos", h.Photos.List)                   // gallery, newest first
}
