package controllers

import (
	"net/http"

	"coachingportal/services"
	"coachingportal/utils"

	"github.com/gin-gonic/gin"
)

type PhotoController struct {
	photoService *services.PhotoService
}

func NewPhotoController(photoService *services.PhotoService) *PhotoController {
	return &PhotoController{photoService: photoService}
}

// Upload takes a multipart form with file and an optional title.
func (pc *PhotoController) Upload(c *gin.Context) {
	adminID, ok := requireUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Image file is required", err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to read uploaded file", err.Error())
		return
	}
	defer file.Close()

	photo, err := pc.photoService.Upload(c.Request.Context(), adminID, services.FileUpload{
		Title:    c.PostForm("title"),
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  file,
	})
	if err != nil {
		handleError(c, err, "Failed to upload photo")
		return
	}
	utils.CreatedResponse(c, "Photo uploaded successfully", photo)
}

func (pc *PhotoController) List(c *gin.Context) {
	photos, err := pc.photoService.List(c.Request.Context())
	if err != nil {
		handleError(c, err, "Failed to list photos")
		return
	}
	utils.SuccessResponse(c, "Photos retrieved successfully", photos)
}

func (pc *PhotoController) Delete(c *gin.Context) {
	if err := pc.photoService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err, "Failed to delete photo")
		return
	}
	c.Status(http.StatusNoContent)
}
