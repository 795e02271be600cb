package controllers

import (
	"context"
	"net/http"

	"coachingportal/models"
	"coachingportal/services"
	"coachingportal/utils"

	"github.com/gin-gonic/gin"
)

type ArtifactController struct {
	artifactService *services.ArtifactService
}

func NewArtifactController(artifactService *services.ArtifactService) *ArtifactController {
	return &ArtifactController{artifactService: artifactService}
}

func (ac *ArtifactController) UploadNotes(c *gin.Context) {
	ac.handleUpload(c, ac.artifactService.UploadNotes, "Notes uploaded successfully")
}

func (ac *ArtifactController) UploadResultPDF(c *gin.Context) {
	ac.handleUpload(c, ac.artifactService.PublishResultPDF, "Result uploaded successfully")
}

type uploadFunc func(ctx context.Context, adminID string, up services.FileUpload) (*models.Artifact, error)

func (ac *ArtifactController) handleUpload(c *gin.Context, upload uploadFunc, successMessage string) {
	adminID, ok := requireUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "PDF file is required", err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to read uploaded file", err.Error())
		return
	}
	defer file.Close()

	artifact, err := upload(c.Request.Context(), adminID, services.FileUpload{
		CourseID: c.PostForm("courseId"),
		Title:    c.PostForm("title"),
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  file,
	})
	if err != nil {
		handleError(c, err, "Failed to upload file")
		return
	}
	utils.CreatedResponse(c, successMessage, artifact)
}

func (ac *ArtifactController) PublishManualResult(c *gin.Context) {
	adminID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.ManualResultInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	artifact, err := ac.artifactService.PublishManualResult(c.Request.Context(), adminID, req)
	if err != nil {
		handleError(c, err, "Failed to add result")
		return
	}
	utils.CreatedResponse(c, "Result added successfully", artifact)
}

func (ac *ArtifactController) List(c *gin.Context) {
	artifacts, err := ac.artifactService.List(c.Request.Context(), c.Param("courseId"), models.NotificationKind(c.Query("kind")))
	if err != nil {
		handleError(c, err, "Failed to list artifacts")
		return
	}
	utils.SuccessResponse(c, "Artifacts retrieved successfully", artifacts)
}

func (ac *ArtifactController) Download(c *gin.Context) {
	artifact, url, err := ac.artifactService.DownloadURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err, "Failed to sign download link")
		return
	}
	utils.SuccessResponse(c, "Download link generated", gin.H{
		"url":        url,
		"title":      artifact.Title,
		"expires_in": int(services.PreviewURLDuration.Seconds()),
	})
}

func (ac *ArtifactController) Delete(c *gin.Context) {
	if err := ac.artifactService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err, "Failed to delete artifact")
		return
	}
	c.Status(http.StatusNoContent)
}
