package controllers

import (
	"errors"
	"fmt"

	"coachingportal/services"
	"coachingportal/utils"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("userId")
	if !exists {
		return "", fmt.Errorf("user not authenticated")
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid user ID")
	}
	return id, nil
}

// requireUser writes a 401 and returns false when the caller is unknown.
func requireUser(c *gin.Context) (string, bool) {
	uid, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return "", false
	}
	return uid, true
}

// handleError maps service errors onto the response envelope.
func handleError(c *gin.Context, err error, defaultMessage string) {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidKind),
		errors.Is(err, services.ErrCourseRequired):
		utils.BadRequestResponse(c, "Invalid request", err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, "Already exists", err.Error())
	case errors.Is(err, services.ErrAdminExists):
		utils.ForbiddenResponse(c, "Admin already exists. Signup disabled.")
	case errors.Is(err, services.ErrCourseArchived):
		utils.UnprocessableEntityResponse(c, "Course is archived", err.Error())
	case errors.Is(err, services.ErrStorageLimitExceeded):
		utils.InsufficientStorageResponse(c, err.Error())
	default:
		utils.LogError(defaultMessage, err)
		utils.InternalServerErrorResponse(c, defaultMessage, err.Error())
	}
}
