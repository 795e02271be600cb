package controllers

import (
	"coachingportal/services"
	"coachingportal/utils"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService *services.UserService
}

func NewUserController(userService *services.UserService) *UserController {
	return &UserController{userService: userService}
}

// Register creates the student profile for an identity that already signed up
// with the identity provider.
func (uc *UserController) Register(c *gin.Context) {
	var req services.StudentRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	user, err := uc.userService.RegisterStudent(c.Request.Context(), req)
	if err != nil {
		handleError(c, err, "Failed to register student")
		return
	}
	utils.CreatedResponse(c, "Student registered successfully", user)
}

// RegisterAdmin creates the one admin profile; later calls get 403.
func (uc *UserController) RegisterAdmin(c *gin.Context) {
	var req services.AdminRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	user, err := uc.userService.RegisterAdmin(c.Request.Context(), req)
	if err != nil {
		handleError(c, err, "Failed to register admin")
		return
	}
	utils.CreatedResponse(c, "Admin registered successfully", user)
}

func (uc *UserController) Me(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := uc.userService.Get(c.Request.Context(), uid)
	if err != nil {
		handleError(c, err, "Failed to load profile")
		return
	}
	utils.SuccessResponse(c, "Profile retrieved successfully", user)
}

func (uc *UserController) Enroll(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	var req struct {
		CourseID string `json:"courseId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "courseId is required", err.Error())
		return
	}

	user, err := uc.userService.Enroll(c.Request.Context(), uid, req.CourseID)
	if err != nil {
		handleError(c, err, "Failed to enroll")
		return
	}
	utils.SuccessResponse(c, "Enrolled successfully", user)
}

func (uc *UserController) Unenroll(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := uc.userService.Unenroll(c.Request.Context(), uid, c.Param("courseId"))
	if err != nil {
		handleError(c, err, "Failed to unenroll")
		return
	}
	utils.SuccessResponse(c, "Unenrolled successfully", user)
}
