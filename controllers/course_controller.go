package controllers

import (
	"coachingportal/models"
	"coachingportal/services"
	"coachingportal/utils"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	courseService *services.CourseService
}

func NewCourseController(courseService *services.CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

// List defaults to active courses; ?status=archived or ?status= (empty) widens it.
func (cc *CourseController) List(c *gin.Context) {
	courses, err := cc.courseService.List(c.Request.Context(), c.DefaultQuery("status", models.CourseStatusActive))
	if err != nil {
		handleError(c, err, "Failed to list courses")
		return
	}
	utils.SuccessResponse(c, "Courses retrieved successfully", courses)
}

func (cc *CourseController) Create(c *gin.Context) {
	adminID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.CourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	course, err := cc.courseService.Create(c.Request.Context(), adminID, req)
	if err != nil {
		handleError(c, err, "Failed to create course")
		return
	}
	utils.CreatedResponse(c, "Course added successfully", course)
}

func (cc *CourseController) Update(c *gin.Context) {
	var req services.CourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	course, err := cc.courseService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handleError(c, err, "Failed to update course")
		return
	}
	utils.SuccessResponse(c, "Course updated successfully", course)
}

func (cc *CourseController) Archive(c *gin.Context) {
	if err := cc.courseService.Archive(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err, "Failed to archive course")
		return
	}
	utils.SuccessResponse(c, "Course archived successfully", nil)
}
