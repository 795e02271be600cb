package controllers

import (
	"errors"
	"io"
	"net/http"

	"coachingportal/models"
	"coachingportal/services"
	"coachingportal/utils"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	inboxService *services.InboxService
}

func NewNotificationController(inboxService *services.InboxService) *NotificationController {
	return &NotificationController{inboxService: inboxService}
}

func (nc *NotificationController) List(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	view, err := services.ParseInboxView(c.Query("view"))
	if err != nil {
		handleError(c, err, "")
		return
	}

	items, err := nc.inboxService.List(c.Request.Context(), uid, view)
	if err != nil {
		handleError(c, err, "Failed to fetch notifications")
		return
	}
	utils.SuccessResponse(c, "Notifications retrieved successfully", items)
}

// Stream pushes the full visible set as a server-sent event on every change.
func (nc *NotificationController) Stream(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	view, err := services.ParseInboxView(c.Query("view"))
	if err != nil {
		handleError(c, err, "")
		return
	}

	ctx := c.Request.Context()
	updates, err := nc.inboxService.Subscribe(ctx, uid, view)
	if err != nil {
		handleError(c, err, "Failed to subscribe to notifications")
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case items, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("notifications", items)
			return true
		}
	})
}

func (nc *NotificationController) Consume(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	if err := nc.inboxService.Consume(c.Request.Context(), uid, c.Param("id")); err != nil {
		handleError(c, err, "Failed to delete notification")
		return
	}
	c.Status(http.StatusNoContent)
}

func (nc *NotificationController) ConsumeAll(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	view, err := services.ParseInboxView(c.Query("view"))
	if err != nil {
		handleError(c, err, "")
		return
	}

	deleted, err := nc.inboxService.ConsumeAll(c.Request.Context(), uid, view)
	if err != nil {
		handleError(c, err, "Failed to clear notifications")
		return
	}
	utils.SuccessResponse(c, "Notifications cleared", gin.H{"deleted": deleted})
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	err := nc.inboxService.MarkRead(c.Request.Context(), uid, c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		utils.NotFoundResponse(c, "Notification not found")
		return
	}
	if err != nil {
		handleError(c, err, "Failed to mark notification read")
		return
	}
	utils.SuccessResponse(c, "Notification marked as read", nil)
}

func (nc *NotificationController) Open(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	route, err := nc.inboxService.Open(c.Request.Context(), uid, c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		// already consumed elsewhere; fall back to the courses page
		utils.SuccessResponse(c, "Notification already consumed", gin.H{"route": services.RouteFor(models.KindCourse)})
		return
	}
	if err != nil {
		handleError(c, err, "Failed to open notification")
		return
	}
	utils.SuccessResponse(c, "Notification opened", gin.H{"route": route})
}
