package controllers

import (
	"coachingportal/services"
	"coachingportal/utils"

	"github.com/gin-gonic/gin"
)

type StorageController struct {
	storageService *services.StorageService
}

func NewStorageController(storageService *services.StorageService) *StorageController {
	return &StorageController{storageService: storageService}
}

func (sc *StorageController) Usage(c *gin.Context) {
	usage, err := sc.storageService.Usage(c.Request.Context())
	if err != nil {
		handleError(c, err, "Failed to compute storage usage")
		return
	}
	utils.SuccessResponse(c, "Storage usage retrieved successfully", usage)
}
