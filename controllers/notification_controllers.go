package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/altamedica/clinic-app/models"
	"github.com/altamedica/clinic-app/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetNotifications -> list the authenticated user's notifications
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	actor, ok := currentActor(c, nc.DB)
	if !ok {
		return
	}

	var notifs []models.Notification
	if err := nc.DB.Where("user_id = ?", actor.ID).
		Order("sent_at DESC").Limit(100).Find(&notifs).Error; err != nil {
		utils.ErrorLogger.Printf("Notification listing failed for user %d: %v", actor.ID, err)
		notifs = []models.Notification{}
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications", notifs)
}

// MarkRead -> PATCH /api/notifications/:id/read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	actor, ok := currentActor(c, nc.DB)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("invalid notification id"))
		return
	}

	result := nc.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", uint(id), actor.ID).
		Update("is_read", true)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("notification not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked read", gin.H{"id": id})
}
