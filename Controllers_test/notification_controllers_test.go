package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/altamedica/clinic-app/controllers"
	"github.com/altamedica/clinic-app/models"
)

func setupNotificationRouter(db *gorm.DB, actor models.User) *gin.Engine {
	router := gin.New()
	ctrl := controllers.NewNotificationController(db)
	api := router.Group("/api", asUser(actor))
	api.GET("/notifications", ctrl.GetNotifications)
	api.PATCH("/notifications/:id/read", ctrl.MarkRead)
	return router
}

func TestNotificationsAreScopedToUser(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)

	mine := models.Notification{
		UserID: f.Cashier.ID, Type: "eod_decision", Title: "EOD approved",
		Message: "Your summary was approved", SentAt: time.Now(),
	}
	other := models.Notification{
		UserID: f.Admin.ID, Type: "eod_submitted", Title: "EOD submitted",
		Message: "A summary is waiting", SentAt: time.Now(),
	}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&other).Error)

	w := doJSON(t, setupNotificationRouter(db, f.Cashier), "GET", "/api/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	notifs := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, notifs, 1)
	assert.Equal(t, "EOD approved", notifs[0].(map[string]interface{})["title"])
}

func TestMarkReadOnlyOwnNotifications(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)

	notif := models.Notification{
		UserID: f.Cashier.ID, Type: "eod_decision", Title: "EOD approved",
		Message: "m", SentAt: time.Now(),
	}
	require.NoError(t, db.Create(&notif).Error)

	// Another user cannot mark it
	w := doJSON(t, setupNotificationRouter(db, f.Admin), "PATCH",
		fmt.Sprintf("/api/notifications/%d/read", notif.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, setupNotificationRouter(db, f.Cashier), "PATCH",
		fmt.Sprintf("/api/notifications/%d/read", notif.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Notification
	db.First(&reloaded, notif.ID)
	assert.True(t, reloaded.IsRead)
}
