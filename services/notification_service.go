package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/altamedica/clinic-app/models"
	"github.com/altamedica/clinic-app/realtime"
	"github.com/altamedica/clinic-app/utils"
)

// Notification types written by the workflow engines.
const (
	NotifEodSubmitted    = "eod_submitted"
	NotifEodApproved     = "eod_approved"
	NotifEodRejected     = "eod_rejected"
	NotifEodFlagged      = "eod_flagged"
	NotifEodReset        = "eod_reset"
	NotifCashEntry       = "cash_entry_decision"
	NotifScheduleRequest = "schedule_request_decision"
)

// Notifier is a fire-and-forget sink: it stores a notification row and
// broadcasts it on the websocket hub. Failures are logged and swallowed so a
// notification problem can never fail a workflow transition.
type Notifier struct {
	db *gorm.DB
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{db: db}
}

func (n *Notifier) Notify(userID uint, ntype, title, message, link string) {
	notif := models.Notification{
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
		Link:    link,
		SentAt:  time.Now(),
	}

	if err := n.db.Create(&notif).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to store notification for user %d: %v", userID, err)
		return
	}

	realtime.BroadcastNotification(notif)
}

// NotifyBranchAdmins fans one message out to every active branch admin of
// the branch.
func (n *Notifier) NotifyBranchAdmins(branchID uint, ntype, title, message, link string) {
	var admins []models.User
	if err := n.db.Where("branch_id = ? AND role = ? AND is_active = ?",
		branchID, models.RoleBranchAdmin, true).Find(&admins).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to list branch admins for branch %d: %v", branchID, err)
		return
	}

	for _, admin := range admins {
		n.Notify(admin.ID, ntype, title, message, link)
	}
}
