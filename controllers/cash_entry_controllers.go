package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/altamedica/clinic-app/models"
	"github.com/altamedica/clinic-app/services"
	"github.com/altamedica/clinic-app/utils"
)

type CashEntryController struct {
	DB  *gorm.DB
	svc *services.ApprovalService
}

func NewCashEntryController(db *gorm.DB) *CashEntryController {
	return &CashEntryController{DB: db, svc: services.NewApprovalService(db)}
}

// GetCashEntries -> GET /api/cash-entries?date_from=&date_to=&type=&status=
func (cc *CashEntryController) GetCashEntries(c *gin.Context) {
	actor, ok := currentActor(c, cc.DB)
	if !ok {
		return
	}

	query := cc.DB.Where("branch_id = ?", actor.BranchID)

	if raw := c.Query("date_from"); raw != "" {
		from, err := utils.ParseDate(raw)
		if err != nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, err)
			return
		}
		query = query.Where("entry_date >= ?", from)
	}
	if raw := c.Query("date_to"); raw != "" {
		to, err := utils.ParseDate(raw)
		if err != nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, err)
			return
		}
		query = query.Where("entry_date <= ?", to)
	}
	if t := c.Query("type"); t != "" {
		query = query.Where("entry_type = ?", t)
	}
	if s := c.Query("status"); s != "" {
		query = query.Where("approval_status = ?", s)
	}
	// Cashiers only see their own entries.
	if actor.Role == models.RoleCashier {
		query = query.Where("user_id = ?", actor.ID)
	}

	var entries []models.CashEntry
	if err := query.Order("entry_date DESC, id DESC").Find(&entries).Error; err != nil {
		utils.ErrorLogger.Printf("Cash entry listing failed for branch %d: %v", actor.BranchID, err)
		entries = []models.CashEntry{}
	}
	utils.RespondJSON(c, http.StatusOK, "Cash entries", entries)
}

// CreateCashEntry -> POST /api/cash-entries
func (cc *CashEntryController) CreateCashEntry(c *gin.Context) {
	actor, ok := currentActor(c, cc.DB)
	if !ok {
		return
	}

	var req struct {
		EntryType   string          `json:"entry_type" binding:"required,oneof=CASH_IN CASH_OUT"`
		Category    string          `json:"category"`
		Amount      decimal.Decimal `json:"amount" binding:"required"`
		Description string          `json:"description"`
		Remarks     string          `json:"remarks"`
		EntryDate   string          `json:"entry_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}
	if !req.Amount.IsPositive() {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("amount must be greater than zero"))
		return
	}

	date, err := utils.ParseDate(req.EntryDate)
	if err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	// New postings are refused once the day's EOD left OPEN.
	closed, err := services.NewEodService(cc.DB).IsDayClosed(actor.BranchID, actor.ID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if closed {
		utils.RespondError(c, http.StatusBadRequest, errors.New("day is closed for this cashier, reset the EOD first"))
		return
	}

	entry := models.CashEntry{
		BranchID:        actor.BranchID,
		UserID:          actor.ID,
		EntryType:       req.EntryType,
		Category:        req.Category,
		Amount:          req.Amount,
		Description:     req.Description,
		ReferenceNumber: "CE-" + uuid.NewString()[:8],
		Remarks:         req.Remarks,
		EntryDate:       date,
		ApprovalStatus:  models.CashEntryPending,
	}
	if err := cc.DB.Create(&entry).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Cash entry %d created (%s %s by user %d)",
		entry.ID, entry.EntryType, utils.FormatAmount(entry.Amount), actor.ID)
	utils.RespondJSON(c, http.StatusCreated, "Cash entry created", entry)
}

func (cc *CashEntryController) entryID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("invalid cash entry id"))
		return 0, false
	}
	return uint(id), true
}

// Approve -> POST /api/cash-entries/:id/approve
func (cc *CashEntryController) Approve(c *gin.Context) {
	actor, ok := currentActor(c, cc.DB)
	if !ok {
		return
	}
	id, ok := cc.entryID(c)
	if !ok {
		return
	}

	var body struct {
		Notes string `json:"notes"`
	}
	// Notes payload is optional
	_ = c.ShouldBindJSON(&body)

	entry, err := cc.svc.ApproveCashEntry(id, actor, body.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cash entry approved", entry)
}

// Reject -> POST /api/cash-entries/:id/reject {reason}
func (cc *CashEntryController) Reject(c *gin.Context) {
	actor, ok := currentActor(c, cc.DB)
	if !ok {
		return
	}
	id, ok := cc.entryID(c)
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	entry, err := cc.svc.RejectCashEntry(id, actor, body.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cash entry rejected", entry)
}
