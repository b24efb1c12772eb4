package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/altamedica/clinic-app/models"
	"github.com/altamedica/clinic-app/services"
	"github.com/altamedica/clinic-app/utils"
)

type EodController struct {
	DB  *gorm.DB
	svc *services.EodService
}

func NewEodController(db *gorm.DB) *EodController {
	return &EodController{DB: db, svc: services.NewEodService(db)}
}

// GetSummary -> GET /api/eod/summary?date=YYYY-MM-DD&cashier_id=
// Returns the stored summary or a synthesized OPEN view. A cashier always
// sees their own summary; branch admins may pass cashier_id.
func (ec *EodController) GetSummary(c *gin.Context) {
	actor, ok := currentActor(c, ec.DB)
	if !ok {
		return
	}

	date, err := utils.ParseDate(c.Query("date"))
	if err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	cashierID := actor.ID
	if raw := c.Query("cashier_id"); raw != "" && actor.Role != models.RoleCashier {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("invalid cashier_id"))
			return
		}
		cashierID = uint(parsed)
	}

	summary, err := ec.svc.GetOrSynthesize(actor.BranchID, cashierID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "EOD summary", summary)
}

// SubmitRequest is the operator's input at close of day. All ledger-derived
// figures are recomputed server-side; only the counted cash and remarks are
// taken from the client.
type SubmitRequest struct {
	Date              string          `json:"date"`
	ActualCashCounted decimal.Decimal `json:"actual_cash_counted"`
	VarianceRemarks   string          `json:"variance_remarks"`
}

// Submit -> POST /api/eod/submit
func (ec *EodController) Submit(c *gin.Context) {
	actor, ok := currentActor(c, ec.DB)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	summary, err := ec.svc.Submit(actor.BranchID, actor.ID, date, req.ActualCashCounted, req.VarianceRemarks, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "EOD submitted", summary)
}

// GetRequests -> GET /api/eod/requests?date= (branch admin review screen).
// Soft-fails to an empty overview so an aggregation problem cannot blank the
// whole dashboard.
func (ec *EodController) GetRequests(c *gin.Context) {
	actor, ok := currentActor(c, ec.DB)
	if !ok {
		return
	}

	date, err := utils.ParseDate(c.Query("date"))
	if err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	overview, err := ec.svc.ListDaily(actor.BranchID, date)
	if err != nil {
		utils.ErrorLogger.Printf("EOD overview failed for branch %d: %v", actor.BranchID, err)
		overview = &services.DailyOverview{TotalSalesToday: decimal.Zero}
	}
	utils.RespondJSON(c, http.StatusOK, "EOD requests", overview)
}

func (ec *EodController) summaryID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("invalid summary id"))
		return 0, false
	}
	return uint(id), true
}

// Approve -> POST /api/eod/:id/approve
func (ec *EodController) Approve(c *gin.Context) {
	actor, ok := currentActor(c, ec.DB)
	if !ok {
		return
	}
	id, ok := ec.summaryID(c)
	if !ok {
		return
	}

	summary, err := ec.svc.Approve(id, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "EOD approved", summary)
}

// Reject -> POST /api/eod/:id/reject {reason}
func (ec *EodController) Reject(c *gin.Context) {
	actor, ok := currentActor(c, ec.DB)
	if !ok {
		return
	}
	id, ok := ec.summaryID(c)
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

	summary, err := ec.svc.Reject(id, actor, body.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "EOD rejected", summary)
}

// Flag -> POST /api/eod/:id/flag {reason, severity}
func (ec *EodController) Flag(c *gin.Context) {
	actor, ok := currentActor(c, ec.DB)
	if !ok {
		return
	}
	id, ok := ec.summaryID(c)
	if !ok {
		return
	}

	var body struct {
		Reason   string `json:"reason" binding:"required"`
		Severity string `json:"severity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	summary, err := ec.svc.Flag(id, actor, body.Reason, body.Severity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "EOD flagged", summary)
}

// Reset -> POST /api/eod/:id/reset (administrative override)
func (ec *EodController) Reset(c *gin.Context) {
	actor, ok := currentActor(c, ec.DB)
	if !ok {
		return
	}
	id, ok := ec.summaryID(c)
	if !ok {
		return
	}

	summary, err := ec.svc.Reset(id, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "EOD reset", summary)
}
