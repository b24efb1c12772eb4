package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/altamedica/clinic-app/models"
	"github.com/altamedica/clinic-app/services"
	"github.com/altamedica/clinic-app/utils"
)

type ScheduleRequestController struct {
	DB  *gorm.DB
	svc *services.ApprovalService
}

func NewScheduleRequestController(db *gorm.DB) *ScheduleRequestController {
	return &ScheduleRequestController{DB: db, svc: services.NewApprovalService(db)}
}

// GetRequests -> GET /api/requests/schedule-modifications?status=
// Merged doctor + employee list with counts. Soft-fails to empty results.
func (sc *ScheduleRequestController) GetRequests(c *gin.Context) {
	actor, ok := currentActor(c, sc.DB)
	if !ok {
		return
	}

	requests, counts, err := sc.svc.ListRequests(actor.BranchID, c.Query("status"))
	if err != nil {
		utils.ErrorLogger.Printf("Request listing failed for branch %d: %v", actor.BranchID, err)
		requests = []services.UnifiedRequest{}
		counts = &services.RequestCounts{}
	}
	utils.RespondJSON(c, http.StatusOK, "Schedule requests", gin.H{
		"requests": requests,
		"counts":   counts,
	})
}

// CreateDoctorRequest -> POST /api/requests/schedule-modifications
func (sc *ScheduleRequestController) CreateDoctorRequest(c *gin.Context) {
	actor, ok := currentActor(c, sc.DB)
	if !ok {
		return
	}
	if actor.Role != models.RoleDoctor {
		utils.RespondError(c, http.StatusForbidden, errors.New("only doctors may file schedule modification requests"))
		return
	}

	var req struct {
		RequestType     string `json:"request_type" binding:"required,oneof=block_date block_schedule cancel_block delay_start early_end limit_appointments"`
		ScheduleID      uint   `json:"schedule_id" binding:"required"`
		TargetDate      string `json:"target_date"`
		NewStartTime    string `json:"new_start_time"`
		NewEndTime      string `json:"new_end_time"`
		MaxAppointments int    `json:"max_appointments"`
		Reason          string `json:"reason" binding:"required,max=500"`
		ParentRequestID *uint  `json:"parent_request_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	var schedule models.DoctorSchedule
	if err := sc.DB.Where("id = ? AND branch_id = ?", req.ScheduleID, actor.BranchID).
		First(&schedule).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("schedule not found"))
		return
	}

	record := models.ScheduleModificationRequest{
		BranchID:        actor.BranchID,
		DoctorID:        actor.ID,
		RequestType:     req.RequestType,
		ScheduleID:      req.ScheduleID,
		NewStartTime:    req.NewStartTime,
		NewEndTime:      req.NewEndTime,
		MaxAppointments: req.MaxAppointments,
		Reason:          req.Reason,
		Status:          models.RequestPending,
	}

	if req.TargetDate != "" {
		date, err := utils.ParseDate(req.TargetDate)
		if err != nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, err)
			return
		}
		record.TargetDate = &date
	}
	if req.RequestType == models.DoctorReqBlockDate && record.TargetDate == nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("block_date requires target_date"))
		return
	}
	if req.RequestType == models.DoctorReqCancelBlock {
		if req.ParentRequestID == nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("cancel_block requires parent_request_id"))
			return
		}
		var parent models.ScheduleModificationRequest
		if err := sc.DB.Where("id = ? AND branch_id = ? AND status = ?",
			*req.ParentRequestID, actor.BranchID, models.RequestApproved).
			First(&parent).Error; err != nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("parent request must be an approved block"))
			return
		}
		record.ParentRequestID = req.ParentRequestID
	}

	if err := sc.DB.Create(&record).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Schedule modification request created", record)
}

// CreateEmployeeRequest -> POST /api/requests/employee-schedule
func (sc *ScheduleRequestController) CreateEmployeeRequest(c *gin.Context) {
	actor, ok := currentActor(c, sc.DB)
	if !ok {
		return
	}

	var req struct {
		RequestType     string `json:"request_type" binding:"required,oneof=change interchange time_off cancellation"`
		ScheduleID      uint   `json:"schedule_id" binding:"required"`
		TargetDate      string `json:"target_date" binding:"required"`
		NewStart        string `json:"new_start"`
		NewEnd          string `json:"new_end"`
		NewDate         string `json:"new_date"`
		InterchangeWith *uint  `json:"interchange_with"`
		Reason          string `json:"reason" binding:"required,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	var schedule models.EmployeeSchedule
	if err := sc.DB.Where("id = ? AND branch_id = ? AND user_id = ?",
		req.ScheduleID, actor.BranchID, actor.ID).First(&schedule).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("schedule not found"))
		return
	}

	date, err := utils.ParseDate(req.TargetDate)
	if err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	record := models.ScheduleChangeRequest{
		BranchID:      actor.BranchID,
		UserID:        actor.ID,
		RequestType:   req.RequestType,
		ScheduleID:    req.ScheduleID,
		TargetDate:    date,
		OriginalStart: schedule.ShiftStart,
		OriginalEnd:   schedule.ShiftEnd,
		NewStart:      req.NewStart,
		NewEnd:        req.NewEnd,
		Reason:        req.Reason,
		Status:        models.RequestPending,
	}

	if req.NewDate != "" {
		newDate, err := utils.ParseDate(req.NewDate)
		if err != nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, err)
			return
		}
		record.NewDate = &newDate
	}

	if req.RequestType == models.EmployeeReqInterchange {
		if req.InterchangeWith == nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("interchange requires interchange_with"))
			return
		}
		var peer models.User
		if err := sc.DB.Where("id = ? AND branch_id = ? AND is_active = ?",
			*req.InterchangeWith, actor.BranchID, true).First(&peer).Error; err != nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("interchange peer not found in branch"))
			return
		}
		// Snapshot the peer's shift as the requested new shift.
		var peerSchedule models.EmployeeSchedule
		if err := sc.DB.Where("user_id = ? AND branch_id = ? AND is_active = ?",
			peer.ID, actor.BranchID, true).First(&peerSchedule).Error; err != nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("interchange peer has no active schedule"))
			return
		}
		record.InterchangeWith = req.InterchangeWith
		record.PeerStatus = models.PeerPending
		record.NewStart = peerSchedule.ShiftStart
		record.NewEnd = peerSchedule.ShiftEnd
	}

	if err := sc.DB.Create(&record).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Schedule change request created", record)
}

func (sc *ScheduleRequestController) requestID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("invalid request id"))
		return 0, false
	}
	return uint(id), true
}

type decisionBody struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

// ApproveDoctorRequest -> POST /api/requests/schedule-modifications/:id/approve
func (sc *ScheduleRequestController) ApproveDoctorRequest(c *gin.Context) {
	actor, ok := currentActor(c, sc.DB)
	if !ok {
		return
	}
	id, ok := sc.requestID(c)
	if !ok {
		return
	}

	var body decisionBody
	_ = c.ShouldBindJSON(&body)

	req, err := sc.svc.ApproveDoctorRequest(id, actor, body.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Request approved", req)
}

// RejectDoctorRequest -> POST /api/requests/schedule-modifications/:id/reject
func (sc *ScheduleRequestController) RejectDoctorRequest(c *gin.Context) {
	actor, ok := currentActor(c, sc.DB)
	if !ok {
		return
	}
	id, ok := sc.requestID(c)
	if !ok {
		return
	}

	var body decisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	req, err := sc.svc.RejectDoctorRequest(id, actor, body.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Request rejected", req)
}

// ApproveEmployeeRequest -> POST /api/requests/employee-schedule/:id/approve
func (sc *ScheduleRequestController) ApproveEmployeeRequest(c *gin.Context) {
	actor, ok := currentActor(c, sc.DB)
	if !ok {
		return
	}
	id, ok := sc.requestID(c)
	if !ok {
		return
	}

	var body decisionBody
	_ = c.ShouldBindJSON(&body)

	req, err := sc.svc.ApproveEmployeeRequest(id, actor, body.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Request approved", req)
}

// RejectEmployeeRequest -> POST /api/requests/employee-schedule/:id/reject
func (sc *ScheduleRequestController) RejectEmployeeRequest(c *gin.Context) {
	actor, ok := currentActor(c, sc.DB)
	if !ok {
		return
	}
	id, ok := sc.requestID(c)
	if !ok {
		return
	}

	var body decisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	req, err := sc.svc.RejectEmployeeRequest(id, actor, body.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Request rejected", req)
}

// RespondInterchange -> POST /api/requests/employee-schedule/:id/peer-response
func (sc *ScheduleRequestController) RespondInterchange(c *gin.Context) {
	actor, ok := currentActor(c, sc.DB)
	if !ok {
		return
	}
	id, ok := sc.requestID(c)
	if !ok {
		return
	}

	var body struct {
		Accept *bool `json:"accept" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	req, err := sc.svc.RespondInterchange(id, actor, *body.Accept)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Peer response recorded", req)
}
