package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/altamedica/clinic-app/models"
	"github.com/altamedica/clinic-app/utils"
)

// ScheduleApplier realizes approved schedule requests. It is a pure
// side-effect executor: the approval decision itself belongs to the
// ApprovalService, which calls these on its own transaction so a failed
// apply rolls the decision back too.
type ScheduleApplier struct{}

func NewScheduleApplier() *ScheduleApplier {
	return &ScheduleApplier{}
}

// ApplyDoctorRequest dispatches on the doctor request type.
func (a *ScheduleApplier) ApplyDoctorRequest(tx *gorm.DB, req *models.ScheduleModificationRequest) error {
	switch req.RequestType {
	case models.DoctorReqBlockDate:
		return a.applyBlockDate(tx, req)
	case models.DoctorReqBlockSchedule:
		return a.applyBlockSchedule(tx, req)
	case models.DoctorReqCancelBlock:
		return a.applyCancelBlock(tx, req)
	case models.DoctorReqDelayStart, models.DoctorReqEarlyEnd, models.DoctorReqLimitAppointments:
		// No slot-generation effect exists yet for these; the approval itself
		// is the record of the decision.
		utils.InfoLogger.Printf("Schedule request %d (%s) approved, no applier effect", req.ID, req.RequestType)
		return nil
	default:
		return fmt.Errorf("unknown doctor request type %q", req.RequestType)
	}
}

func (a *ScheduleApplier) applyBlockDate(tx *gorm.DB, req *models.ScheduleModificationRequest) error {
	if req.TargetDate == nil {
		return fmt.Errorf("block_date request %d has no target date", req.ID)
	}
	cancel := models.ScheduleCancelDate{
		ScheduleID: req.ScheduleID,
		DoctorID:   req.DoctorID,
		BranchID:   req.BranchID,
		Date:       utils.TruncateToDate(*req.TargetDate),
		Reason:     req.Reason,
		RequestID:  &req.ID,
	}
	if err := tx.Create(&cancel).Error; err != nil {
		return fmt.Errorf("failed to insert cancel date: %w", err)
	}
	return nil
}

func (a *ScheduleApplier) applyBlockSchedule(tx *gorm.DB, req *models.ScheduleModificationRequest) error {
	result := tx.Model(&models.DoctorSchedule{}).
		Where("id = ? AND branch_id = ?", req.ScheduleID, req.BranchID).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to block schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("schedule %d not found in branch %d", req.ScheduleID, req.BranchID)
	}
	return nil
}

// applyCancelBlock undoes the parent block per its original type and marks
// the parent cancelled. The parent's own approval record is never edited
// directly by callers; this is the only path that mutates it.
func (a *ScheduleApplier) applyCancelBlock(tx *gorm.DB, req *models.ScheduleModificationRequest) error {
	if req.ParentRequestID == nil {
		return fmt.Errorf("cancel_block request %d has no parent request", req.ID)
	}

	var parent models.ScheduleModificationRequest
	if err := tx.First(&parent, *req.ParentRequestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("parent request %d not found", *req.ParentRequestID)
		}
		return fmt.Errorf("failed to load parent request: %w", err)
	}

	switch parent.RequestType {
	case models.DoctorReqBlockDate:
		if err := tx.Where("request_id = ?", parent.ID).
			Delete(&models.ScheduleCancelDate{}).Error; err != nil {
			return fmt.Errorf("failed to remove cancel date: %w", err)
		}
	case models.DoctorReqBlockSchedule:
		if err := tx.Model(&models.DoctorSchedule{}).
			Where("id = ?", parent.ScheduleID).
			Update("is_active", true).Error; err != nil {
			return fmt.Errorf("failed to re-enable schedule: %w", err)
		}
	default:
		return fmt.Errorf("parent request %d has non-block type %q", parent.ID, parent.RequestType)
	}

	if err := tx.Model(&parent).Update("status", models.RequestCancelled).Error; err != nil {
		return fmt.Errorf("failed to cancel parent request: %w", err)
	}
	return nil
}

// ApplyEmployeeRequest dispatches on the employee request type.
func (a *ScheduleApplier) ApplyEmployeeRequest(tx *gorm.DB, req *models.ScheduleChangeRequest) error {
	switch req.RequestType {
	case models.EmployeeReqChange:
		return a.applyShiftChange(tx, req)
	case models.EmployeeReqInterchange:
		return a.applyInterchange(tx, req)
	case models.EmployeeReqTimeOff, models.EmployeeReqCancellation:
		return a.applySingleOverride(tx, req)
	default:
		return fmt.Errorf("unknown employee request type %q", req.RequestType)
	}
}

// applyShiftChange creates a shift_change override for the target date. When
// the change moves the shift to a different date it also cancels the
// original date.
func (a *ScheduleApplier) applyShiftChange(tx *gorm.DB, req *models.ScheduleChangeRequest) error {
	effectiveDate := utils.TruncateToDate(req.TargetDate)
	if req.NewDate != nil {
		effectiveDate = utils.TruncateToDate(*req.NewDate)
	}

	override := models.EmployeeScheduleOverride{
		BranchID:           req.BranchID,
		UserID:             req.UserID,
		OverrideDate:       effectiveDate,
		OverrideType:       models.OverrideShiftChange,
		OriginalShiftStart: req.OriginalStart,
		OriginalShiftEnd:   req.OriginalEnd,
		NewShiftStart:      req.NewStart,
		NewShiftEnd:        req.NewEnd,
		RequestID:          req.ID,
		Notes:              req.Reason,
	}
	if err := tx.Create(&override).Error; err != nil {
		return fmt.Errorf("failed to create shift change override: %w", err)
	}

	if req.NewDate != nil && !utils.TruncateToDate(*req.NewDate).Equal(utils.TruncateToDate(req.TargetDate)) {
		cancellation := models.EmployeeScheduleOverride{
			BranchID:           req.BranchID,
			UserID:             req.UserID,
			OverrideDate:       utils.TruncateToDate(req.TargetDate),
			OverrideType:       models.OverrideCancellation,
			OriginalShiftStart: req.OriginalStart,
			OriginalShiftEnd:   req.OriginalEnd,
			RequestID:          req.ID,
			Notes:              "moved to " + req.NewDate.Format(utils.DateLayout),
		}
		if err := tx.Create(&cancellation).Error; err != nil {
			return fmt.Errorf("failed to cancel original date: %w", err)
		}
	}
	return nil
}

// applyInterchange creates two mirrored overrides, one per participant, each
// taking the other's original shift.
func (a *ScheduleApplier) applyInterchange(tx *gorm.DB, req *models.ScheduleChangeRequest) error {
	if req.InterchangeWith == nil {
		return fmt.Errorf("interchange request %d has no counterparty", req.ID)
	}
	peerID := *req.InterchangeWith
	date := utils.TruncateToDate(req.TargetDate)

	// NewStart/NewEnd on the request hold the peer's original shift.
	mine := models.EmployeeScheduleOverride{
		BranchID:            req.BranchID,
		UserID:              req.UserID,
		OverrideDate:        date,
		OverrideType:        models.OverrideInterchange,
		OriginalShiftStart:  req.OriginalStart,
		OriginalShiftEnd:    req.OriginalEnd,
		NewShiftStart:       req.NewStart,
		NewShiftEnd:         req.NewEnd,
		InterchangeWithUser: &peerID,
		RequestID:           req.ID,
		Notes:               req.Reason,
	}
	theirs := models.EmployeeScheduleOverride{
		BranchID:            req.BranchID,
		UserID:              peerID,
		OverrideDate:        date,
		OverrideType:        models.OverrideInterchange,
		OriginalShiftStart:  req.NewStart,
		OriginalShiftEnd:    req.NewEnd,
		NewShiftStart:       req.OriginalStart,
		NewShiftEnd:         req.OriginalEnd,
		InterchangeWithUser: &req.UserID,
		RequestID:           req.ID,
		Notes:               req.Reason,
	}

	if err := tx.Create(&mine).Error; err != nil {
		return fmt.Errorf("failed to create interchange override: %w", err)
	}
	if err := tx.Create(&theirs).Error; err != nil {
		return fmt.Errorf("failed to create mirrored interchange override: %w", err)
	}
	return nil
}

func (a *ScheduleApplier) applySingleOverride(tx *gorm.DB, req *models.ScheduleChangeRequest) error {
	override := models.EmployeeScheduleOverride{
		BranchID:           req.BranchID,
		UserID:             req.UserID,
		OverrideDate:       utils.TruncateToDate(req.TargetDate),
		OverrideType:       req.RequestType, // time_off / cancellation map 1:1
		OriginalShiftStart: req.OriginalStart,
		OriginalShiftEnd:   req.OriginalEnd,
		RequestID:          req.ID,
		Notes:              req.Reason,
	}
	if err := tx.Create(&override).Error; err != nil {
		return fmt.Errorf("failed to create %s override: %w", req.RequestType, err)
	}
	return nil
}
