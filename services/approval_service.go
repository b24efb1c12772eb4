package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/altamedica/clinic-app/models"
	"github.com/altamedica/clinic-app/realtime"
	"github.com/altamedica/clinic-app/utils"
)

const maxNotesLen = 500

// ApprovalService applies the generic approve/reject contract to cash
// entries and both schedule-request families. Every mutation runs the same
// two preconditions first: the record must still be pending, and the actor
// must belong to the record's branch.
//
// For schedule requests, the status update and the schedule application run
// in one transaction; an apply failure rolls the decision back and surfaces
// as ErrApplyFailed, so there is no "approved but not applied" state.
type ApprovalService struct {
	db       *gorm.DB
	applier  *ScheduleApplier
	notifier *Notifier
}

func NewApprovalService(db *gorm.DB) *ApprovalService {
	return &ApprovalService{
		db:       db,
		applier:  NewScheduleApplier(),
		notifier: NewNotifier(db),
	}
}

// ---- Cash entries ----

func (s *ApprovalService) loadPendingCashEntry(id uint, actor *models.User) (*models.CashEntry, error) {
	var entry models.CashEntry
	if err := s.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cash entry %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load cash entry: %w", err)
	}
	if entry.BranchID != actor.BranchID {
		return nil, fmt.Errorf("%w: cash entry belongs to branch %d", ErrForbidden, entry.BranchID)
	}
	if entry.IsLocked {
		if entry.EodSummaryID != nil {
			return nil, fmt.Errorf("%w: cash entry is locked into EOD %d", ErrStateConflict, *entry.EodSummaryID)
		}
		return nil, fmt.Errorf("%w: cash entry is locked", ErrStateConflict)
	}
	if entry.ApprovalStatus != models.CashEntryPending {
		return nil, fmt.Errorf("%w: cash entry already processed (%s)", ErrStateConflict, entry.ApprovalStatus)
	}
	return &entry, nil
}

func (s *ApprovalService) ApproveCashEntry(id uint, actor *models.User, notes string) (*models.CashEntry, error) {
	entry, err := s.loadPendingCashEntry(id, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry.ApprovalStatus = models.CashEntryApproved
	entry.ApprovedBy = &actor.ID
	entry.ApprovedAt = &now
	if notes != "" {
		entry.Remarks = notes
	}
	if err := s.db.Save(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to approve cash entry: %w", err)
	}

	s.notifier.Notify(entry.UserID, NotifCashEntry, "Cash entry approved",
		fmt.Sprintf("%s of %s approved", entry.EntryType, utils.FormatAmount(entry.Amount)),
		fmt.Sprintf("/cash-entries/%d", entry.ID))
	return entry, nil
}

func (s *ApprovalService) RejectCashEntry(id uint, actor *models.User, reason string) (*models.CashEntry, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrValidation)
	}

	entry, err := s.loadPendingCashEntry(id, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry.ApprovalStatus = models.CashEntryRejected
	entry.ApprovedBy = &actor.ID
	entry.ApprovedAt = &now
	entry.RejectionReason = reason
	if err := s.db.Save(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to reject cash entry: %w", err)
	}

	s.notifier.Notify(entry.UserID, NotifCashEntry, "Cash entry rejected",
		fmt.Sprintf("%s of %s rejected: %s", entry.EntryType, utils.FormatAmount(entry.Amount), reason),
		fmt.Sprintf("/cash-entries/%d", entry.ID))
	return entry, nil
}

// ---- Doctor schedule-modification requests ----

func (s *ApprovalService) loadPendingDoctorRequest(id uint, actor *models.User) (*models.ScheduleModificationRequest, error) {
	var req models.ScheduleModificationRequest
	if err := s.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: schedule modification request %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if req.BranchID != actor.BranchID {
		return nil, fmt.Errorf("%w: request belongs to branch %d", ErrForbidden, req.BranchID)
	}
	if req.Status != models.RequestPending {
		return nil, fmt.Errorf("%w: request already processed (%s)", ErrStateConflict, req.Status)
	}
	return &req, nil
}

func (s *ApprovalService) ApproveDoctorRequest(id uint, actor *models.User, notes string) (*models.ScheduleModificationRequest, error) {
	if len(notes) > maxNotesLen {
		return nil, fmt.Errorf("%w: notes exceed %d characters", ErrValidation, maxNotesLen)
	}
	req, err := s.loadPendingDoctorRequest(id, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		req.Status = models.RequestApproved
		req.ApprovalNotes = notes
		req.ApprovedBy = &actor.ID
		req.ApprovedAt = &now
		req.Applied = true
		if err := tx.Save(req).Error; err != nil {
			return fmt.Errorf("failed to approve request: %w", err)
		}
		if err := s.applier.ApplyDoctorRequest(tx, req); err != nil {
			utils.ErrorLogger.Printf("Apply failed for doctor request %d: %v", req.ID, err)
			return fmt.Errorf("%w: %v", ErrApplyFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(req.DoctorID, NotifScheduleRequest, "Schedule request approved",
		fmt.Sprintf("Your %s request was approved", req.RequestType),
		fmt.Sprintf("/requests/schedule-modifications/%d", req.ID))
	realtime.BroadcastRequestDecided(req)
	return req, nil
}

func (s *ApprovalService) RejectDoctorRequest(id uint, actor *models.User, reason string) (*models.ScheduleModificationRequest, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrValidation)
	}
	req, err := s.loadPendingDoctorRequest(id, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		req.Status = models.RequestRejected
		req.RejectionReason = reason
		req.ApprovedBy = &actor.ID
		req.ApprovedAt = &now
		if err := tx.Save(req).Error; err != nil {
			return fmt.Errorf("failed to reject request: %w", err)
		}

		// Rejecting a cancel_block means the original block stands.
		if req.RequestType == models.DoctorReqCancelBlock && req.ParentRequestID != nil {
			if err := tx.Model(&models.ScheduleModificationRequest{}).
				Where("id = ?", *req.ParentRequestID).
				Update("status", models.RequestApproved).Error; err != nil {
				return fmt.Errorf("failed to restore parent request: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(req.DoctorID, NotifScheduleRequest, "Schedule request rejected",
		fmt.Sprintf("Your %s request was rejected: %s", req.RequestType, reason),
		fmt.Sprintf("/requests/schedule-modifications/%d", req.ID))
	realtime.BroadcastRequestDecided(req)
	return req, nil
}

// ---- Employee schedule-change requests ----

func (s *ApprovalService) loadPendingEmployeeRequest(id uint, actor *models.User) (*models.ScheduleChangeRequest, error) {
	var req models.ScheduleChangeRequest
	if err := s.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: schedule change request %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if req.BranchID != actor.BranchID {
		return nil, fmt.Errorf("%w: request belongs to branch %d", ErrForbidden, req.BranchID)
	}
	if req.Status != models.RequestPending {
		return nil, fmt.Errorf("%w: request already processed (%s)", ErrStateConflict, req.Status)
	}
	return &req, nil
}

func (s *ApprovalService) ApproveEmployeeRequest(id uint, actor *models.User, notes string) (*models.ScheduleChangeRequest, error) {
	if len(notes) > maxNotesLen {
		return nil, fmt.Errorf("%w: notes exceed %d characters", ErrValidation, maxNotesLen)
	}
	req, err := s.loadPendingEmployeeRequest(id, actor)
	if err != nil {
		return nil, err
	}
	// The pending listing already hides un-accepted interchanges; this guard
	// covers callers going straight to the id.
	if req.RequestType == models.EmployeeReqInterchange && req.PeerStatus != models.PeerApproved {
		return nil, fmt.Errorf("%w: interchange peer has not accepted", ErrStateConflict)
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		req.Status = models.RequestApproved
		req.ApprovalNotes = notes
		req.ApprovedBy = &actor.ID
		req.ApprovedAt = &now
		req.Applied = true
		if err := tx.Save(req).Error; err != nil {
			return fmt.Errorf("failed to approve request: %w", err)
		}
		if err := s.applier.ApplyEmployeeRequest(tx, req); err != nil {
			utils.ErrorLogger.Printf("Apply failed for employee request %d: %v", req.ID, err)
			return fmt.Errorf("%w: %v", ErrApplyFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(req.UserID, NotifScheduleRequest, "Schedule request approved",
		fmt.Sprintf("Your %s request was approved", req.RequestType),
		fmt.Sprintf("/requests/employee-schedule/%d", req.ID))
	if req.InterchangeWith != nil {
		s.notifier.Notify(*req.InterchangeWith, NotifScheduleRequest, "Shift interchange approved",
			fmt.Sprintf("Your shift interchange for %s was approved", req.TargetDate.Format(utils.DateLayout)),
			fmt.Sprintf("/requests/employee-schedule/%d", req.ID))
	}
	realtime.BroadcastRequestDecided(req)
	return req, nil
}

func (s *ApprovalService) RejectEmployeeRequest(id uint, actor *models.User, reason string) (*models.ScheduleChangeRequest, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrValidation)
	}
	req, err := s.loadPendingEmployeeRequest(id, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	req.Status = models.RequestRejected
	req.RejectionReason = reason
	req.ApprovedBy = &actor.ID
	req.ApprovedAt = &now
	if err := s.db.Save(req).Error; err != nil {
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}

	s.notifier.Notify(req.UserID, NotifScheduleRequest, "Schedule request rejected",
		fmt.Sprintf("Your %s request was rejected: %s", req.RequestType, reason),
		fmt.Sprintf("/requests/employee-schedule/%d", req.ID))
	realtime.BroadcastRequestDecided(req)
	return req, nil
}

// RespondInterchange records the counterparty's accept/decline on an
// interchange request. Only the named peer may respond, and only once.
func (s *ApprovalService) RespondInterchange(id uint, peer *models.User, accept bool) (*models.ScheduleChangeRequest, error) {
	var req models.ScheduleChangeRequest
	if err := s.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: schedule change request %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if req.RequestType != models.EmployeeReqInterchange {
		return nil, fmt.Errorf("%w: request %d is not an interchange", ErrStateConflict, id)
	}
	if req.InterchangeWith == nil || *req.InterchangeWith != peer.ID {
		return nil, fmt.Errorf("%w: only the interchange counterparty may respond", ErrForbidden)
	}
	if req.Status != models.RequestPending {
		return nil, fmt.Errorf("%w: request already processed (%s)", ErrStateConflict, req.Status)
	}
	if req.PeerStatus != models.PeerPending {
		return nil, fmt.Errorf("%w: peer already responded (%s)", ErrStateConflict, req.PeerStatus)
	}

	now := time.Now()
	req.PeerRespondedAt = &now
	if accept {
		req.PeerStatus = models.PeerApproved
	} else {
		req.PeerStatus = models.PeerDeclined
		// A declined swap can never be approved; close it out.
		req.Status = models.RequestCancelled
	}
	if err := s.db.Save(&req).Error; err != nil {
		return nil, fmt.Errorf("failed to record peer response: %w", err)
	}

	s.notifier.Notify(req.UserID, NotifScheduleRequest, "Interchange response",
		fmt.Sprintf("Your interchange partner %s the swap", map[bool]string{true: "accepted", false: "declined"}[accept]),
		fmt.Sprintf("/requests/employee-schedule/%d", req.ID))
	return &req, nil
}

// ---- Merged listing ----

// UnifiedRequest is the merged shape of both request families for the branch
// admin's review screen.
type UnifiedRequest struct {
	ID          uint       `json:"id"`
	Source      string     `json:"source"` // doctor | employee
	RequesterID uint       `json:"requester_id"`
	RequestType string     `json:"request_type"`
	TargetDate  *time.Time `json:"target_date"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RequestCounts are the aggregate figures shown above the listing.
type RequestCounts struct {
	Pending              int64 `json:"pending"`
	Approved             int64 `json:"approved"`
	Rejected             int64 `json:"rejected"`
	CancellationRequests int64 `json:"cancellation_requests"`
	EmployeeRequests     int64 `json:"employee_requests"`
}

// ListRequests returns the merged doctor+employee request list for a branch,
// optionally filtered by status. Interchange requests whose peer has not
// accepted are invisible in the pending view; the listing is the gate that
// keeps them off the admin's desk.
func (s *ApprovalService) ListRequests(branchID uint, status string) ([]UnifiedRequest, *RequestCounts, error) {
	docQuery := s.db.Where("branch_id = ?", branchID)
	empQuery := s.db.Where("branch_id = ?", branchID)
	if status != "" {
		docQuery = docQuery.Where("status = ?", status)
		empQuery = empQuery.Where("status = ?", status)
	}
	if status == "" || status == models.RequestPending {
		// Peer-gated visibility for interchanges in the pending view.
		empQuery = empQuery.Where(
			"NOT (request_type = ? AND status = ? AND (peer_status IS NULL OR peer_status <> ?))",
			models.EmployeeReqInterchange, models.RequestPending, models.PeerApproved)
	}

	var docReqs []models.ScheduleModificationRequest
	if err := docQuery.Order("created_at DESC").Find(&docReqs).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list doctor requests: %w", err)
	}
	var empReqs []models.ScheduleChangeRequest
	if err := empQuery.Order("created_at DESC").Find(&empReqs).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list employee requests: %w", err)
	}

	merged := make([]UnifiedRequest, 0, len(docReqs)+len(empReqs))
	counts := &RequestCounts{}
	for _, r := range docReqs {
		merged = append(merged, UnifiedRequest{
			ID: r.ID, Source: "doctor", RequesterID: r.DoctorID,
			RequestType: r.RequestType, TargetDate: r.TargetDate,
			Reason: r.Reason, Status: r.Status, CreatedAt: r.CreatedAt,
		})
		countStatus(counts, r.Status)
		if r.RequestType == models.DoctorReqCancelBlock {
			counts.CancellationRequests++
		}
	}
	for _, r := range empReqs {
		target := r.TargetDate
		merged = append(merged, UnifiedRequest{
			ID: r.ID, Source: "employee", RequesterID: r.UserID,
			RequestType: r.RequestType, TargetDate: &target,
			Reason: r.Reason, Status: r.Status, CreatedAt: r.CreatedAt,
		})
		countStatus(counts, r.Status)
		counts.EmployeeRequests++
	}

	return merged, counts, nil
}

func countStatus(counts *RequestCounts, status string) {
	switch status {
	case models.RequestPending:
		counts.Pending++
	case models.RequestApproved:
		counts.Approved++
	case models.RequestRejected:
		counts.Rejected++
	}
}
