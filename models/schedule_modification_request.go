package models

import "time"

// Request statuses shared by both request families.
const (
	RequestPending   = "pending"
	RequestApproved  = "approved"
	RequestRejected  = "rejected"
	RequestCancelled = "cancelled"
)

// Doctor-initiated request types.
const (
	DoctorReqBlockDate         = "block_date"
	DoctorReqBlockSchedule     = "block_schedule"
	DoctorReqCancelBlock       = "cancel_block"
	DoctorReqDelayStart        = "delay_start"
	DoctorReqEarlyEnd          = "early_end"
	DoctorReqLimitAppointments = "limit_appointments"
)

// ScheduleModificationRequest is a doctor asking to change their consultation
// schedule. cancel_block requests reference the approved block they undo via
// ParentRequestID; approving the cancellation also cancels the parent.
type ScheduleModificationRequest struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	BranchID        uint       `gorm:"index;not null" json:"branch_id"`
	DoctorID        uint       `gorm:"index;not null" json:"doctor_id"`
	Doctor          User       `gorm:"foreignKey:DoctorID" json:"-"`
	RequestType     string     `gorm:"type:varchar(30);not null" json:"request_type"`
	ScheduleID      uint       `gorm:"index;not null" json:"schedule_id"`
	TargetDate      *time.Time `gorm:"type:date" json:"target_date"`
	NewStartTime    string     `gorm:"type:varchar(5)" json:"new_start_time"`
	NewEndTime      string     `gorm:"type:varchar(5)" json:"new_end_time"`
	MaxAppointments int        `gorm:"default:0" json:"max_appointments"`
	Reason          string     `gorm:"type:varchar(500);not null" json:"reason"`
	Status          string     `gorm:"type:varchar(15);not null;default:'pending'" json:"status"`
	ApprovalNotes   string     `gorm:"type:varchar(500)" json:"approval_notes"`
	RejectionReason string     `gorm:"type:varchar(500)" json:"rejection_reason"`
	ApprovedBy      *uint      `json:"approved_by"`
	ApprovedAt      *time.Time `json:"approved_at"`
	ParentRequestID *uint      `gorm:"index" json:"parent_request_id"`
	Applied         bool       `gorm:"default:false" json:"applied"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
