package models

import "time"

// Employee-initiated request types.
const (
	EmployeeReqChange       = "change"
	EmployeeReqInterchange  = "interchange"
	EmployeeReqTimeOff      = "time_off"
	EmployeeReqCancellation = "cancellation"
)

// Peer responses for interchange requests.
const (
	PeerPending  = "pending"
	PeerApproved = "approved"
	PeerDeclined = "declined"
)

// ScheduleChangeRequest is an employee asking to change a shift. An
// interchange (mutual swap) must be accepted by the counterparty
// (PeerStatus = approved) before a branch admin sees it in the pending list.
type ScheduleChangeRequest struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	BranchID        uint       `gorm:"index;not null" json:"branch_id"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	User            User       `gorm:"foreignKey:UserID" json:"-"`
	RequestType     string     `gorm:"type:varchar(20);not null" json:"request_type"`
	ScheduleID      uint       `gorm:"index;not null" json:"schedule_id"`
	TargetDate      time.Time  `gorm:"type:date;not null" json:"target_date"`
	OriginalStart   string     `gorm:"type:varchar(5)" json:"original_start"`
	OriginalEnd     string     `gorm:"type:varchar(5)" json:"original_end"`
	NewStart        string     `gorm:"type:varchar(5)" json:"new_start"`
	NewEnd          string     `gorm:"type:varchar(5)" json:"new_end"`
	NewDate         *time.Time `gorm:"type:date" json:"new_date"`
	InterchangeWith *uint      `gorm:"index" json:"interchange_with"`
	PeerStatus      string     `gorm:"type:varchar(10)" json:"peer_status"`
	PeerRespondedAt *time.Time `json:"peer_responded_at"`
	Reason          string     `gorm:"type:varchar(500);not null" json:"reason"`
	Status          string     `gorm:"type:varchar(15);not null;default:'pending'" json:"status"`
	ApprovalNotes   string     `gorm:"type:varchar(500)" json:"approval_notes"`
	RejectionReason string     `gorm:"type:varchar(500)" json:"rejection_reason"`
	ApprovedBy      *uint      `json:"approved_by"`
	ApprovedAt      *time.Time `json:"approved_at"`
	Applied         bool       `gorm:"default:false" json:"applied"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
