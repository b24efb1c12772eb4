package models

import "time"

// Override types written by the schedule applier.
const (
	OverrideShiftChange  = "shift_change"
	OverrideInterchange  = "interchange"
	OverrideTimeOff      = "time_off"
	OverrideCancellation = "cancellation"
)

// EmployeeScheduleOverride is the realized effect of an approved change
// request: one row per (user, date) impact. Only the schedule applier writes
// these, never an approver directly.
type EmployeeScheduleOverride struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	BranchID            uint      `gorm:"index;not null" json:"branch_id"`
	UserID              uint      `gorm:"index;not null" json:"user_id"`
	OverrideDate        time.Time `gorm:"type:date;not null;index" json:"override_date"`
	OverrideType        string    `gorm:"type:varchar(20);not null" json:"override_type"`
	OriginalShiftStart  string    `gorm:"type:varchar(5)" json:"original_shift_start"`
	OriginalShiftEnd    string    `gorm:"type:varchar(5)" json:"original_shift_end"`
	NewShiftStart       string    `gorm:"type:varchar(5)" json:"new_shift_start"`
	NewShiftEnd         string    `gorm:"type:varchar(5)" json:"new_shift_end"`
	InterchangeWithUser *uint     `gorm:"column:interchange_with_user_id" json:"interchange_with_user_id"`
	RequestID           uint      `gorm:"index;not null" json:"request_id"`
	Notes               string    `gorm:"type:varchar(255)" json:"notes"`
	CreatedAt           time.Time `json:"created_at"`
}
