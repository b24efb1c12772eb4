package models

import "time"

// EmployeeSchedule is the recurring shift an employee-initiated change
// request targets.
type EmployeeSchedule struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	BranchID   uint   `gorm:"index;not null" json:"branch_id"`
	UserID     uint   `gorm:"index;not null" json:"user_id"`
	User       User   `gorm:"foreignKey:UserID" json:"-"`
	DayOfWeek  int    `gorm:"not null" json:"day_of_week"`
	ShiftStart string `gorm:"type:varchar(5);not null" json:"shift_start"`
	ShiftEnd   string `gorm:"type:varchar(5);not null" json:"shift_end"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
