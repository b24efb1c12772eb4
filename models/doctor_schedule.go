package models

import "time"

// DoctorSchedule is a recurring weekly consultation slot. Blocking a whole
// schedule flips IsActive off; blocking a single date inserts a
// ScheduleCancelDate instead.
type DoctorSchedule struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	BranchID        uint   `gorm:"index;not null" json:"branch_id"`
	DoctorID        uint   `gorm:"index;not null" json:"doctor_id"`
	Doctor          User   `gorm:"foreignKey:DoctorID" json:"-"`
	DayOfWeek       int    `gorm:"not null" json:"day_of_week"` // 0 = Sunday
	StartTime       string `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime         string `gorm:"type:varchar(5);not null" json:"end_time"`
	MaxAppointments int    `gorm:"default:0" json:"max_appointments"`
	IsActive        bool   `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ScheduleCancelDate is the realized effect of an approved block_date request:
// the doctor does not consult on this one date. An approved cancel_block
// request deletes the row again.
type ScheduleCancelDate struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ScheduleID uint      `gorm:"index;not null" json:"schedule_id"`
	DoctorID   uint      `gorm:"index;not null" json:"doctor_id"`
	BranchID   uint      `gorm:"index;not null" json:"branch_id"`
	Date       time.Time `gorm:"type:date;not null" json:"date"`
	Reason     string    `gorm:"type:varchar(500)" json:"reason"`
	RequestID  *uint     `gorm:"index" json:"request_id"`
	CreatedAt  time.Time
}
