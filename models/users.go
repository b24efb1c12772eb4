package models

import "time"

// User roles
const (
	RoleAdmin       = "admin"
	RoleBranchAdmin = "branch_admin"
	RoleCashier     = "cashier"
	RoleDoctor      = "doctor"
	RoleEmployee    = "employee"
)

type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	BranchID  uint   `gorm:"index;not null" json:"branch_id"`
	Branch    Branch `gorm:"foreignKey:BranchID" json:"-"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	Email     string `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password  string `gorm:"type:varchar(255);not null" json:"-"`
	Role      string `gorm:"type:varchar(30);not null" json:"role"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
