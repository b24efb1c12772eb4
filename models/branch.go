package models

import "time"

type Branch struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	Code      string `gorm:"type:varchar(20);unique;not null" json:"code"`
	Address   string `gorm:"type:varchar(255)" json:"address"`
	Phone     string `gorm:"type:varchar(30)" json:"phone"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
