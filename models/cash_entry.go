package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CashEntryTypeIn  = "CASH_IN"
	CashEntryTypeOut = "CASH_OUT"
)

// Cash entry approval statuses
const (
	CashEntryPending  = "PENDING"
	CashEntryApproved = "APPROVED"
	CashEntryRejected = "REJECTED"
)

// CashEntry is a manual drawer movement (petty cash, change fund, deposits).
// Once folded into a closed EOD it is locked and mutable only via an EOD reset.
type CashEntry struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	BranchID        uint            `gorm:"index;not null" json:"branch_id"`
	UserID          uint            `gorm:"index;not null" json:"user_id"`
	User            User            `gorm:"foreignKey:UserID" json:"-"`
	EntryType       string          `gorm:"type:varchar(10);not null" json:"entry_type"`
	Category        string          `gorm:"type:varchar(50)" json:"category"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description     string          `gorm:"type:varchar(255)" json:"description"`
	ReferenceNumber string          `gorm:"type:varchar(64)" json:"reference_number"`
	Remarks         string          `gorm:"type:text" json:"remarks"`
	EntryDate       time.Time       `gorm:"type:date;index;not null" json:"entry_date"`
	ApprovalStatus  string          `gorm:"type:varchar(10);not null;default:'PENDING'" json:"approval_status"`
	ApprovedBy      *uint           `json:"approved_by"`
	ApprovedAt      *time.Time      `json:"approved_at"`
	RejectionReason string          `gorm:"type:varchar(500)" json:"rejection_reason"`
	EodSummaryID    *uint           `gorm:"index" json:"eod_summary_id"`
	IsLocked        bool            `gorm:"default:false" json:"is_locked"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
