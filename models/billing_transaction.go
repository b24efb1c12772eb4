package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at the POS counter.
const (
	PaymentMethodCash   = "CASH"
	PaymentMethodCard   = "CARD"
	PaymentMethodOnline = "ONLINE"
	PaymentMethodQR     = "QR"
)

// BillingTransaction is one settled sale at the counter. Rows are append-only:
// after creation only the void flag and the EOD lock/link pair ever change.
type BillingTransaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	BranchID        uint            `gorm:"index;not null" json:"branch_id"`
	CashierID       uint            `gorm:"index;not null" json:"cashier_id"`
	Cashier         User            `gorm:"foreignKey:CashierID" json:"-"`
	ReceiptNumber   string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"receipt_number"`
	PatientName     string          `gorm:"type:varchar(255)" json:"patient_name"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"paid_amount"`
	PaymentMethod   string          `gorm:"type:varchar(10);not null" json:"payment_method"`
	TransactionDate time.Time       `gorm:"type:date;index;not null" json:"transaction_date"`
	IsVoided        bool            `gorm:"default:false" json:"is_voided"`
	IsLocked        bool            `gorm:"default:false" json:"is_locked"`
	EodSummaryID    *uint           `gorm:"index" json:"eod_summary_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
