package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EOD statuses. SUBMITTED is the canonical "waiting for review" value; the
// listing endpoints expose it under a "pending" count. CLOSED is the terminal
// state for branch-admin self-submissions and is equivalent to APPROVED.
const (
	EodStatusOpen      = "OPEN"
	EodStatusSubmitted = "SUBMITTED"
	EodStatusApproved  = "APPROVED"
	EodStatusRejected  = "REJECTED"
	EodStatusFlagged   = "FLAGGED"
	EodStatusClosed    = "CLOSED"
)

// BranchDailyCashSummary is the end-of-day reconciliation record for one
// cashier on one calendar date. At most one row exists per
// (branch, cashier, date); before the first submit the engine serves a
// synthesized OPEN view instead of a row.
//
// While status is OPEN every ledger-derived field is recomputed from the
// transaction and cash-entry stores on read. After APPROVED/CLOSED the stored
// snapshot is authoritative: the underlying rows are locked.
type BranchDailyCashSummary struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BranchID    uint      `gorm:"not null;uniqueIndex:idx_eod_identity,priority:1" json:"branch_id"`
	CashierID   uint      `gorm:"not null;uniqueIndex:idx_eod_identity,priority:2" json:"cashier_id"`
	Cashier     User      `gorm:"foreignKey:CashierID" json:"-"`
	SummaryDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_eod_identity,priority:3" json:"summary_date"`

	TotalSales        decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_sales"`
	TotalTransactions int64           `gorm:"default:0" json:"total_transactions"`
	CashSales         decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"cash_sales"`
	CashCount         int64           `gorm:"default:0" json:"cash_count"`
	CardSales         decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"card_sales"`
	CardCount         int64           `gorm:"default:0" json:"card_count"`
	OnlineSales       decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"online_sales"`
	OnlineCount       int64           `gorm:"default:0" json:"online_count"`
	QrSales           decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"qr_sales"`
	QrCount           int64           `gorm:"default:0" json:"qr_count"`

	CashInTotal         decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"cash_in_total"`
	CashOutTotal        decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"cash_out_total"`
	OpeningBalance      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"opening_balance"`
	ExpectedCashBalance decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"expected_cash_balance"`
	ActualCashCounted   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"actual_cash_counted"`
	CashVariance        decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"cash_variance"`
	VarianceRemarks     string          `gorm:"type:text" json:"variance_remarks"`

	Status          string     `gorm:"type:varchar(10);not null;default:'OPEN'" json:"status"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	ApprovedAt      *time.Time `json:"approved_at"`
	ApprovedBy      *uint      `json:"approved_by"`
	RejectionReason string     `gorm:"type:varchar(500)" json:"rejection_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
