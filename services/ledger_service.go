package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/altamedica/clinic-app/models"
)

// DailyLedgerTotals is the read-model the EOD engine reconciles against.
type DailyLedgerTotals struct {
	SalesByMethod map[string]decimal.Decimal `json:"sales_by_method"`
	CountByMethod map[string]int64           `json:"count_by_method"`
	TotalSales    decimal.Decimal            `json:"total_sales"`
	CashIn        decimal.Decimal            `json:"cash_in"`
	CashOut       decimal.Decimal            `json:"cash_out"`
	Transactions  int64                      `json:"transaction_count"`
}

// LedgerService aggregates billing transactions and cash entries. Pure reads,
// no state of its own. Until a day's EOD is approved, these aggregates are
// the source of truth for expected figures.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Aggregate sums sales by payment method plus cash in/out for one branch,
// optionally narrowed to one cashier, over [from, to] inclusive. Voided
// transactions and rejected cash entries never count.
func (s *LedgerService) Aggregate(branchID uint, cashierID *uint, from, to time.Time) (*DailyLedgerTotals, error) {
	totals := &DailyLedgerTotals{
		SalesByMethod: map[string]decimal.Decimal{
			models.PaymentMethodCash:   decimal.Zero,
			models.PaymentMethodCard:   decimal.Zero,
			models.PaymentMethodOnline: decimal.Zero,
			models.PaymentMethodQR:     decimal.Zero,
		},
		CountByMethod: map[string]int64{},
		TotalSales:    decimal.Zero,
		CashIn:        decimal.Zero,
		CashOut:       decimal.Zero,
	}

	txQuery := s.db.Model(&models.BillingTransaction{}).
		Where("branch_id = ? AND is_voided = ?", branchID, false).
		Where("transaction_date BETWEEN ? AND ?", from, to)
	if cashierID != nil {
		txQuery = txQuery.Where("cashier_id = ?", *cashierID)
	}

	var txRows []models.BillingTransaction
	if err := txQuery.Find(&txRows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate transactions: %w", err)
	}

	for _, row := range txRows {
		totals.SalesByMethod[row.PaymentMethod] = totals.SalesByMethod[row.PaymentMethod].Add(row.PaidAmount)
		totals.CountByMethod[row.PaymentMethod]++
		totals.TotalSales = totals.TotalSales.Add(row.PaidAmount)
		totals.Transactions++
	}

	entryQuery := s.db.Model(&models.CashEntry{}).
		Where("branch_id = ? AND approval_status <> ?", branchID, models.CashEntryRejected).
		Where("entry_date BETWEEN ? AND ?", from, to)
	if cashierID != nil {
		entryQuery = entryQuery.Where("user_id = ?", *cashierID)
	}

	var entries []models.CashEntry
	if err := entryQuery.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate cash entries: %w", err)
	}

	for _, entry := range entries {
		switch entry.EntryType {
		case models.CashEntryTypeIn:
			totals.CashIn = totals.CashIn.Add(entry.Amount)
		case models.CashEntryTypeOut:
			totals.CashOut = totals.CashOut.Add(entry.Amount)
		}
	}

	return totals, nil
}
