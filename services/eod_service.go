package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/altamedica/clinic-app/models"
	"github.com/altamedica/clinic-app/realtime"
	"github.com/altamedica/clinic-app/utils"
)

// Flag severities
const (
	FlagSeverityLow    = "low"
	FlagSeverityMedium = "medium"
	FlagSeverityHigh   = "high"
)

const (
	maxRejectReasonLen = 500
	maxFlagReasonLen   = 1000
)

// EodService owns the daily reconciliation record per (branch, cashier, date)
// and drives its state machine:
//
//	OPEN -> SUBMITTED -> {APPROVED, REJECTED, FLAGGED}
//
// Reset is an administrative override that drives any state back to OPEN and
// unlocks every ledger row tied to the summary. Branch-admin self-submissions
// go straight to CLOSED.
type EodService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewEodService(db *gorm.DB) *EodService {
	return &EodService{
		db:       db,
		notifier: NewNotifier(db),
	}
}

// GetOrSynthesize returns the stored summary for the key, or a virtual OPEN
// view computed from the ledger when no row exists yet. While the summary is
// OPEN, ledger-derived figures are always recomputed; nothing is persisted.
func (s *EodService) GetOrSynthesize(branchID, cashierID uint, date time.Time) (*models.BranchDailyCashSummary, error) {
	date = utils.TruncateToDate(date)

	var summary models.BranchDailyCashSummary
	err := s.db.Where("branch_id = ? AND cashier_id = ? AND summary_date = ?",
		branchID, cashierID, date).First(&summary).Error
	switch {
	case err == nil && summary.Status != models.EodStatusOpen:
		// Submitted or beyond: the stored snapshot is authoritative.
		return &summary, nil
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to load EOD summary: %w", err)
	}

	view, err := s.computeSummary(s.db, branchID, cashierID, date)
	if err != nil {
		return nil, err
	}
	if summary.ID != 0 {
		// A reset row exists; keep its identity but serve fresh figures.
		view.ID = summary.ID
		view.CreatedAt = summary.CreatedAt
	}
	return view, nil
}

// computeSummary builds an OPEN summary entirely from ledger state.
func (s *EodService) computeSummary(tx *gorm.DB, branchID, cashierID uint, date time.Time) (*models.BranchDailyCashSummary, error) {
	ledger := &LedgerService{db: tx}
	totals, err := ledger.Aggregate(branchID, &cashierID, date, date)
	if err != nil {
		return nil, err
	}

	opening, err := s.openingBalance(tx, branchID, cashierID, date)
	if err != nil {
		return nil, err
	}

	cashSales := totals.SalesByMethod[models.PaymentMethodCash]
	expected := opening.Add(cashSales).Add(totals.CashIn).Sub(totals.CashOut)

	return &models.BranchDailyCashSummary{
		BranchID:            branchID,
		CashierID:           cashierID,
		SummaryDate:         date,
		TotalSales:          totals.TotalSales,
		TotalTransactions:   totals.Transactions,
		CashSales:           cashSales,
		CashCount:           totals.CountByMethod[models.PaymentMethodCash],
		CardSales:           totals.SalesByMethod[models.PaymentMethodCard],
		CardCount:           totals.CountByMethod[models.PaymentMethodCard],
		OnlineSales:         totals.SalesByMethod[models.PaymentMethodOnline],
		OnlineCount:         totals.CountByMethod[models.PaymentMethodOnline],
		QrSales:             totals.SalesByMethod[models.PaymentMethodQR],
		QrCount:             totals.CountByMethod[models.PaymentMethodQR],
		CashInTotal:         totals.CashIn,
		CashOutTotal:        totals.CashOut,
		OpeningBalance:      opening,
		ExpectedCashBalance: expected,
		Status:              models.EodStatusOpen,
	}, nil
}

// openingBalance carries the previous day's closing count forward. Only an
// APPROVED or CLOSED prior summary seeds the drawer; otherwise zero.
func (s *EodService) openingBalance(tx *gorm.DB, branchID, cashierID uint, date time.Time) (decimal.Decimal, error) {
	var prev models.BranchDailyCashSummary
	err := tx.Where("branch_id = ? AND cashier_id = ? AND summary_date < ?", branchID, cashierID, date).
		Where("status IN ?", []string{models.EodStatusApproved, models.EodStatusClosed}).
		Order("summary_date DESC").
		First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load prior summary: %w", err)
	}
	return prev.ActualCashCounted, nil
}

// Submit persists the reconciliation for the key. Every ledger-derived total
// is recomputed fresh inside the transaction; client-sent totals are never
// trusted. The row is written with an upsert on the identity key, so a second
// submit overwrites the first (last write wins at the storage layer). The
// matching ledger rows are linked and locked in the same transaction.
//
// A cashier's submission lands in SUBMITTED awaiting branch-admin review; a
// branch admin submitting for themselves closes the day immediately.
func (s *EodService) Submit(branchID, cashierID uint, date time.Time, actual decimal.Decimal, remarks string, actor *models.User) (*models.BranchDailyCashSummary, error) {
	if actor.BranchID != branchID {
		return nil, fmt.Errorf("%w: actor belongs to branch %d", ErrForbidden, actor.BranchID)
	}
	if actual.IsNegative() {
		return nil, fmt.Errorf("%w: actual_cash_counted cannot be negative", ErrValidation)
	}
	date = utils.TruncateToDate(date)

	var existing models.BranchDailyCashSummary
	err := s.db.Where("branch_id = ? AND cashier_id = ? AND summary_date = ?",
		branchID, cashierID, date).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load EOD summary: %w", err)
	}
	switch existing.Status {
	case models.EodStatusApproved, models.EodStatusClosed, models.EodStatusRejected, models.EodStatusFlagged:
		return nil, fmt.Errorf("%w: summary is %s, reset it before resubmitting", ErrStateConflict, existing.Status)
	}

	var summary *models.BranchDailyCashSummary
	err = s.db.Transaction(func(tx *gorm.DB) error {
		computed, err := s.computeSummary(tx, branchID, cashierID, date)
		if err != nil {
			return err
		}

		now := time.Now()
		computed.ActualCashCounted = actual
		computed.CashVariance = actual.Sub(computed.ExpectedCashBalance)
		computed.VarianceRemarks = remarks
		computed.SubmittedAt = &now
		computed.Status = models.EodStatusSubmitted
		if actor.Role == models.RoleBranchAdmin && actor.ID == cashierID {
			// Self-submission: no separate review step.
			computed.Status = models.EodStatusClosed
			computed.ApprovedBy = &actor.ID
			computed.ApprovedAt = &now
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "branch_id"}, {Name: "cashier_id"}, {Name: "summary_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_sales", "total_transactions",
				"cash_sales", "cash_count", "card_sales", "card_count",
				"online_sales", "online_count", "qr_sales", "qr_count",
				"cash_in_total", "cash_out_total", "opening_balance",
				"expected_cash_balance", "actual_cash_counted", "cash_variance",
				"variance_remarks", "status", "submitted_at",
				"approved_by", "approved_at", "rejection_reason", "updated_at",
			}),
		}).Create(computed).Error; err != nil {
			return fmt.Errorf("failed to upsert EOD summary: %w", err)
		}

		// The conflict path does not reliably backfill the ID (MySQL's
		// LastInsertId is meaningless on ON DUPLICATE KEY UPDATE), and a
		// non-zero ID on the dest would be folded into the query. Reload by
		// key into a fresh value.
		var stored models.BranchDailyCashSummary
		if err := tx.Where("branch_id = ? AND cashier_id = ? AND summary_date = ?",
			branchID, cashierID, date).First(&stored).Error; err != nil {
			return fmt.Errorf("failed to reload EOD summary: %w", err)
		}
		*computed = stored

		// Freeze the ledger rows the figures were computed from.
		if err := tx.Model(&models.BillingTransaction{}).
			Where("branch_id = ? AND cashier_id = ? AND transaction_date = ? AND is_voided = ?",
				branchID, cashierID, date, false).
			Updates(map[string]interface{}{"eod_summary_id": computed.ID, "is_locked": true}).Error; err != nil {
			return fmt.Errorf("failed to lock transactions: %w", err)
		}
		if err := tx.Model(&models.CashEntry{}).
			Where("branch_id = ? AND user_id = ? AND entry_date = ? AND approval_status <> ?",
				branchID, cashierID, date, models.CashEntryRejected).
			Updates(map[string]interface{}{"eod_summary_id": computed.ID, "is_locked": true}).Error; err != nil {
			return fmt.Errorf("failed to lock cash entries: %w", err)
		}

		summary = computed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if summary.Status == models.EodStatusSubmitted {
		s.notifier.NotifyBranchAdmins(branchID, NotifEodSubmitted,
			"EOD submitted",
			fmt.Sprintf("EOD for %s submitted with variance %s", date.Format(utils.DateLayout), utils.FormatAmount(summary.CashVariance)),
			fmt.Sprintf("/eod/%d", summary.ID))
		realtime.BroadcastEodSubmitted(summary)
	}

	utils.InfoLogger.Printf("EOD %d submitted (branch=%d cashier=%d date=%s status=%s)",
		summary.ID, branchID, cashierID, date.Format(utils.DateLayout), summary.Status)
	return summary, nil
}

// loadForReview fetches a summary and runs the shared preconditions for
// approve/reject/flag: the actor must belong to the summary's branch and the
// summary must be waiting for review.
func (s *EodService) loadForReview(id uint, actor *models.User) (*models.BranchDailyCashSummary, error) {
	var summary models.BranchDailyCashSummary
	if err := s.db.First(&summary, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: EOD summary %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load EOD summary: %w", err)
	}
	if summary.BranchID != actor.BranchID {
		return nil, fmt.Errorf("%w: summary belongs to branch %d", ErrForbidden, summary.BranchID)
	}
	if summary.Status != models.EodStatusSubmitted {
		return nil, fmt.Errorf("%w: summary is %s, not pending approval", ErrStateConflict, summary.Status)
	}
	return &summary, nil
}

// Approve marks a submitted summary APPROVED and notifies the cashier.
func (s *EodService) Approve(id uint, actor *models.User) (*models.BranchDailyCashSummary, error) {
	summary, err := s.loadForReview(id, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	summary.Status = models.EodStatusApproved
	summary.ApprovedBy = &actor.ID
	summary.ApprovedAt = &now
	summary.RejectionReason = ""
	if err := s.db.Save(summary).Error; err != nil {
		return nil, fmt.Errorf("failed to approve EOD summary: %w", err)
	}

	s.notifier.Notify(summary.CashierID, NotifEodApproved, "EOD approved",
		fmt.Sprintf("Your EOD for %s was approved", summary.SummaryDate.Format(utils.DateLayout)),
		fmt.Sprintf("/eod/%d", summary.ID))
	realtime.BroadcastEodDecided(summary)
	return summary, nil
}

// Reject marks a submitted summary REJECTED. A non-empty reason is required.
func (s *EodService) Reject(id uint, actor *models.User, reason string) (*models.BranchDailyCashSummary, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrValidation)
	}
	if len(reason) > maxRejectReasonLen {
		return nil, fmt.Errorf("%w: rejection reason exceeds %d characters", ErrValidation, maxRejectReasonLen)
	}

	summary, err := s.loadForReview(id, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	summary.Status = models.EodStatusRejected
	summary.ApprovedBy = &actor.ID
	summary.ApprovedAt = &now
	summary.RejectionReason = reason
	if err := s.db.Save(summary).Error; err != nil {
		return nil, fmt.Errorf("failed to reject EOD summary: %w", err)
	}

	s.notifier.Notify(summary.CashierID, NotifEodRejected, "EOD rejected",
		fmt.Sprintf("Your EOD for %s was rejected: %s", summary.SummaryDate.Format(utils.DateLayout), reason),
		fmt.Sprintf("/eod/%d", summary.ID))
	realtime.BroadcastEodDecided(summary)
	return summary, nil
}

// Flag marks a submitted summary as needing investigation. The flag note is
// appended to the variance remarks, never overwriting the operator's text.
func (s *EodService) Flag(id uint, actor *models.User, reason, severity string) (*models.BranchDailyCashSummary, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: flag reason is required", ErrValidation)
	}
	if len(reason) > maxFlagReasonLen {
		return nil, fmt.Errorf("%w: flag reason exceeds %d characters", ErrValidation, maxFlagReasonLen)
	}
	switch severity {
	case "":
		severity = FlagSeverityMedium
	case FlagSeverityLow, FlagSeverityMedium, FlagSeverityHigh:
	default:
		return nil, fmt.Errorf("%w: severity must be low, medium or high", ErrValidation)
	}

	summary, err := s.loadForReview(id, actor)
	if err != nil {
		return nil, err
	}

	note := fmt.Sprintf("[FLAGGED %s] %s (by user %d at %s)",
		severity, reason, actor.ID, time.Now().Format(time.RFC3339))
	if summary.VarianceRemarks != "" {
		summary.VarianceRemarks += "\n"
	}
	summary.VarianceRemarks += note
	summary.Status = models.EodStatusFlagged
	if err := s.db.Save(summary).Error; err != nil {
		return nil, fmt.Errorf("failed to flag EOD summary: %w", err)
	}

	s.notifier.Notify(summary.CashierID, NotifEodFlagged, "EOD flagged",
		fmt.Sprintf("Your EOD for %s was flagged (%s): %s", summary.SummaryDate.Format(utils.DateLayout), severity, reason),
		fmt.Sprintf("/eod/%d", summary.ID))
	realtime.BroadcastEodDecided(summary)
	return summary, nil
}

// Reset drives a summary back to OPEN regardless of its current status and
// unlocks every transaction and cash entry tied to it. The row itself is
// kept. Administrative override, not a normal transition.
func (s *EodService) Reset(id uint, actor *models.User) (*models.BranchDailyCashSummary, error) {
	var summary models.BranchDailyCashSummary
	if err := s.db.First(&summary, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: EOD summary %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load EOD summary: %w", err)
	}
	if summary.BranchID != actor.BranchID {
		return nil, fmt.Errorf("%w: summary belongs to branch %d", ErrForbidden, summary.BranchID)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&summary).Updates(map[string]interface{}{
			"status":              models.EodStatusOpen,
			"actual_cash_counted": decimal.Zero,
			"cash_variance":       decimal.Zero,
			"variance_remarks":    "",
			"submitted_at":        nil,
			"approved_by":         nil,
			"approved_at":         nil,
			"rejection_reason":    "",
		}).Error; err != nil {
			return fmt.Errorf("failed to reset EOD summary: %w", err)
		}

		if err := tx.Model(&models.BillingTransaction{}).
			Where("eod_summary_id = ?", summary.ID).
			Updates(map[string]interface{}{"eod_summary_id": nil, "is_locked": false}).Error; err != nil {
			return fmt.Errorf("failed to unlock transactions: %w", err)
		}
		if err := tx.Model(&models.CashEntry{}).
			Where("eod_summary_id = ?", summary.ID).
			Updates(map[string]interface{}{"eod_summary_id": nil, "is_locked": false}).Error; err != nil {
			return fmt.Errorf("failed to unlock cash entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&summary, id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload EOD summary: %w", err)
	}

	s.notifier.Notify(summary.CashierID, NotifEodReset, "EOD reset",
		fmt.Sprintf("Your EOD for %s was reset to open", summary.SummaryDate.Format(utils.DateLayout)),
		fmt.Sprintf("/eod/%d", summary.ID))
	realtime.BroadcastEodDecided(summary)
	utils.InfoLogger.Printf("EOD %d reset to OPEN by user %d", summary.ID, actor.ID)
	return &summary, nil
}

// DailyOverview is one row of the branch admin's review screen.
type DailyOverview struct {
	Summaries       []models.BranchDailyCashSummary `json:"summaries"`
	Pending         int64                           `json:"pending"`
	Approved        int64                           `json:"approved"`
	Rejected        int64                           `json:"rejected"`
	TotalSalesToday decimal.Decimal                 `json:"total_sales_today"`
}

// ListDaily returns one summary per cashier of the branch for the date,
// synthesizing OPEN views for cashiers who have not submitted, plus the
// aggregate counts the dashboard shows. The "pending" count is the number of
// SUBMITTED rows.
func (s *EodService) ListDaily(branchID uint, date time.Time) (*DailyOverview, error) {
	date = utils.TruncateToDate(date)

	var cashiers []models.User
	if err := s.db.Where("branch_id = ? AND role = ? AND is_active = ?",
		branchID, models.RoleCashier, true).Order("id").Find(&cashiers).Error; err != nil {
		return nil, fmt.Errorf("failed to list cashiers: %w", err)
	}

	overview := &DailyOverview{TotalSalesToday: decimal.Zero}
	for _, cashier := range cashiers {
		summary, err := s.GetOrSynthesize(branchID, cashier.ID, date)
		if err != nil {
			return nil, err
		}
		overview.Summaries = append(overview.Summaries, *summary)
		overview.TotalSalesToday = overview.TotalSalesToday.Add(summary.TotalSales)
		switch summary.Status {
		case models.EodStatusSubmitted:
			overview.Pending++
		case models.EodStatusApproved, models.EodStatusClosed:
			overview.Approved++
		case models.EodStatusRejected:
			overview.Rejected++
		}
	}
	return overview, nil
}

// IsDayClosed reports whether the cashier's EOD for the date has left OPEN.
// The POS create path refuses new postings against such a day.
func (s *EodService) IsDayClosed(branchID, cashierID uint, date time.Time) (bool, error) {
	date = utils.TruncateToDate(date)
	var count int64
	err := s.db.Model(&models.BranchDailyCashSummary{}).
		Where("branch_id = ? AND cashier_id = ? AND summary_date = ? AND status <> ?",
			branchID, cashierID, date, models.EodStatusOpen).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check day status: %w", err)
	}
	return count > 0, nil
}
