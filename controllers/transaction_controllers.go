package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/altamedica/clinic-app/models"
	"github.com/altamedica/clinic-app/services"
	"github.com/altamedica/clinic-app/utils"
)

type TransactionController struct {
	DB  *gorm.DB
	eod *services.EodService
}

func NewTransactionController(db *gorm.DB) *TransactionController {
	return &TransactionController{DB: db, eod: services.NewEodService(db)}
}

// GetTransactions -> GET /api/transactions?date=&cashier_id=
func (tc *TransactionController) GetTransactions(c *gin.Context) {
	actor, ok := currentActor(c, tc.DB)
	if !ok {
		return
	}

	query := tc.DB.Where("branch_id = ?", actor.BranchID)
	if raw := c.Query("date"); raw != "" {
		date, err := utils.ParseDate(raw)
		if err != nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, err)
			return
		}
		query = query.Where("transaction_date = ?", date)
	}
	if raw := c.Query("cashier_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("invalid cashier_id"))
			return
		}
		query = query.Where("cashier_id = ?", uint(id))
	}
	if actor.Role == models.RoleCashier {
		query = query.Where("cashier_id = ?", actor.ID)
	}

	var transactions []models.BillingTransaction
	if err := query.Order("id DESC").Find(&transactions).Error; err != nil {
		utils.ErrorLogger.Printf("Transaction listing failed for branch %d: %v", actor.BranchID, err)
		transactions = []models.BillingTransaction{}
	}
	utils.RespondJSON(c, http.StatusOK, "Transactions", transactions)
}

// CreateTransaction -> POST /api/transactions (POS create path).
// Runs inside a transaction and refuses postings for a cashier/day whose EOD
// has already left OPEN.
func (tc *TransactionController) CreateTransaction(c *gin.Context) {
	actor, ok := currentActor(c, tc.DB)
	if !ok {
		return
	}

	var req struct {
		PatientName   string          `json:"patient_name"`
		PaidAmount    decimal.Decimal `json:"paid_amount" binding:"required"`
		PaymentMethod string          `json:"payment_method" binding:"required,oneof=CASH CARD ONLINE QR"`
		Date          string          `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}
	if !req.PaidAmount.IsPositive() {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("paid_amount must be greater than zero"))
		return
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	var transaction models.BillingTransaction
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		closed, err := tc.eod.IsDayClosed(actor.BranchID, actor.ID, date)
		if err != nil {
			return err
		}
		if closed {
			return errors.New("day is closed for this cashier, reset the EOD first")
		}

		transaction = models.BillingTransaction{
			BranchID:        actor.BranchID,
			CashierID:       actor.ID,
			ReceiptNumber:   "RCP-" + uuid.NewString()[:12],
			PatientName:     req.PatientName,
			PaidAmount:      req.PaidAmount,
			PaymentMethod:   req.PaymentMethod,
			TransactionDate: utils.TruncateToDate(date),
		}
		return tx.Create(&transaction).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	utils.InfoLogger.Printf("Transaction %s recorded (%s %s by cashier %d)",
		transaction.ReceiptNumber, transaction.PaymentMethod,
		utils.FormatAmount(transaction.PaidAmount), actor.ID)
	utils.RespondJSON(c, http.StatusCreated, "Transaction recorded", transaction)
}

// VoidTransaction -> POST /api/transactions/:id/void
// Locked rows cannot be voided; reset the owning EOD first.
func (tc *TransactionController) VoidTransaction(c *gin.Context) {
	actor, ok := currentActor(c, tc.DB)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("invalid transaction id"))
		return
	}

	var transaction models.BillingTransaction
	if err := tc.DB.First(&transaction, uint(id)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("transaction not found"))
		return
	}
	if transaction.BranchID != actor.BranchID {
		utils.RespondError(c, http.StatusForbidden, errors.New("branch access denied"))
		return
	}
	if transaction.IsLocked {
		utils.RespondError(c, http.StatusBadRequest, errors.New("transaction is locked into an EOD"))
		return
	}
	if transaction.IsVoided {
		utils.RespondError(c, http.StatusBadRequest, errors.New("transaction already voided"))
		return
	}

	if err := tc.DB.Model(&transaction).Update("is_voided", true).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Transaction voided", transaction)
}
