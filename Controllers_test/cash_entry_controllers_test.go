package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/altamedica/clinic-app/controllers"
	"github.com/altamedica/clinic-app/models"
	"github.com/altamedica/clinic-app/services"
)

func setupCashEntryRouter(db *gorm.DB, actor models.User) *gin.Engine {
	router := gin.New()
	ctrl := controllers.NewCashEntryController(db)
	api := router.Group("/api", asUser(actor))
	api.GET("/cash-entries", ctrl.GetCashEntries)
	api.POST("/cash-entries", ctrl.CreateCashEntry)
	api.POST("/cash-entries/:id/approve", ctrl.Approve)
	api.POST("/cash-entries/:id/reject", ctrl.Reject)
	return router
}

func TestCreateAndApproveCashEntry(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)

	cashierRouter := setupCashEntryRouter(db, f.Cashier)
	adminRouter := setupCashEntryRouter(db, f.Admin)

	w := doJSON(t, cashierRouter, "POST", "/api/cash-entries", map[string]interface{}{
		"entry_type":  "CASH_OUT",
		"category":    "supplies",
		"amount":      "75.50",
		"description": "printer paper",
		"entry_date":  "2024-03-11",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeBody(t, w)
	assert.Equal(t, "Cash entry created", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, models.CashEntryPending, data["approval_status"])
	assert.NotEmpty(t, data["reference_number"])
	entryID := int(data["id"].(float64))

	w = doJSON(t, adminRouter, "POST", fmt.Sprintf("/api/cash-entries/%d/approve", entryID), map[string]interface{}{
		"notes": "checked the receipt",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, models.CashEntryApproved, approved["approval_status"])

	// Rejecting an already approved entry is a state conflict
	w = doJSON(t, adminRouter, "POST", fmt.Sprintf("/api/cash-entries/%d/reject", entryID), map[string]interface{}{
		"reason": "changed my mind",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCashEntryValidation(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)
	router := setupCashEntryRouter(db, f.Cashier)

	// Unknown entry type
	w := doJSON(t, router, "POST", "/api/cash-entries", map[string]interface{}{
		"entry_type": "TRANSFER",
		"amount":     "10.00",
		"entry_date": "2024-03-11",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Non-positive amount
	w = doJSON(t, router, "POST", "/api/cash-entries", map[string]interface{}{
		"entry_type": "CASH_IN",
		"amount":     "-5.00",
		"entry_date": "2024-03-11",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateCashEntryRefusedOnClosedDay(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)

	// Close the cashier's day
	svc := services.NewEodService(db)
	summary, err := svc.Submit(f.Branch.ID, f.Cashier.ID, mustDay("2024-03-11"), dec("0.00"), "", &f.Cashier)
	require.NoError(t, err)
	_, err = svc.Approve(summary.ID, &f.Admin)
	require.NoError(t, err)

	router := setupCashEntryRouter(db, f.Cashier)
	w := doJSON(t, router, "POST", "/api/cash-entries", map[string]interface{}{
		"entry_type": "CASH_IN",
		"amount":     "10.00",
		"entry_date": "2024-03-11",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Another date is still open
	w = doJSON(t, router, "POST", "/api/cash-entries", map[string]interface{}{
		"entry_type": "CASH_IN",
		"amount":     "10.00",
		"entry_date": "2024-03-12",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCashEntryListingScopes(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)

	db.Create(&models.CashEntry{
		BranchID: f.Branch.ID, UserID: f.Cashier.ID, EntryType: models.CashEntryTypeIn,
		Amount: dec("10.00"), EntryDate: mustDay("2024-03-11"), ApprovalStatus: models.CashEntryPending,
	})
	db.Create(&models.CashEntry{
		BranchID: f.Branch.ID, UserID: f.Admin.ID, EntryType: models.CashEntryTypeOut,
		Amount: dec("20.00"), EntryDate: mustDay("2024-03-11"), ApprovalStatus: models.CashEntryPending,
	})

	// Cashier only sees their own entry
	w := doJSON(t, setupCashEntryRouter(db, f.Cashier), "GET", "/api/cash-entries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decodeBody(t, w)["data"].([]interface{})
	assert.Len(t, entries, 1)

	// Branch admin sees both, and can filter by type
	w = doJSON(t, setupCashEntryRouter(db, f.Admin), "GET", "/api/cash-entries", nil)
	entries = decodeBody(t, w)["data"].([]interface{})
	assert.Len(t, entries, 2)

	w = doJSON(t, setupCashEntryRouter(db, f.Admin), "GET", "/api/cash-entries?type=CASH_OUT", nil)
	entries = decodeBody(t, w)["data"].([]interface{})
	assert.Len(t, entries, 1)
}
