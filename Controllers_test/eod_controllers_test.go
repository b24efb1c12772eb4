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
)

func setupEodRouter(db *gorm.DB, actor models.User) *gin.Engine {
	router := gin.New()
	eodCtrl := controllers.NewEodController(db)
	api := router.Group("/api", asUser(actor))
	api.GET("/eod/summary", eodCtrl.GetSummary)
	api.POST("/eod/submit", eodCtrl.Submit)
	api.GET("/eod/requests", eodCtrl.GetRequests)
	api.POST("/eod/:id/approve", eodCtrl.Approve)
	api.POST("/eod/:id/reject", eodCtrl.Reject)
	api.POST("/eod/:id/flag", eodCtrl.Flag)
	api.POST("/eod/:id/reset", eodCtrl.Reset)
	return router
}

func TestEodSubmitAndApproveFlow(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)

	db.Create(&models.BillingTransaction{
		BranchID: f.Branch.ID, CashierID: f.Cashier.ID,
		ReceiptNumber: "RCP-TEST-0001", PatientName: "A Patient",
		PaidAmount: dec("1500.00"), PaymentMethod: models.PaymentMethodCash,
		TransactionDate: mustDay("2024-03-11"),
	})

	cashierRouter := setupEodRouter(db, f.Cashier)
	adminRouter := setupEodRouter(db, f.Admin)

	// Cashier checks the synthesized view first
	w := doJSON(t, cashierRouter, "GET", "/api/eod/summary?date=2024-03-11", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summaryData := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, models.EodStatusOpen, summaryData["status"])

	// Submit with a short drawer
	w = doJSON(t, cashierRouter, "POST", "/api/eod/submit", map[string]interface{}{
		"date":                "2024-03-11",
		"actual_cash_counted": "1450.00",
		"variance_remarks":    "till was short",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeBody(t, w)
	assert.Equal(t, "EOD submitted", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, models.EodStatusSubmitted, data["status"])
	summaryID := int(data["id"].(float64))

	// Admin's review overview shows one pending summary
	w = doJSON(t, adminRouter, "GET", "/api/eod/requests?date=2024-03-11", nil)
	require.Equal(t, http.StatusOK, w.Code)
	overview := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), overview["pending"])

	// Approve it
	w = doJSON(t, adminRouter, "POST", fmt.Sprintf("/api/eod/%d/approve", summaryID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, models.EodStatusApproved, approved["status"])

	// Second approval hits the state guard
	w = doJSON(t, adminRouter, "POST", fmt.Sprintf("/api/eod/%d/approve", summaryID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decodeBody(t, w)["status"].(bool))
}

func TestEodRejectRequiresReason(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)
	summaryID := submitEod(t, db, f, "2024-03-11")

	adminRouter := setupEodRouter(db, f.Admin)

	w := doJSON(t, adminRouter, "POST", fmt.Sprintf("/api/eod/%d/reject", summaryID), map[string]interface{}{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, adminRouter, "POST", fmt.Sprintf("/api/eod/%d/reject", summaryID), map[string]interface{}{
		"reason": "figures do not match the drawer",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, models.EodStatusRejected, data["status"])
}

func TestEodForeignBranchGets403(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)
	summaryID := submitEod(t, db, f, "2024-03-11")

	otherRouter := setupEodRouter(db, f.OtherAdmin)

	w := doJSON(t, otherRouter, "POST", fmt.Sprintf("/api/eod/%d/approve", summaryID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, otherRouter, "POST", fmt.Sprintf("/api/eod/%d/reset", summaryID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEodUnknownSummaryGets404(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)

	adminRouter := setupEodRouter(db, f.Admin)
	w := doJSON(t, adminRouter, "POST", "/api/eod/9999/approve", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEodResetReopensDay(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)
	summaryID := submitEod(t, db, f, "2024-03-11")

	adminRouter := setupEodRouter(db, f.Admin)

	w := doJSON(t, adminRouter, "POST", fmt.Sprintf("/api/eod/%d/approve", summaryID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, adminRouter, "POST", fmt.Sprintf("/api/eod/%d/reset", summaryID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, models.EodStatusOpen, data["status"])

	// The cashier can submit again after the reset
	cashierRouter := setupEodRouter(db, f.Cashier)
	w = doJSON(t, cashierRouter, "POST", "/api/eod/submit", map[string]interface{}{
		"date":                "2024-03-11",
		"actual_cash_counted": "0.00",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

// submitEod drives a plain submission through the HTTP surface and returns
// the stored summary id.
func submitEod(t *testing.T, db *gorm.DB, f *branchFixture, date string) int {
	t.Helper()
	router := setupEodRouter(db, f.Cashier)
	w := doJSON(t, router, "POST", "/api/eod/submit", map[string]interface{}{
		"date":                date,
		"actual_cash_counted": "0.00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeBody(t, w)["data"].(map[string]interface{})
	return int(data["id"].(float64))
}
