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

func setupScheduleRouter(db *gorm.DB, actor models.User) *gin.Engine {
	router := gin.New()
	ctrl := controllers.NewScheduleRequestController(db)
	api := router.Group("/api", asUser(actor))
	api.GET("/requests", ctrl.GetRequests)
	api.POST("/requests/schedule-modifications", ctrl.CreateDoctorRequest)
	api.POST("/requests/schedule-modifications/:id/approve", ctrl.ApproveDoctorRequest)
	api.POST("/requests/schedule-modifications/:id/reject", ctrl.RejectDoctorRequest)
	api.POST("/requests/employee-schedule", ctrl.CreateEmployeeRequest)
	api.POST("/requests/employee-schedule/:id/approve", ctrl.ApproveEmployeeRequest)
	api.POST("/requests/employee-schedule/:id/reject", ctrl.RejectEmployeeRequest)
	api.POST("/requests/employee-schedule/:id/peer-response", ctrl.RespondInterchange)
	return router
}

func seedDoctorScheduleRow(t *testing.T, db *gorm.DB, f *branchFixture) *models.DoctorSchedule {
	t.Helper()
	schedule := &models.DoctorSchedule{
		BranchID: f.Branch.ID, DoctorID: f.Doctor.ID,
		DayOfWeek: 2, StartTime: "09:00", EndTime: "17:00", IsActive: true,
	}
	require.NoError(t, db.Create(schedule).Error)
	return schedule
}

func seedEmployeeScheduleRows(t *testing.T, db *gorm.DB, f *branchFixture) (a, b *models.EmployeeSchedule) {
	t.Helper()
	a = &models.EmployeeSchedule{BranchID: f.Branch.ID, UserID: f.EmployeeA.ID, DayOfWeek: 2, ShiftStart: "08:00", ShiftEnd: "16:00", IsActive: true}
	b = &models.EmployeeSchedule{BranchID: f.Branch.ID, UserID: f.EmployeeB.ID, DayOfWeek: 2, ShiftStart: "14:00", ShiftEnd: "22:00", IsActive: true}
	require.NoError(t, db.Create(a).Error)
	require.NoError(t, db.Create(b).Error)
	return a, b
}

func TestDoctorRequestLifecycle(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)
	schedule := seedDoctorScheduleRow(t, db, f)

	doctorRouter := setupScheduleRouter(db, f.Doctor)
	adminRouter := setupScheduleRouter(db, f.Admin)

	w := doJSON(t, doctorRouter, "POST", "/api/requests/schedule-modifications", map[string]interface{}{
		"request_type": "block_date",
		"schedule_id":  schedule.ID,
		"target_date":  "2024-03-19",
		"reason":       "medical conference",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, models.RequestPending, data["status"])
	requestID := int(data["id"].(float64))

	// The pending listing shows it
	w = doJSON(t, adminRouter, "GET", "/api/requests?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listing := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Len(t, listing["requests"].([]interface{}), 1)

	w = doJSON(t, adminRouter, "POST",
		fmt.Sprintf("/api/requests/schedule-modifications/%d/approve", requestID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, models.RequestApproved, approved["status"])

	// The applier materialized the blocked date
	var cancels int64
	db.Model(&models.ScheduleCancelDate{}).Where("schedule_id = ?", schedule.ID).Count(&cancels)
	assert.Equal(t, int64(1), cancels)
}

func TestDoctorRequestRoleAndValidation(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)
	schedule := seedDoctorScheduleRow(t, db, f)

	// Only doctors may file these
	w := doJSON(t, setupScheduleRouter(db, f.Cashier), "POST", "/api/requests/schedule-modifications", map[string]interface{}{
		"request_type": "block_date",
		"schedule_id":  schedule.ID,
		"target_date":  "2024-03-19",
		"reason":       "r",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	doctorRouter := setupScheduleRouter(db, f.Doctor)

	// block_date without a target date
	w = doJSON(t, doctorRouter, "POST", "/api/requests/schedule-modifications", map[string]interface{}{
		"request_type": "block_date",
		"schedule_id":  schedule.ID,
		"reason":       "r",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// cancel_block without an approved parent
	w = doJSON(t, doctorRouter, "POST", "/api/requests/schedule-modifications", map[string]interface{}{
		"request_type":      "cancel_block",
		"schedule_id":       schedule.ID,
		"reason":            "r",
		"parent_request_id": 999,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestEmployeeInterchangeOverHTTP(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)
	schedA, _ := seedEmployeeScheduleRows(t, db, f)

	empARouter := setupScheduleRouter(db, f.EmployeeA)
	empBRouter := setupScheduleRouter(db, f.EmployeeB)
	adminRouter := setupScheduleRouter(db, f.Admin)

	w := doJSON(t, empARouter, "POST", "/api/requests/employee-schedule", map[string]interface{}{
		"request_type":     "interchange",
		"schedule_id":      schedA.ID,
		"target_date":      "2024-03-19",
		"interchange_with": f.EmployeeB.ID,
		"reason":           "family event",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeBody(t, w)["data"].(map[string]interface{})
	requestID := int(data["id"].(float64))
	// The peer's shift was snapshotted as the requested one
	assert.Equal(t, "14:00", data["new_start"])
	assert.Equal(t, models.PeerPending, data["peer_status"])

	// Approval is gated on the peer
	w = doJSON(t, adminRouter, "POST",
		fmt.Sprintf("/api/requests/employee-schedule/%d/approve", requestID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The requester cannot answer for the peer
	accept := true
	w = doJSON(t, empARouter, "POST",
		fmt.Sprintf("/api/requests/employee-schedule/%d/peer-response", requestID),
		map[string]interface{}{"accept": accept})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, empBRouter, "POST",
		fmt.Sprintf("/api/requests/employee-schedule/%d/peer-response", requestID),
		map[string]interface{}{"accept": accept})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, adminRouter, "POST",
		fmt.Sprintf("/api/requests/employee-schedule/%d/approve", requestID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var overrides int64
	db.Model(&models.EmployeeScheduleOverride{}).Where("request_id = ?", requestID).Count(&overrides)
	assert.Equal(t, int64(2), overrides)
}

func TestEmployeeRequestSchedulesAreOwned(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)
	_, schedB := seedEmployeeScheduleRows(t, db, f)

	// Employee A cannot file against employee B's schedule
	w := doJSON(t, setupScheduleRouter(db, f.EmployeeA), "POST", "/api/requests/employee-schedule", map[string]interface{}{
		"request_type": "time_off",
		"schedule_id":  schedB.ID,
		"target_date":  "2024-03-19",
		"reason":       "r",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEmployeeRejectOverHTTP(t *testing.T) {
	db := openTestDB(t)
	f := seedBranch(t, db)
	schedA, _ := seedEmployeeScheduleRows(t, db, f)

	w := doJSON(t, setupScheduleRouter(db, f.EmployeeA), "POST", "/api/requests/employee-schedule", map[string]interface{}{
		"request_type": "time_off",
		"schedule_id":  schedA.ID,
		"target_date":  "2024-03-19",
		"reason":       "dentist",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	requestID := int(decodeBody(t, w)["data"].(map[string]interface{})["id"].(float64))

	adminRouter := setupScheduleRouter(db, f.Admin)

	// Reason is mandatory for rejection
	w = doJSON(t, adminRouter, "POST",
		fmt.Sprintf("/api/requests/employee-schedule/%d/reject", requestID), map[string]interface{}{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, adminRouter, "POST",
		fmt.Sprintf("/api/requests/employee-schedule/%d/reject", requestID),
		map[string]interface{}{"reason": "short staffed that day"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// No override was written
	var overrides int64
	db.Model(&models.EmployeeScheduleOverride{}).Count(&overrides)
	assert.Equal(t, int64(0), overrides)
}
