package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/altamedica/clinic-app/models"
	"github.com/altamedica/clinic-app/utils"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func mustDay(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named shared-cache DSN keeps every pooled connection on the same
	// in-memory database; with plain ":memory:" each connection gets its own.
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Branch{},
		&models.User{},
		&models.BillingTransaction{},
		&models.CashEntry{},
		&models.BranchDailyCashSummary{},
		&models.DoctorSchedule{},
		&models.ScheduleCancelDate{},
		&models.EmployeeSchedule{},
		&models.ScheduleModificationRequest{},
		&models.ScheduleChangeRequest{},
		&models.EmployeeScheduleOverride{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

type branchFixture struct {
	Branch     models.Branch
	Admin      models.User
	Cashier    models.User
	Doctor     models.User
	EmployeeA  models.User
	EmployeeB  models.User
	OtherAdmin models.User
}

func seedBranch(t *testing.T, db *gorm.DB) *branchFixture {
	t.Helper()
	f := &branchFixture{Branch: models.Branch{Name: "Central Clinic", Code: "CEN"}}
	other := models.Branch{Name: "North Clinic", Code: "NOR"}
	db.Create(&f.Branch)
	db.Create(&other)

	users := []*models.User{
		{BranchID: f.Branch.ID, Name: "Admin", Email: "admin@clinic.test", Password: "x", Role: models.RoleBranchAdmin, IsActive: true},
		{BranchID: f.Branch.ID, Name: "Cashier", Email: "cashier@clinic.test", Password: "x", Role: models.RoleCashier, IsActive: true},
		{BranchID: f.Branch.ID, Name: "Doctor", Email: "doctor@clinic.test", Password: "x", Role: models.RoleDoctor, IsActive: true},
		{BranchID: f.Branch.ID, Name: "Employee A", Email: "empa@clinic.test", Password: "x", Role: models.RoleEmployee, IsActive: true},
		{BranchID: f.Branch.ID, Name: "Employee B", Email: "empb@clinic.test", Password: "x", Role: models.RoleEmployee, IsActive: true},
		{BranchID: other.ID, Name: "Other Admin", Email: "other@clinic.test", Password: "x", Role: models.RoleBranchAdmin, IsActive: true},
	}
	for _, u := range users {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("failed to seed user %s: %v", u.Email, err)
		}
	}
	f.Admin, f.Cashier, f.Doctor = *users[0], *users[1], *users[2]
	f.EmployeeA, f.EmployeeB, f.OtherAdmin = *users[3], *users[4], *users[5]
	return f
}

// asUser injects the claims the auth middleware would have set, so handlers
// can be exercised without a real token.
func asUser(u models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", u.ID)
		c.Set("branchID", u.BranchID)
		c.Set("role", u.Role)
		c.Next()
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, url string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return resp
}
