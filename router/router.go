package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/altamedica/clinic-app/controllers"
	"github.com/altamedica/clinic-app/middlewares"
	"github.com/altamedica/clinic-app/models"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	// Global limit: 50 requests per second per IP. Must be installed before
	// the routes are registered or it applies to none of them.
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	userCtrl := controllers.NewUserController(db)
	eodCtrl := controllers.NewEodController(db)
	cashEntryCtrl := controllers.NewCashEntryController(db)
	transactionCtrl := controllers.NewTransactionController(db)
	requestCtrl := controllers.NewScheduleRequestController(db)
	notificationCtrl := controllers.NewNotificationController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Websocket hub for dashboard push (token via query param)
	r.GET("/ws", middlewares.AuthMiddleware(), controllers.HubHandler)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED API
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/profile", userCtrl.GetProfile)

		// End-of-day reconciliation
		eod := api.Group("/eod")
		{
			eod.GET("/summary", eodCtrl.GetSummary)
			eod.POST("/submit", middlewares.RequireRole(models.RoleCashier, models.RoleBranchAdmin), eodCtrl.Submit)

			review := eod.Group("")
			review.Use(middlewares.RequireRole(models.RoleBranchAdmin))
			{
				review.GET("/requests", eodCtrl.GetRequests)
				review.POST("/:id/approve", eodCtrl.Approve)
				review.POST("/:id/reject", eodCtrl.Reject)
				review.POST("/:id/flag", eodCtrl.Flag)
				review.POST("/:id/reset", eodCtrl.Reset)
			}
		}

		// Cash entries
		api.GET("/cash-entries", cashEntryCtrl.GetCashEntries)
		api.POST("/cash-entries", middlewares.RequireRole(models.RoleCashier, models.RoleBranchAdmin), cashEntryCtrl.CreateCashEntry)
		api.POST("/cash-entries/:id/approve", middlewares.RequireRole(models.RoleBranchAdmin), cashEntryCtrl.Approve)
		api.POST("/cash-entries/:id/reject", middlewares.RequireRole(models.RoleBranchAdmin), cashEntryCtrl.Reject)

		// POS billing transactions
		api.GET("/transactions", transactionCtrl.GetTransactions)
		api.POST("/transactions", middlewares.RequireRole(models.RoleCashier, models.RoleBranchAdmin), transactionCtrl.CreateTransaction)
		api.POST("/transactions/:id/void", middlewares.RequireRole(models.RoleBranchAdmin), transactionCtrl.VoidTransaction)

		// Schedule requests
		requests := api.Group("/requests")
		{
			requests.GET("/schedule-modifications", middlewares.RequireRole(models.RoleBranchAdmin), requestCtrl.GetRequests)
			requests.POST("/schedule-modifications", requestCtrl.CreateDoctorRequest)
			requests.POST("/schedule-modifications/:id/approve", middlewares.RequireRole(models.RoleBranchAdmin), requestCtrl.ApproveDoctorRequest)
			requests.POST("/schedule-modifications/:id/reject", middlewares.RequireRole(models.RoleBranchAdmin), requestCtrl.RejectDoctorRequest)

			requests.POST("/employee-schedule", requestCtrl.CreateEmployeeRequest)
			requests.POST("/employee-schedule/:id/approve", middlewares.RequireRole(models.RoleBranchAdmin), requestCtrl.ApproveEmployeeRequest)
			requests.POST("/employee-schedule/:id/reject", middlewares.RequireRole(models.RoleBranchAdmin), requestCtrl.RejectEmployeeRequest)
			requests.POST("/employee-schedule/:id/peer-response", requestCtrl.RespondInterchange)
		}

		// Notification sink
		api.GET("/notifications", notificationCtrl.GetNotifications)
		api.PATCH("/notifications/:id/read", notificationCtrl.MarkRead)
	}

	return r
}
