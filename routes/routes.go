package routes

import (
	authController "richman-tours/controllers/auth"
	bookingController "richman-tours/controllers/booking"
	inquiryController "richman-tours/controllers/inquiry"
	paymentController "richman-tours/controllers/payment"
	tourController "richman-tours/controllers/tour"
	"richman-tours/logger"
	"richman-tours/middleware"
	"richman-tours/services/guard"
	"richman-tours/services/ledger"
	"richman-tours/services/notifier"
	"richman-tours/services/review"
	"richman-tours/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	asyncLogger := logger.NewAsyncLogger(db)
	emailNotifier := notifier.NewSMTPFromEnv()

	guardService := guard.NewService(db, guard.ConfigFromEnv())
	ledgerService := ledger.NewService(db, ledger.ConfigFromEnv(), emailNotifier)
	reviewService := review.NewService(db)

	authCtrl := authController.NewAuthController(db, guardService, asyncLogger)
	bookingCtrl := bookingController.NewBookingController(db, ledgerService, asyncLogger)
	paymentCtrl := paymentController.NewPaymentController(db, ledgerService, asyncLogger)
	tourCtrl := tourController.NewTourController(db, reviewService, asyncLogger)
	inquiryCtrl := inquiryController.NewInquiryController(db, emailNotifier, asyncLogger)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	app.Use(middleware.RequestLogger(asyncLogger))

	// Health check
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Message: "Richman Tours API",
			Status:  fiber.StatusOK,
		})
	})

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")

	api.Get("/tours", tourCtrl.List)
	api.Get("/tours/featured", tourCtrl.Featured)
	api.Get("/tours/categories", tourCtrl.Categories)
	api.Get("/tours/destinations", tourCtrl.Destinations)
	api.Get("/tours/:slug", tourCtrl.Detail)
	api.Get("/tours/:slug/reviews", tourCtrl.Reviews)
	api.Post("/tours/:slug/reviews", tourCtrl.CreateReview)

	api.Post("/bookings", bookingCtrl.Create)
	api.Post("/bookings/check", bookingCtrl.Check)
	api.Get("/bookings/customer", bookingCtrl.CustomerBookings)
	api.Get("/bookings/:reference", bookingCtrl.GetByReference)
	api.Post("/payments", paymentCtrl.Create)

	api.Post("/inquiries", inquiryCtrl.Create)
	api.Post("/newsletter/subscribe", inquiryCtrl.Subscribe)
	api.Post("/newsletter/unsubscribe", inquiryCtrl.Unsubscribe)

	api.Post("/auth/login", authCtrl.Login)

	/*=============================================================================
	| Authenticated Routes (any management role)
	===============================================================================*/
	auth := api.Group("/auth").Use(middleware.RequireManagement())

	auth.Post("/logout", authCtrl.Logout)
	auth.Get("/profile", authCtrl.Profile)
	auth.Put("/profile", authCtrl.UpdateProfile)
	auth.Post("/change-password", authCtrl.ChangePassword)

	admin := api.Group("/admin").Use(middleware.RequireManagement())

	admin.Get("/bookings", bookingCtrl.List)
	admin.Get("/bookings/stats", bookingCtrl.Stats)
	admin.Post("/bookings/bulk-status", bookingCtrl.BulkStatus)
	admin.Post("/bookings/:id/confirm", bookingCtrl.Confirm)
	admin.Post("/bookings/:id/cancel", bookingCtrl.Cancel)
	admin.Put("/bookings/:id/discount", bookingCtrl.Discount)
	admin.Get("/bookings/:id/payments", paymentCtrl.ListForBooking)

	admin.Put("/payments/:id/status", paymentCtrl.UpdateStatus)
	admin.Delete("/payments/:id", paymentCtrl.Delete)

	admin.Get("/reviews/pending", tourCtrl.PendingReviews)
	admin.Post("/reviews/:id/approve", tourCtrl.ApproveReview)
	admin.Delete("/reviews/:id", tourCtrl.DeleteReview)

	admin.Get("/inquiries", inquiryCtrl.List)
	admin.Post("/inquiries/:id/resolve", inquiryCtrl.Resolve)

	/*=============================================================================
	| Admin-only Routes
	===============================================================================*/
	users := api.Group("/admin/users").Use(middleware.RequireAdmin())

	users.Get("/", authCtrl.ListUsers)
	users.Get("/:id", authCtrl.GetUser)
	users.Put("/:id", authCtrl.UpdateUser)
	users.Post("/:id/unlock", authCtrl.UnlockUser)
	users.Post("/:id/reset-attempts", authCtrl.ResetAttempts)

	security := api.Group("/admin/security").Use(middleware.RequireAdmin())
	security.Get("/login-attempts", authCtrl.SecurityLogs)
}
