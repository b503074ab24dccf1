package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Yusufdydx/vv-ng/internal/config"
	"github.com/Yusufdydx/vv-ng/internal/handler"
	"github.com/Yusufdydx/vv-ng/internal/middleware"
	"github.com/Yusufdydx/vv-ng/internal/repository"
	"github.com/Yusufdydx/vv-ng/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	repo, err := repository.New(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	// Create services
	userSvc := service.NewUserService(repo)
	fees := service.NewFeePolicy(repo)
	balanceSvc := service.NewBalanceService(repo)
	transferSvc := service.NewTransferService(repo, fees)
	paymentSvc := service.NewPaymentService(repo, fees)
	moderationSvc := service.NewModerationService(repo)

	// Create handlers
	h := handler.New(cfg, userSvc, balanceSvc, transferSvc, paymentSvc)
	adminHandler := handler.NewAdminHandler(repo, balanceSvc, moderationSvc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Health check
	app.Get("/health", h.Health)

	// API routes with authentication
	api := app.Group("/api", middleware.Auth(cfg))

	// Profile
	api.Get("/me", h.GetMe)

	// Balance and ledger
	api.Get("/balance", h.GetBalance)
	api.Get("/balance/transactions", h.GetTransactions)
	api.Get("/balance/transactions/:reference", h.GetTransaction)
	api.Post("/balance/transfer", h.Transfer)
	api.Post("/balance/withdraw", h.Withdraw)
	api.Post("/mentorship/pay", h.PayMentorship)

	// Deposits
	api.Get("/payment-methods", h.GetPaymentMethods)
	api.Post("/deposits", h.SubmitManualDeposit)
	api.Get("/deposits", h.GetManualDeposits)

	// Admin panel routes (requires auth + admin check)
	admin := app.Group("/api/admin", middleware.Auth(cfg), middleware.AdminAuth(userSvc))
	admin.Get("/stats", adminHandler.GetStats)
	admin.Post("/users", h.RegisterUser)
	admin.Get("/balance", adminHandler.GetPlatformBalance)
	admin.Get("/transactions/pending", adminHandler.ListPendingTransactions)
	admin.Post("/transactions/:txn_id/approve", adminHandler.ApproveTransaction)
	admin.Post("/transactions/:txn_id/reject", adminHandler.RejectTransaction)
	admin.Get("/deposits/pending", adminHandler.ListPendingDeposits)
	admin.Post("/deposits/:deposit_id/approve", adminHandler.ApproveDeposit)
	admin.Post("/deposits/:deposit_id/reject", adminHandler.RejectDeposit)
	admin.Get("/settings", adminHandler.GetSettings)
	admin.Post("/settings", adminHandler.SetSetting)
	admin.Get("/payment-methods", adminHandler.ListPaymentMethods)
	admin.Post("/payment-methods", adminHandler.CreatePaymentMethod)
	admin.Post("/payment-methods/:method_id/toggle", adminHandler.TogglePaymentMethod)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
