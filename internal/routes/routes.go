package routes

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/tastetab/internal/config"
	"github.com/example/tastetab/internal/handlers"
	"github.com/example/tastetab/internal/middleware"
	"github.com/example/tastetab/internal/models"
	"github.com/example/tastetab/internal/seed"
	"github.com/example/tastetab/internal/services"
	"github.com/example/tastetab/internal/store"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Config   *config.Config
	Store    store.Store
	Mailer   services.Mailer
	Gateway  handlers.PaymentGateway
	Notifier services.Notifier
	// AccessLog receives one line per request; nil disables access logging.
	AccessLog io.Writer
}

// NewApp builds the fiber application with error rendering, panic recovery,
// CORS and every route registered.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "TasteTab POS",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	if deps.AccessLog != nil {
		app.Use(logger.New(logger.Config{Output: deps.AccessLog}))
	}
	app.Use(cors.New(corsConfig(deps.Config.CORSOrigins)))

	Register(app, deps)
	return app
}

func corsConfig(origins string) cors.Config {
	origins = strings.TrimSpace(origins)
	if origins == "" {
		origins = "*"
	}
	return cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Deps) {
	cfg := deps.Config

	authHandler := handlers.NewAuthHandler(deps.Store, cfg)
	resetHandler := handlers.NewPasswordResetHandler(deps.Store, deps.Mailer, cfg)
	itemHandler := handlers.NewItemHandler(deps.Store, seed.Items)
	billHandler := handlers.NewBillHandler(deps.Store, deps.Notifier)
	paymentHandler := handlers.NewPaymentHandler(deps.Gateway, deps.Notifier, cfg.RazorpayQRID)

	adminOnly := middleware.RequireRole(cfg.JWTSecret, models.RoleAdmin)
	userOnly := middleware.RequireRole(cfg.JWTSecret, models.RoleUser)
	anyRole := middleware.RequireRole(cfg.JWTSecret, models.RoleAdmin, models.RoleUser)

	app.Get("/", handlers.Health)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", resetHandler.ForgotPassword)
	auth.Post("/verify-otp", resetHandler.VerifyOTP)

	// Menu management
	items := app.Group("/dashboard/items", adminOnly)
	items.Get("/", itemHandler.ListItems)
	items.Post("/", itemHandler.CreateItem)
	items.Put("/:id", itemHandler.UpdateItem)
	items.Delete("/:id", itemHandler.DeleteItem)

	// Public menu, no role gate.
	api.Get("/items", itemHandler.ListItems)
	api.Post("/insert-items", itemHandler.InsertSeedItems)

	// Billing ledger
	bill := api.Group("/bill")
	bill.Get("/bills", adminOnly, billHandler.ListBills)
	bill.Post("/bills", userOnly, billHandler.CreateBill)
	bill.Get("/bills/:id", adminOnly, billHandler.GetBill)
	bill.Get("/bills/:id/receipt.pdf", anyRole, billHandler.Receipt)
	bill.Get("/report", adminOnly, billHandler.Report)
	bill.Get("/export.csv", adminOnly, billHandler.ExportCSV)
	bill.Get("/export.pdf", adminOnly, billHandler.ExportPDF)

	// Session smoke tests
	api.Get("/admin/dashboard", adminOnly, handlers.AdminDashboard)
	api.Get("/user/dashboard", userOnly, handlers.UserDashboard)

	// Payment gateway
	app.Post("/create-order", paymentHandler.CreateOrder)
	app.Get("/fetch-qr", paymentHandler.FetchQR)
	app.Post("/verify-payment", paymentHandler.VerifyPayment)
	app.Post("/razorpay/webhook", middleware.RazorpayWebhookAuth(cfg.RazorpayWebhookSecret), paymentHandler.Webhook)
}
