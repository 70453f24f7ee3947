// Package routes defines the API routing configuration. It wires
// repositories, gateways, and services together and binds them to their
// HTTP routes.
package routes

import (
	"time"

	"gigpay/internal/config"
	"gigpay/internal/gateway"
	midtransgw "gigpay/internal/gateway/midtrans"
	stripegw "gigpay/internal/gateway/stripe"
	"gigpay/internal/handlers"
	"gigpay/internal/middleware"
	"gigpay/internal/models"
	"gigpay/internal/repositories"
	"gigpay/internal/services/contract"
	"gigpay/internal/services/fee"
	"gigpay/internal/services/ledger"
	"gigpay/internal/services/payment"
	"gigpay/internal/services/reporting"
	"gigpay/internal/services/webhook"
	"gigpay/internal/services/withdrawal"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	paymentRepo := repositories.NewPaymentRepository(db)
	accountRepo := repositories.NewAccountRepository(db)
	userRepo := repositories.NewUserRepository(db)

	stripeCfg := config.LoadStripeConfig()
	midtransCfg := config.LoadMidtransConfig()

	gateways := gateway.NewFactory()
	gateways.Register(models.ProviderStripe, stripegw.NewAdapter(stripeCfg))
	gateways.Register(models.ProviderMidtrans, midtransgw.NewAdapter(midtransCfg))

	// Each provider carries its own fee schedule so regional pricing can
	// diverge without code changes.
	fees := map[models.Provider]*fee.Engine{
		models.ProviderStripe:   fee.NewEngine(config.LoadFeeConfig("STRIPE")),
		models.ProviderMidtrans: fee.NewEngine(config.LoadFeeConfig("MIDTRANS")),
	}
	currencies := map[models.Provider]string{
		models.ProviderStripe:   stripeCfg.Currency,
		models.ProviderMidtrans: midtransCfg.Currency,
	}
	settings := map[models.Provider]payment.ProviderSettings{
		models.ProviderStripe:   {Currency: stripeCfg.Currency},
		models.ProviderMidtrans: {Currency: midtransCfg.Currency},
	}

	contracts := contract.NewHTTPResolver(config.GetEnv("CONTRACT_SERVICE_URL", "http://localhost:4000"))

	balanceService := ledger.NewService(paymentRepo, currencies)
	paymentService := payment.NewService(paymentRepo, accountRepo, userRepo, gateways, fees, settings, contracts)
	withdrawalService := withdrawal.NewService(paymentRepo, accountRepo, userRepo, balanceService, gateways, fees, repositories.Locker)
	reportingService := reporting.NewService(paymentRepo, balanceService, currencies)
	webhookService := webhook.NewService(paymentRepo, contracts, stripeCfg.WebhookSecret, midtransCfg.ServerKey)

	paymentHandler := handlers.NewPaymentHandler(paymentService)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalService)
	balanceHandler := handlers.NewBalanceHandler(balanceService)
	historyHandler := handlers.NewHistoryHandler(reportingService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	accountHandler := handlers.NewAccountHandler(accountRepo, gateways)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")
	payments := api.Group("/payments")

	// Provider callbacks: no auth (verified by signature), rate limited
	// per source IP.
	webhooks := payments.Group("/webhooks", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))
	webhooks.Post("/stripe", webhookHandler.Stripe)
	webhooks.Post("/midtrans", webhookHandler.Midtrans)

	payments.Use(middleware.Auth())

	payments.Post("/sessions", middleware.HasPermission(models.PermissionPaymentWrite), paymentHandler.CreateSession)
	payments.Post("/confirm", middleware.HasPermission(models.PermissionPaymentWrite), paymentHandler.Confirm)
	payments.Post("/withdrawals", middleware.HasPermission(models.PermissionWithdrawal), withdrawalHandler.Withdraw)
	payments.Get("/balance", middleware.HasPermission(models.PermissionWithdrawalRead), balanceHandler.Get)
	payments.Get("/history", middleware.HasPermission(models.PermissionPaymentRead), historyHandler.List)
	payments.Get("/earnings", middleware.HasPermission(models.PermissionPaymentRead), historyHandler.Earnings)
	payments.Get("/stats", middleware.HasPermission(models.PermissionPaymentRead), historyHandler.Stats)
	payments.Post("/accounts", middleware.HasPermission(models.PermissionWithdrawal), accountHandler.Register)
	payments.Get("/accounts/:provider", middleware.HasPermission(models.PermissionWithdrawalRead), accountHandler.Status)
	payments.Get("/accounts/:provider/balance", middleware.HasPermission(models.PermissionWithdrawalRead), accountHandler.ProviderBalance)
	payments.Get("/:id", middleware.HasPermission(models.PermissionPaymentRead), paymentHandler.Get)
	payments.Post("/:id/refund", middleware.HasPermission(models.PermissionPaymentWrite), paymentHandler.Refund)
}
