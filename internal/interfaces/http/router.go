package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ak-ledger/internal/application/billing"
	"github.com/jhoicas/ak-ledger/internal/application/ledger"
	"github.com/jhoicas/ak-ledger/internal/application/usecase"
	"github.com/jhoicas/ak-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InvoiceUC  *billing.InvoiceUseCase
	CustomerUC *billing.CustomerUseCase
	VarietyUC  *usecase.VarietyUseCase
	Ledger     *ledger.Engine
	Log        zerolog.Logger
	JWTSecret  string // vacío = rutas /api sin autenticación
	JWTIssuer  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	adminOnly := func(c *fiber.Ctx) error { return c.Next() }
	if deps.JWTSecret != "" {
		api.Use(AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
		adminOnly = RequireRole(jwt.RoleAdmin)
	}

	// Invoices
	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.Log)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Post("/:id/payments", invoiceHandler.RecordPayment)

	// Ledger
	ledgerGroup := api.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.Ledger, deps.Log)
	ledgerGroup.Get("/entries", ledgerHandler.List)
	ledgerGroup.Post("/", ledgerHandler.Create)
	ledgerGroup.Put("/:id", ledgerHandler.Update)
	ledgerGroup.Delete("/:id", ledgerHandler.Delete)
	ledgerGroup.Post("/customers/:id/recalculate", adminOnly, ledgerHandler.Recalculate)

	// Customers
	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.Log)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Get("/:id/varieties", customerHandler.VarietyHistory)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", adminOnly, customerHandler.Delete)

	// Varieties
	varieties := api.Group("/varieties")
	varietyHandler := NewVarietyHandler(deps.VarietyUC, deps.Log)
	varieties.Get("/low-stock", varietyHandler.LowStock)
	varieties.Post("/stock-in", varietyHandler.StockIn)
	varieties.Post("/", varietyHandler.Create)
	varieties.Get("/:id", varietyHandler.GetByID)
	varieties.Put("/:id", varietyHandler.Update)
	varieties.Delete("/:id", adminOnly, varietyHandler.Delete)
}
