package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/ak-ledger/internal/application/billing"
	"github.com/jhoicas/ak-ledger/internal/application/ledger"
	"github.com/jhoicas/ak-ledger/internal/application/usecase"
	"github.com/jhoicas/ak-ledger/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/ak-ledger/internal/interfaces/http"
	"github.com/jhoicas/ak-ledger/pkg/config"
	"github.com/jhoicas/ak-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.DB.Driver).
		Bool("auth", cfg.JWT.Enabled()).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.DB, log.WithComponent("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.Close()

	engine := ledger.NewEngine(store.Tx, store.Ledger, log.Zerolog())
	invoiceUC := billing.NewInvoiceUseCase(store.Tx, store.Invoices, engine, log.Zerolog())
	customerUC := billing.NewCustomerUseCase(store.Customers)
	varietyUC := usecase.NewVarietyUseCase(store.Varieties)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.WithComponent("http"), "/health", "/docs"))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.DocsFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.DocsFile,
			Path:     "docs",
			Title:    "AK Ledger API",
		}))
	} else if cfg.HTTP.DocsFile != "" {
		log.Warn().Str("file", cfg.HTTP.DocsFile).Msg("swagger no disponible")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		InvoiceUC:  invoiceUC,
		CustomerUC: customerUC,
		VarietyUC:  varietyUC,
		Ledger:     engine,
		Log:        log.WithComponent("http"),
		JWTSecret:  cfg.JWT.Secret,
		JWTIssuer:  cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
