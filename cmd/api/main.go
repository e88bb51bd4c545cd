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

	"github.com/jhoicas/Reparaciones-api/internal/application/billing"
	"github.com/jhoicas/Reparaciones-api/internal/application/estimates"
	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/application/inventory"
	"github.com/jhoicas/Reparaciones-api/internal/application/orders"
	"github.com/jhoicas/Reparaciones-api/internal/application/ports"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
	"github.com/jhoicas/Reparaciones-api/internal/infrastructure/jobs"
	"github.com/jhoicas/Reparaciones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Reparaciones-api/internal/infrastructure/notify"
	"github.com/jhoicas/Reparaciones-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Reparaciones-api/internal/interfaces/http"
	"github.com/jhoicas/Reparaciones-api/pkg/config"
	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	loc, err := cfg.Workshop.Location()
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.Workshop.Timezone).Msg("zona horaria del taller")
	}

	ctx := context.Background()
	txRunner, store, closeDB := openStore(ctx, cfg, log)
	defer closeDB()

	publisher, closePub := openPublisher(ctx, cfg, log)
	defer closePub()
	dispatcher := events.NewDispatcher(publisher, log)

	reconciler := billing.NewReconciler(cfg.Workshop.TaxRate)
	ordersUC := orders.NewUseCase(txRunner, store, reconciler, inventory.NewConsumer(), dispatcher, log, orders.Config{
		FolioPrefix:   cfg.Workshop.FolioPrefix,
		FolioAttempts: cfg.Workshop.FolioAttempts,
		Location:      loc,
	})
	paymentUC := billing.NewPaymentUseCase(txRunner, store, reconciler, ordersUC, dispatcher)
	estimatesUC := estimates.NewUseCase(txRunner, store, dispatcher, log, cfg.Workshop.TaxRate)
	stockUC := inventory.NewStockUseCase(txRunner, store, dispatcher)
	lowStockUC := inventory.NewLowStockUseCase(store, dispatcher)

	var lowStockJob *jobs.LowStockJob
	if cfg.Workshop.LowStockCron != "" {
		lowStockJob = jobs.NewLowStockJob(lowStockUC, cfg.Workshop.LowStockCron, loc, log)
		if err := lowStockJob.Start(); err != nil {
			log.Fatal().Err(err).Str("cron", cfg.Workshop.LowStockCron).Msg("programar barrido de existencias")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New(), requestid.New(), httpRouter.RequestLog(log))

	// Swagger UI en local: http://localhost:<port>/docs (solo si se generó docs/swagger.json)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Reparaciones API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Orders:    ordersUC,
		Payments:  paymentUC,
		Estimates: estimatesUC,
		Stock:     stockUC,
		LowStock:  lowStockUC,
		TaxRate:   cfg.Workshop.TaxRate,
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
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
	if lowStockJob != nil {
		lowStockJob.Stop()
	}

	log.Info().Msg("aplicación detenida")
}

// openStore PostgreSQL (con migraciones) o almacenamiento en memoria según DB_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.TxRunner, repository.Store, func()) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		db := memory.New()
		return db, db.Store(), func() {}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Strs("migraciones", applied).Msg("esquema al día")
	return postgres.NewTxRunner(pool), postgres.NewStore(pool), pool.Close
}

// openPublisher eventos al log y, si hay REDIS_ADDR, también a Redis.
func openPublisher(ctx context.Context, cfg *config.Config, log *logger.Logger) (events.Publisher, func()) {
	logPub := notify.NewLogPublisher(log)
	if cfg.Redis.Addr == "" {
		return logPub, func() {}
	}
	client, err := notify.NewRedisClient(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, eventos solo al log")
		return logPub, func() {}
	}
	return notify.Multi{logPub, notify.NewRedisPublisher(client, cfg.Redis.Channel)}, func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar cliente redis")
		}
	}
}
