package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"golang.org/x/text/language"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/auth"
	appexport "github.com/jhoicas/stock-ledger/internal/application/export"
	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	infraexport "github.com/jhoicas/stock-ledger/internal/infrastructure/export"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/mysql"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// storage repositorios y runner del backend elegido.
type storage struct {
	products  repository.ProductRepository
	movements repository.MovementRepository
	users     repository.UserRepository
	txRunner  appinventory.TxRunner
	snapshots analytics.Snapshotter
	pinger    httpRouter.Pinger
	close     func()
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("migraciones PostgreSQL aplicadas")
		txRunner := postgres.NewTxRunner(pool)
		return &storage{
			products:  postgres.NewProductRepository(pool),
			movements: postgres.NewMovementRepository(pool),
			users:     postgres.NewUserRepository(pool),
			txRunner:  txRunner,
			snapshots: txRunner,
			pinger:    pool,
			close:     pool.Close,
		}, nil

	case config.DriverMySQL:
		db, err := mysql.NewConnection(ctx, cfg.MySQL)
		if err != nil {
			return nil, err
		}
		if err := mysql.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Msg("migraciones MySQL aplicadas")
		txRunner := mysql.NewTxRunner(db)
		return &storage{
			products:  mysql.NewProductRepository(db),
			movements: mysql.NewMovementRepository(db),
			users:     mysql.NewUserRepository(db),
			txRunner:  txRunner,
			snapshots: txRunner,
			pinger:    pingFunc(db.PingContext),
			close:     closeDB(db, log),
		}, nil
	}

	store := memory.NewStore()
	log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
	txRunner := memory.NewTxRunner(store)
	return &storage{
		products:  memory.NewProductRepository(store),
		movements: memory.NewMovementRepository(store),
		users:     memory.NewUserRepository(store),
		txRunner:  txRunner,
		snapshots: txRunner,
		pinger:    store,
		close:     store.Close,
	}, nil
}

func closeDB(db *sql.DB, log *logger.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar conexión MySQL")
		}
	}
}

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
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.DB.Driver).Msg("conexión al almacenamiento")
	}
	defer store.close()

	recorder := metrics.NewRecorder()
	recordMovementUC := appinventory.NewRecordMovementUseCase(store.txRunner,
		appinventory.WithMetrics(recorder),
		appinventory.WithLogger(log.Named("inventory")),
	)
	reconcileUC := appinventory.NewReconcileUseCase(store.txRunner, store.products)

	aggregation := analytics.NewAggregationService(store.products, store.movements, store.snapshots)
	dashboardUC := analytics.NewDashboardUseCase(store.snapshots, cfg.Inventory.RecentLimit)
	replenishmentUC := analytics.NewReplenishmentUseCase(store.snapshots)

	// PDF: reporte de stock con cifras en formato local
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(language.Spanish)
	exportUC := appexport.NewExportUseCase(store.products, store.movements, infraexport.NewEncoder(), pdfGenerator)

	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, auth.Options{BootstrapToken: cfg.Admin.BootstrapToken})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.Docs.SwaggerPath); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Docs.SwaggerPath,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	} else {
		log.Warn().Str("path", cfg.Docs.SwaggerPath).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		UserUC:         usecase.NewUserUseCase(store.users),
		ProductUC:      usecase.NewProductUseCase(store.products),
		RecordMovement: recordMovementUC,
		Reconcile:      reconcileUC,
		Aggregation:    aggregation,
		Dashboard:      dashboardUC,
		Replenishment:  replenishmentUC,
		ExportUC:       exportUC,
		Storage:        store.pinger,
		Backend:        cfg.DB.Driver,
		Metrics:        recorder.Handler(),
		JWTSecret:      cfg.JWT.Secret,
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
