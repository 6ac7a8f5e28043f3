package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/strategic-ledger/internal/application/ledger"
	"github.com/jhoicas/strategic-ledger/internal/application/usecase"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
	"github.com/jhoicas/strategic-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/strategic-ledger/internal/infrastructure/postgres"
	redisstore "github.com/jhoicas/strategic-ledger/internal/infrastructure/redis"
	"github.com/jhoicas/strategic-ledger/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/strategic-ledger/internal/interfaces/http"
	"github.com/jhoicas/strategic-ledger/pkg/config"
	"github.com/jhoicas/strategic-ledger/pkg/logger"
)

// storage agrupa los adaptadores del motor configurado.
type storage struct {
	resources   repository.ResourceRepository
	movements   repository.MovementRepository
	departments repository.DepartmentRepository
	txRunner    ledger.TxRunner
	snapshots   ledger.SnapshotRunner
	ready       func(context.Context) error
	close       func()
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
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("conexión al almacenamiento")
	}
	defer store.close()

	reg, err := metrics.New(true)
	if err != nil {
		log.Fatal().Err(err).Msg("registro de métricas")
	}

	opts := ledger.Options{
		TxTimeout: cfg.Ledger.TxTimeout,
		Metrics:   reg,
	}
	if cfg.Redis.Enabled() {
		rdb, err := redisstore.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer func(rdb *goredis.Client) { _ = rdb.Close() }(rdb)
		opts.Idempotency = redisstore.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		log.Info().Dur("ttl", cfg.Redis.IdempotencyTTL).Msg("claves de idempotencia habilitadas")
	}

	deps := httpRouter.RouterDeps{
		ResourceUC:     usecase.NewResourceUseCase(store.resources, store.movements, store.departments),
		MovementQuery:  usecase.NewMovementQueryUseCase(store.resources, store.movements, cfg.Ledger.DefaultPageSize),
		DepartmentUC:   usecase.NewDepartmentUseCase(store.departments),
		RecordMovement: ledger.NewRecordMovementUseCase(store.txRunner, store.snapshots, log, opts),
		BalanceSeries:  ledger.NewBalanceSeriesUseCase(store.snapshots, log, reg),
		JWTSecret:      cfg.JWT.Secret,
		Logger:         log,
	}
	appCfg := httpRouter.AppConfig{
		Name:    cfg.App.Name,
		Metrics: reg,
		Ready:   store.ready,
	}
	if cfg.HTTP.DocsEnabled {
		appCfg.DocsFile = "./docs/swagger.json"
	}
	app := httpRouter.NewApp(appCfg, deps)

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

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.DB.Driver == config.DriverSQLite {
		db, err := sqlite.Open(cfg.DB.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		runner := sqlite.NewTxRunner(db)
		return &storage{
			resources:   sqlite.NewResourceRepository(db),
			movements:   sqlite.NewMovementRepository(db),
			departments: sqlite.NewDepartmentRepository(db),
			txRunner:    runner,
			snapshots:   runner,
			ready:       sqlDB.PingContext,
			close:       func() { _ = sqlDB.Close() },
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	runner := postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout)
	return &storage{
		resources:   postgres.NewResourceRepository(pool),
		movements:   postgres.NewMovementRepository(pool),
		departments: postgres.NewDepartmentRepository(pool),
		txRunner:    runner,
		snapshots:   runner,
		ready:       pool.Ping,
		close:       pool.Close,
	}, nil
}
