// migrate aplica el esquema del ledger en el motor configurado (DB_DRIVER).
//
// Uso: go run ./cmd/migrate [-seed] [-seed-file departamentos.csv]
//
// PostgreSQL ejecuta las migraciones SQL embebidas (la 002 ya siembra el catálogo base);
// SQLite usa AutoMigrate de gorm. -seed crea los departamentos que falten en ambos motores.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jhoicas/strategic-ledger/internal/application/usecase"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
	"github.com/jhoicas/strategic-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/strategic-ledger/internal/infrastructure/seed"
	"github.com/jhoicas/strategic-ledger/internal/infrastructure/sqlite"
	"github.com/jhoicas/strategic-ledger/pkg/config"
	"github.com/jhoicas/strategic-ledger/pkg/logger"
)

func main() {
	withSeed := flag.Bool("seed", false, "crear los departamentos del catálogo que no existan")
	seedFile := flag.String("seed-file", "", "CSV id;nombre (por defecto, catálogo embebido)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var departments repository.DepartmentRepository
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.DB.SQLitePath, log)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DB.SQLitePath).Msg("abrir SQLite")
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		log.Info().Str("path", cfg.DB.SQLitePath).Msg("esquema SQLite al día")
		departments = sqlite.NewDepartmentRepository(db)
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		for _, name := range applied {
			log.Info().Str("migration", name).Msg("migración aplicada")
		}
		if len(applied) == 0 {
			log.Info().Msg("sin migraciones pendientes")
		}
		departments = postgres.NewDepartmentRepository(pool)
	}

	if !*withSeed {
		return
	}
	deps := seed.Default()
	if *seedFile != "" {
		f, err := os.Open(*seedFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", *seedFile).Msg("abrir CSV de departamentos")
		}
		deps, err = seed.ParseDepartments(f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Str("file", *seedFile).Msg("leer CSV de departamentos")
		}
	}
	created, err := usecase.NewDepartmentUseCase(departments).Seed(ctx, seed.AsMap(deps))
	if err != nil {
		log.Fatal().Err(err).Msg("sembrar departamentos")
	}
	log.Info().Int("created", created).Int("total", len(deps)).Msg("departamentos sembrados")
}
