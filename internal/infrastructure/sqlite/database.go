// Package sqlite es el motor de almacenamiento embebido (desarrollo local y tests) sobre
// gorm + glebarez/sqlite. SQLite no tiene bloqueo por fila: el TxRunner serializa a los
// escritores con un mutex y la base se abre con una sola conexión.
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/jhoicas/strategic-ledger/pkg/logger"
)

// MemoryPath abre una base en memoria (tests).
const MemoryPath = ":memory:"

// Open abre (o crea) la base SQLite en path y aplica el esquema.
func Open(path string, log *logger.Logger) (*gorm.DB, error) {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return nil, fmt.Errorf("crear directorio de datos: %w", err)
		}
		dsn += "&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	config := &gorm.Config{
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		Logger: newGormLogger(log),
	}
	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Una sola conexión: evita SQLITE_BUSY y mantiene viva la base en memoria.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate crea o actualiza las tablas del ledger.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&departmentModel{}, &resourceModel{}, &movementModel{}); err != nil {
		return fmt.Errorf("migrar esquema: %w", err)
	}
	return nil
}
