package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gosqlite "github.com/glebarez/go-sqlite"
	"gorm.io/gorm"

	"github.com/jhoicas/strategic-ledger/internal/domain"
)

// Códigos extendidos de SQLite.
const (
	sqliteBusy                 = 5
	sqliteLocked               = 6
	sqliteConstraintForeignKey = 787
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqlErr *gosqlite.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code() == sqliteConstraintUnique || sqlErr.Code() == sqliteConstraintPrimaryKey
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translate envuelve err con el sentinel de dominio correspondiente.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConflict, err)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConflict, err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrNotFound, err)
	}
	var sqlErr *gosqlite.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() & 0xff {
		case sqliteBusy, sqliteLocked:
			return fmt.Errorf("%s: %w: %v", op, domain.ErrConflict, err)
		}
		if sqlErr.Code() == sqliteConstraintForeignKey {
			return fmt.Errorf("%s: %w: %v", op, domain.ErrNotFound, err)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorage, err)
}

// likePattern escapa los comodines de LIKE (ESCAPE '\') y envuelve en %...%.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(s)) + "%"
}

// isDomainError indica si err ya lleva un sentinel de dominio (p. ej. devuelto por el callback de una tx).
func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound, domain.ErrConflict, domain.ErrInvalidInput,
		domain.ErrForbidden, domain.ErrStorage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
