package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/strategic-ledger/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// translate envuelve err con el sentinel de dominio que corresponde. op describe la operación.
//
//	bloqueo no disponible, serialización, deadlock, cancelación y unique → ErrConflict
//	foreign key → ErrNotFound
//	resto → ErrStorage
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
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation, codeSerializationFailure, codeDeadlockDetected,
			codeLockNotAvailable, codeQueryCanceled:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrConflict, pgErr.Message)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrNotFound, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorage, err)
}

// likePattern escapa los comodines de LIKE y envuelve el texto en %...%.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
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
