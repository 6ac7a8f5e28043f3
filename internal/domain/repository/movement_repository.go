package repository

import (
	"context"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
)

// MovementRepository lectura del ledger de movimientos (append-only, sin update ni delete).
type MovementRepository interface {
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// ListByResource ordena por fecha descendente (más reciente primero) y devuelve el total.
	ListByResource(ctx context.Context, resourceID string, limit, offset int) ([]*entity.Movement, int, error)
	// ListChronological devuelve todos los movimientos del recurso en orden ascendente.
	ListChronological(ctx context.Context, resourceID string) ([]*entity.Movement, error)
	Totals(ctx context.Context, resourceID string) (entity.MovementTotals, error)
}

// MovementAppender inserción de movimientos dentro de la transacción del motor de saldos.
type MovementAppender interface {
	// NextSequence siguiente número de secuencia del recurso (requiere la fila del recurso bloqueada).
	NextSequence(ctx context.Context, resourceID string) (int64, error)
	Append(ctx context.Context, movement *entity.Movement) error
}
