package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Es el único camino por el que se obtiene ResourceBalanceRepository: garantiza que la
// inserción del movimiento y la actualización del saldo se confirman juntas o no se confirman.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		resourceRepo repository.ResourceBalanceRepository,
		movRepo repository.MovementAppender,
	) error) error
}

// SnapshotRunner ejecuta lecturas sobre una instantánea consistente (sin escrituras), de modo
// que el recurso y sus movimientos se observan en el mismo punto del tiempo.
type SnapshotRunner interface {
	ReadSnapshot(ctx context.Context, fn func(
		resourceRepo repository.ResourceRepository,
		movRepo repository.MovementRepository,
	) error) error
}

// IdempotencyStore reserva claves de idempotencia por usuario.
//
// Reserve devuelve:
//   - reserved=true: la clave es nueva y queda "en curso" a nombre del llamador.
//   - reserved=false, movementID != "": la clave ya se completó con ese movimiento.
//   - reserved=false, movementID == "": otra solicitud con la misma clave sigue en curso.
type IdempotencyStore interface {
	Reserve(ctx context.Context, scope, key string) (movementID string, reserved bool, err error)
	Complete(ctx context.Context, scope, key, movementID string) error
	Release(ctx context.Context, scope, key string) error
}

// Metrics observa el resultado de cada intento de registrar un movimiento.
type Metrics interface {
	MovementRecorded(t entity.MovementType, elapsed time.Duration)
	MovementFailed(kind string)
	IdempotentReplay()
	IntegrityViolation()
}

type noopMetrics struct{}

func (noopMetrics) MovementRecorded(entity.MovementType, time.Duration) {}
func (noopMetrics) MovementFailed(string)                               {}
func (noopMetrics) IdempotentReplay()                                   {}
func (noopMetrics) IntegrityViolation()                                 {}
