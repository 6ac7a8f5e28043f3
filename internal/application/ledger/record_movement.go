package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/strategic-ledger/internal/domain"
	"github.com/jhoicas/strategic-ledger/internal/domain/access"
	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	rules "github.com/jhoicas/strategic-ledger/internal/domain/ledger"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
	"github.com/jhoicas/strategic-ledger/pkg/logger"
)

const (
	maxNotesLength          = 2000
	maxReferencePeriodLen   = 32
	maxIdempotencyKeyLength = 128
	defaultTxTimeout        = 5 * time.Second
)

// Options dependencias opcionales del motor de saldos.
type Options struct {
	TxTimeout   time.Duration    // por defecto 5s
	Idempotency IdempotencyStore // nil = sin deduplicación
	Metrics     Metrics
	Now         func() time.Time
}

// RecordMovementUseCase es el único camino que modifica CurrentBalance.
// Cada llamada abre una transacción, bloquea la fila del recurso (SELECT FOR UPDATE),
// calcula el nuevo saldo desde el último estado confirmado e inserta el movimiento y el
// saldo en el mismo commit.
type RecordMovementUseCase struct {
	txRunner    TxRunner
	snapshots   SnapshotRunner
	log         *logger.Logger
	txTimeout   time.Duration
	idempotency IdempotencyStore
	metrics     Metrics
	now         func() time.Time
}

// NewRecordMovementUseCase construye el caso de uso. snapshots se usa para reproducir
// respuestas idempotentes.
func NewRecordMovementUseCase(txRunner TxRunner, snapshots SnapshotRunner, log *logger.Logger, opts Options) *RecordMovementUseCase {
	uc := &RecordMovementUseCase{
		txRunner:    txRunner,
		snapshots:   snapshots,
		log:         log,
		txTimeout:   opts.TxTimeout,
		idempotency: opts.Idempotency,
		metrics:     opts.Metrics,
		now:         opts.Now,
	}
	if uc.txTimeout <= 0 {
		uc.txTimeout = defaultTxTimeout
	}
	if uc.metrics == nil {
		uc.metrics = noopMetrics{}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.log == nil {
		uc.log = logger.Nop()
	}
	return uc
}

// MovementInput entrada para registrar un movimiento.
type MovementInput struct {
	ResourceID      string
	Type            entity.MovementType
	Quantity        decimal.Decimal
	Notes           string
	ReferencePeriod string
	IdempotencyKey  string
}

// RecordResult recurso actualizado y movimiento creado.
// Replayed es true cuando la respuesta proviene de una clave de idempotencia ya completada.
type RecordResult struct {
	Resource *entity.Resource
	Movement *entity.Movement
	Replayed bool
}

// RecordMovement valida, autoriza y aplica un movimiento de forma atómica.
func (uc *RecordMovementUseCase) RecordMovement(ctx context.Context, p entity.Principal, in MovementInput) (*RecordResult, error) {
	if !access.CanCreateMovement(p.Role) {
		uc.metrics.MovementFailed("forbidden")
		return nil, domain.ErrForbidden
	}
	if err := validateInput(&in); err != nil {
		uc.metrics.MovementFailed("validation")
		return nil, err
	}

	scope := p.UserID
	if uc.idempotency != nil && in.IdempotencyKey != "" {
		movementID, reserved, err := uc.idempotency.Reserve(ctx, scope, in.IdempotencyKey)
		if err != nil {
			uc.metrics.MovementFailed("storage")
			return nil, fmt.Errorf("%w: reservar clave de idempotencia: %v", domain.ErrStorage, err)
		}
		if !reserved {
			if movementID == "" {
				uc.metrics.MovementFailed("conflict")
				return nil, fmt.Errorf("%w: solicitud en curso con la misma clave de idempotencia", domain.ErrConflict)
			}
			return uc.replay(ctx, in, movementID)
		}
	}

	start := time.Now()
	result, err := uc.apply(ctx, p, in)
	if err != nil {
		if uc.idempotency != nil && in.IdempotencyKey != "" {
			if relErr := uc.idempotency.Release(context.WithoutCancel(ctx), scope, in.IdempotencyKey); relErr != nil {
				uc.log.Warn().Err(relErr).Str("resource_id", in.ResourceID).Msg("liberar clave de idempotencia")
			}
		}
		uc.metrics.MovementFailed(failureKind(err))
		if failureKind(err) == "storage" {
			uc.log.Error().Err(err).Str("resource_id", in.ResourceID).Msg("registrar movimiento")
		}
		return nil, err
	}

	if uc.idempotency != nil && in.IdempotencyKey != "" {
		if err := uc.idempotency.Complete(context.WithoutCancel(ctx), scope, in.IdempotencyKey, result.Movement.ID); err != nil {
			// El movimiento ya está confirmado; una clave sin completar solo impide el replay.
			uc.log.Warn().Err(err).Str("movement_id", result.Movement.ID).Msg("completar clave de idempotencia")
		}
	}

	uc.metrics.MovementRecorded(in.Type, time.Since(start))
	uc.log.Info().
		Str("resource_id", result.Resource.ID).
		Str("movement_id", result.Movement.ID).
		Str("type", string(in.Type)).
		Str("quantity", in.Quantity.String()).
		Str("balance", result.Resource.CurrentBalance.String()).
		Str("performed_by", p.UserID).
		Msg("movimiento registrado")
	return result, nil
}

// apply ejecuta la transacción: bloqueo, cálculo, inserción y actualización del saldo.
func (uc *RecordMovementUseCase) apply(ctx context.Context, p entity.Principal, in MovementInput) (*RecordResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	var result *RecordResult
	err := uc.txRunner.Run(ctx, func(
		resourceRepo repository.ResourceBalanceRepository,
		movRepo repository.MovementAppender,
	) error {
		// Relee el saldo dentro de la tx: nunca se usa una copia anterior al bloqueo.
		resource, err := resourceRepo.GetForUpdate(ctx, in.ResourceID)
		if err != nil {
			return err
		}
		if resource == nil {
			return domain.ErrNotFound
		}

		seq, err := movRepo.NextSequence(ctx, resource.ID)
		if err != nil {
			return err
		}

		now := uc.now().UTC().Truncate(time.Microsecond)
		newBalance := resource.CurrentBalance.Add(rules.Delta(in.Type, in.Quantity))

		mov := &entity.Movement{
			ID:              uuid.New().String(),
			ResourceID:      resource.ID,
			Sequence:        seq,
			Type:            in.Type,
			Quantity:        in.Quantity,
			Notes:           in.Notes,
			ReferencePeriod: in.ReferencePeriod,
			PerformedBy:     p.UserID,
			CreatedAt:       now,
		}
		if err := movRepo.Append(ctx, mov); err != nil {
			return err
		}
		if err := resourceRepo.UpdateBalance(ctx, resource.ID, newBalance, now); err != nil {
			return err
		}

		resource.CurrentBalance = newBalance
		resource.UpdatedAt = now
		result = &RecordResult{Resource: resource, Movement: mov}
		return nil
	})
	if err != nil {
		return nil, classify(ctx, err)
	}
	return result, nil
}

// replay devuelve el movimiento original de una clave ya completada junto con el estado
// actual del recurso, sin escribir nada.
// replay devuelve el movimiento guardado bajo la clave si coincide con la petición
// (recurso, tipo y cantidad); otra petición con la misma clave es un conflicto.
func (uc *RecordMovementUseCase) replay(ctx context.Context, in MovementInput, movementID string) (*RecordResult, error) {
	var result *RecordResult
	err := uc.snapshots.ReadSnapshot(ctx, func(
		resourceRepo repository.ResourceRepository,
		movRepo repository.MovementRepository,
	) error {
		mov, err := movRepo.GetByID(ctx, movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if mov.ResourceID != in.ResourceID {
			return fmt.Errorf("%w: la clave de idempotencia pertenece a otro recurso", domain.ErrConflict)
		}
		if mov.Type != in.Type || !mov.Quantity.Equal(in.Quantity) {
			return fmt.Errorf("%w: la clave de idempotencia ya se usó con otro movimiento", domain.ErrConflict)
		}
		resource, err := resourceRepo.GetByID(ctx, mov.ResourceID)
		if err != nil {
			return err
		}
		if resource == nil {
			return domain.ErrNotFound
		}
		result = &RecordResult{Resource: resource, Movement: mov, Replayed: true}
		return nil
	})
	if err != nil {
		return nil, classify(ctx, err)
	}
	uc.metrics.IdempotentReplay()
	return result, nil
}

func validateInput(in *MovementInput) error {
	in.ResourceID = strings.TrimSpace(in.ResourceID)
	if in.ResourceID == "" {
		return domain.NewFieldError("resourceId", "resourceId es requerido")
	}
	in.Type = entity.MovementType(strings.ToUpper(strings.TrimSpace(string(in.Type))))
	if err := rules.Validate(in.Type, in.Quantity); err != nil {
		return err
	}
	in.Notes = strings.TrimSpace(in.Notes)
	if utf8.RuneCountInString(in.Notes) > maxNotesLength {
		return domain.NewFieldError("notes", fmt.Sprintf("máximo %d caracteres", maxNotesLength))
	}
	in.ReferencePeriod = strings.TrimSpace(in.ReferencePeriod)
	if utf8.RuneCountInString(in.ReferencePeriod) > maxReferencePeriodLen {
		return domain.NewFieldError("referencePeriod", fmt.Sprintf("máximo %d caracteres", maxReferencePeriodLen))
	}
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	if len(in.IdempotencyKey) > maxIdempotencyKeyLength {
		return domain.NewFieldError("Idempotency-Key", fmt.Sprintf("máximo %d caracteres", maxIdempotencyKeyLength))
	}
	return nil
}

// classify garantiza que todo error sale con un sentinel de dominio: el vencimiento del
// plazo de la transacción es un conflicto reintentable; lo no reconocido es de almacenamiento.
func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrStorage):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: tiempo de espera agotado al confirmar el movimiento", domain.ErrConflict)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: operación cancelada", domain.ErrConflict)
	}
	return fmt.Errorf("%w: %v", domain.ErrStorage, err)
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	}
	return "storage"
}
