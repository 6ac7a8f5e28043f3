package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
)

var (
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.MovementAppender   = (*MovementRepo)(nil)
)

const movementColumns = `id, resource_id, sequence, type, quantity, notes, reference_period, performed_by, created_at`

// MovementRepo ledger de movimientos sobre PostgreSQL (pool o tx). Solo inserta y lee.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// NextSequence siguiente secuencia del recurso. Requiere la fila del recurso bloqueada.
func (r *MovementRepo) NextSequence(ctx context.Context, resourceID string) (int64, error) {
	var next int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM movements WHERE resource_id = $1`, resourceID,
	).Scan(&next)
	if err != nil {
		return 0, translate("next sequence", err)
	}
	return next, nil
}

// Append inserta el movimiento. (resource_id, sequence) duplicado devuelve domain.ErrConflict.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ResourceID, m.Sequence, string(m.Type), m.Quantity,
		m.Notes, m.ReferencePeriod, m.PerformedBy, m.CreatedAt,
	)
	if err != nil {
		return translate("insert movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID. (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate("get movement", err)
	}
	return m, nil
}

// ListByResource más reciente primero, con el total para paginar.
func (r *MovementRepo) ListByResource(ctx context.Context, resourceID string, limit, offset int) ([]*entity.Movement, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movements WHERE resource_id = $1`, resourceID).Scan(&total); err != nil {
		return nil, 0, translate("count movements", err)
	}
	list, err := r.list(ctx, `
		SELECT `+movementColumns+` FROM movements
		WHERE resource_id = $1
		ORDER BY created_at DESC, sequence DESC
		LIMIT $2 OFFSET $3`, resourceID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListChronological todos los movimientos del recurso en orden (created_at, sequence).
func (r *MovementRepo) ListChronological(ctx context.Context, resourceID string) ([]*entity.Movement, error) {
	return r.list(ctx, `
		SELECT `+movementColumns+` FROM movements
		WHERE resource_id = $1
		ORDER BY created_at ASC, sequence ASC`, resourceID)
}

// Totals sumas por tipo calculadas en la base de datos.
func (r *MovementRepo) Totals(ctx context.Context, resourceID string) (entity.MovementTotals, error) {
	var t entity.MovementTotals
	err := r.q.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(quantity) FILTER (WHERE type = 'ENTRY'), 0),
			COALESCE(SUM(quantity) FILTER (WHERE type = 'EXIT'), 0),
			COALESCE(SUM(quantity) FILTER (WHERE type = 'ADJUSTMENT'), 0),
			COUNT(*)
		FROM movements WHERE resource_id = $1`, resourceID,
	).Scan(&t.Entries, &t.Exits, &t.Adjustments, &t.Count)
	if err != nil {
		return entity.MovementTotals{}, translate("movement totals", err)
	}
	return t, nil
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate("list movements", err)
	}
	defer rows.Close()

	var out []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, translate("scan movement", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list movements", err)
	}
	return out, nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var (
		m   entity.Movement
		typ string
	)
	if err := row.Scan(
		&m.ID, &m.ResourceID, &m.Sequence, &typ, &m.Quantity,
		&m.Notes, &m.ReferencePeriod, &m.PerformedBy, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	return &m, nil
}
