package sqlite

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	rules "github.com/jhoicas/strategic-ledger/internal/domain/ledger"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
)

var (
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.MovementAppender   = (*MovementRepo)(nil)
)

// MovementRepo ledger de movimientos sobre gorm/SQLite. Solo inserta y lee.
type MovementRepo struct {
	db *gorm.DB
}

// NewMovementRepository construye el adaptador. db puede ser la base o una tx.
func NewMovementRepository(db *gorm.DB) *MovementRepo {
	return &MovementRepo{db: db}
}

// NextSequence siguiente secuencia del recurso.
func (r *MovementRepo) NextSequence(ctx context.Context, resourceID string) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).
		Model(&movementModel{}).
		Select("COALESCE(MAX(sequence), 0) + 1").
		Where("resource_id = ?", resourceID).
		Scan(&next).Error
	if err != nil {
		return 0, translate("next sequence", err)
	}
	return next, nil
}

// Append inserta el movimiento.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	err := r.db.WithContext(ctx).Omit("Resource").Create(toMovementModel(m)).Error
	return translate("insert movement", err)
}

// GetByID (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	var m movementModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translate("get movement", err)
	}
	return m.toEntity(), nil
}

// ListByResource más reciente primero, con el total para paginar.
func (r *MovementRepo) ListByResource(ctx context.Context, resourceID string, limit, offset int) ([]*entity.Movement, int, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&movementModel{}).Where("resource_id = ?", resourceID)
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate("count movements", err)
	}
	var rows []movementModel
	err := q.Session(&gorm.Session{}).
		Order("created_at DESC, sequence DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, translate("list movements", err)
	}
	return toMovements(rows), int(total), nil
}

// ListChronological todos los movimientos en orden (created_at, sequence).
func (r *MovementRepo) ListChronological(ctx context.Context, resourceID string) ([]*entity.Movement, error) {
	var rows []movementModel
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("created_at ASC, sequence ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate("list movements", err)
	}
	return toMovements(rows), nil
}

// Totals se calcula en memoria: los importes son TEXT y SUM en SQLite usaría REAL.
func (r *MovementRepo) Totals(ctx context.Context, resourceID string) (entity.MovementTotals, error) {
	movs, err := r.ListChronological(ctx, resourceID)
	if err != nil {
		return entity.MovementTotals{}, err
	}
	return rules.Totals(movs), nil
}

func toMovements(rows []movementModel) []*entity.Movement {
	out := make([]*entity.Movement, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntity())
	}
	return out
}
