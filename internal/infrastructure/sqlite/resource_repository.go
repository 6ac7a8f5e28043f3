package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jhoicas/strategic-ledger/internal/domain"
	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
)

var (
	_ repository.ResourceRepository        = (*ResourceRepo)(nil)
	_ repository.ResourceBalanceRepository = (*resourceBalanceRepo)(nil)
)

// ResourceRepo implementación de ResourceRepository sobre gorm/SQLite.
type ResourceRepo struct {
	db *gorm.DB
}

// NewResourceRepository construye el adaptador. db puede ser la base o una tx.
func NewResourceRepository(db *gorm.DB) *ResourceRepo {
	return &ResourceRepo{db: db}
}

// Create persiste un recurso. Un slug repetido devuelve domain.ErrDuplicate.
func (r *ResourceRepo) Create(ctx context.Context, res *entity.Resource) error {
	err := r.db.WithContext(ctx).Omit("Department").Create(toResourceModel(res)).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert resource: %w: slug %q", domain.ErrDuplicate, res.Slug)
		}
		return translate("insert resource", err)
	}
	return nil
}

// GetByID (nil, nil) si no existe.
func (r *ResourceRepo) GetByID(ctx context.Context, id string) (*entity.Resource, error) {
	return r.first(ctx, "id = ?", id)
}

// GetBySlug (nil, nil) si no existe.
func (r *ResourceRepo) GetBySlug(ctx context.Context, slug string) (*entity.Resource, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *ResourceRepo) first(ctx context.Context, cond string, arg any) (*entity.Resource, error) {
	var m resourceModel
	err := r.db.WithContext(ctx).Where(cond, arg).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translate("get resource", err)
	}
	return m.toEntity(), nil
}

// resourceSummaryRow fila plana del listado; gorm no rellena structs embebidos no exportados.
type resourceSummaryRow struct {
	ID             string          `gorm:"column:id"`
	Slug           string          `gorm:"column:slug"`
	Name           string          `gorm:"column:name"`
	Description    string          `gorm:"column:description"`
	DepartmentID   *string         `gorm:"column:department_id"`
	InitialBalance decimal.Decimal `gorm:"column:initial_balance"`
	CurrentBalance decimal.Decimal `gorm:"column:current_balance"`
	Status         string          `gorm:"column:status"`
	CreatedBy      string          `gorm:"column:created_by"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
	DepartmentName string          `gorm:"column:department_name"`
	MovementCount  int             `gorm:"column:movement_count"`
}

func (r *resourceSummaryRow) toSummary() *entity.ResourceSummary {
	m := resourceModel{
		ID:             r.ID,
		Slug:           r.Slug,
		Name:           r.Name,
		Description:    r.Description,
		DepartmentID:   r.DepartmentID,
		InitialBalance: r.InitialBalance,
		CurrentBalance: r.CurrentBalance,
		Status:         r.Status,
		CreatedBy:      r.CreatedBy,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	return &entity.ResourceSummary{
		Resource:       *m.toEntity(),
		DepartmentName: r.DepartmentName,
		MovementCount:  r.MovementCount,
	}
}

// List filtra por estado y texto (nombre, slug o departamento), created_at DESC.
func (r *ResourceRepo) List(ctx context.Context, f repository.ResourceFilter) ([]*entity.ResourceSummary, int, error) {
	base := r.db.WithContext(ctx).
		Table("resources").
		Joins("LEFT JOIN departments ON departments.id = resources.department_id")
	if f.Status != nil {
		base = base.Where("resources.status = ?", string(*f.Status))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		base = base.Where(
			`(LOWER(resources.name) LIKE ? ESCAPE '\' OR LOWER(resources.slug) LIKE ? ESCAPE '\' OR LOWER(departments.name) LIKE ? ESCAPE '\')`,
			p, p, p,
		)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate("count resources", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	var rows []resourceSummaryRow
	err := base.Session(&gorm.Session{}).
		Select(`resources.id, resources.slug, resources.name, resources.description,
			resources.department_id, resources.initial_balance, resources.current_balance,
			resources.status, resources.created_by, resources.created_at, resources.updated_at,
			COALESCE(departments.name, '') AS department_name,
			(SELECT COUNT(*) FROM movements WHERE movements.resource_id = resources.id) AS movement_count`).
		Order("resources.created_at DESC, resources.id").
		Limit(limit).
		Offset(f.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, translate("list resources", err)
	}

	out := make([]*entity.ResourceSummary, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toSummary())
	}
	return out, int(total), nil
}

// resourceBalanceRepo operaciones de saldo; solo lo construye el TxRunner con su tx.
type resourceBalanceRepo struct {
	tx *gorm.DB
}

// GetForUpdate lee el recurso. El bloqueo lo da el mutex de escritura del TxRunner.
func (r *resourceBalanceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Resource, error) {
	var m resourceModel
	err := r.tx.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translate("lock resource", err)
	}
	return m.toEntity(), nil
}

// UpdateBalance escribe saldo y updated_at sin pasar por los hooks de gorm.
func (r *resourceBalanceRepo) UpdateBalance(ctx context.Context, id string, newBalance decimal.Decimal, updatedAt time.Time) error {
	res := r.tx.WithContext(ctx).
		Model(&resourceModel{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"current_balance": newBalance, "updated_at": updatedAt})
	if res.Error != nil {
		return translate("update balance", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update balance: %w", domain.ErrNotFound)
	}
	return nil
}
