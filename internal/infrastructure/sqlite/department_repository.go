package sqlite

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
)

var _ repository.DepartmentRepository = (*DepartmentRepo)(nil)

// DepartmentRepo implementación de DepartmentRepository sobre gorm/SQLite.
type DepartmentRepo struct {
	db *gorm.DB
}

// NewDepartmentRepository construye el adaptador.
func NewDepartmentRepository(db *gorm.DB) *DepartmentRepo {
	return &DepartmentRepo{db: db}
}

func (r *DepartmentRepo) Create(ctx context.Context, d *entity.Department) error {
	m := departmentModel{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt}
	return translate("insert department", r.db.WithContext(ctx).Create(&m).Error)
}

func (r *DepartmentRepo) GetByID(ctx context.Context, id string) (*entity.Department, error) {
	var m departmentModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translate("get department", err)
	}
	return &entity.Department{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt.UTC()}, nil
}

func (r *DepartmentRepo) List(ctx context.Context) ([]*entity.Department, error) {
	var rows []departmentModel
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, translate("list departments", err)
	}
	out := make([]*entity.Department, 0, len(rows))
	for _, m := range rows {
		out = append(out, &entity.Department{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt.UTC()})
	}
	return out, nil
}
