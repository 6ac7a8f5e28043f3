package repository

import (
	"context"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
)

// DepartmentRepository define el puerto de persistencia para departamentos.
type DepartmentRepository interface {
	Create(ctx context.Context, department *entity.Department) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Department, error)
	List(ctx context.Context) ([]*entity.Department, error)
}
