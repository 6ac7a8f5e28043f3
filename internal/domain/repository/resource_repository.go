package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
)

// ResourceFilter filtros de listado. Search compara sin distinguir mayúsculas contra
// nombre, slug y nombre de departamento.
type ResourceFilter struct {
	Status *entity.ResourceStatus
	Search string
	Limit  int
	Offset int
}

//go:generate mockgen -source=resource_repository.go -destination=mock/resource_repository_mock.go -package=mock

// ResourceRepository define el puerto de persistencia para recursos (sin borrado).
// No expone la mutación de saldo: esa solo existe en ResourceBalanceRepository,
// que únicamente se obtiene dentro de una transacción del motor de saldos.
// GetByID y GetBySlug devuelven (nil, nil) si el recurso no existe.
type ResourceRepository interface {
	Create(ctx context.Context, resource *entity.Resource) error
	GetByID(ctx context.Context, id string) (*entity.Resource, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Resource, error)
	List(ctx context.Context, filter ResourceFilter) ([]*entity.ResourceSummary, int, error)
}

// ResourceBalanceRepository operaciones atadas a la transacción del motor de saldos.
type ResourceBalanceRepository interface {
	// GetForUpdate lee el recurso y bloquea su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Resource, error)
	UpdateBalance(ctx context.Context, id string, newBalance decimal.Decimal, updatedAt time.Time) error
}
