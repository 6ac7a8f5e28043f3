package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/strategic-ledger/internal/application/dto"
	"github.com/jhoicas/strategic-ledger/internal/domain"
	"github.com/jhoicas/strategic-ledger/internal/domain/access"
	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
)

// MovementQueryUseCase consulta paginada del ledger. El registro de movimientos vive en
// application/ledger.
type MovementQueryUseCase struct {
	resources       repository.ResourceRepository
	movements       repository.MovementRepository
	defaultPageSize int
}

// NewMovementQueryUseCase construye el caso de uso. defaultPageSize <= 0 usa dto.DefaultPageSize.
func NewMovementQueryUseCase(resources repository.ResourceRepository, movements repository.MovementRepository, defaultPageSize int) *MovementQueryUseCase {
	return &MovementQueryUseCase{resources: resources, movements: movements, defaultPageSize: defaultPageSize}
}

// List devuelve los movimientos del recurso, más reciente primero.
func (uc *MovementQueryUseCase) List(ctx context.Context, p entity.Principal, q dto.MovementListQuery) (*dto.MovementListResponse, error) {
	if !access.CanRead(p.Role) {
		return nil, domain.ErrForbidden
	}
	resourceID := strings.TrimSpace(q.ResourceID)
	if resourceID == "" {
		return nil, domain.NewFieldError("resourceId", "resourceId es requerido")
	}
	q.Normalize(uc.defaultPageSize)

	resource, err := uc.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if resource == nil {
		return nil, domain.ErrNotFound
	}

	list, total, err := uc.movements.ListByResource(ctx, resourceID, q.PageSize, q.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *dto.FromMovement(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: q.Page, PageSize: q.PageSize, Total: total},
	}, nil
}
