package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jhoicas/strategic-ledger/internal/application/dto"
	"github.com/jhoicas/strategic-ledger/internal/domain"
	"github.com/jhoicas/strategic-ledger/internal/domain/access"
	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
	"github.com/jhoicas/strategic-ledger/pkg/slug"
)

const (
	maxResourceNameLength        = 120
	maxResourceDescriptionLength = 2000
)

// ResourceUseCase alta, consulta y listado de recursos. El saldo no se modifica aquí:
// CurrentBalance arranca igual a InitialBalance y después solo lo mueve el motor de saldos.
type ResourceUseCase struct {
	repo        repository.ResourceRepository
	movements   repository.MovementRepository
	departments repository.DepartmentRepository
	now         func() time.Time
}

// NewResourceUseCase construye el caso de uso.
func NewResourceUseCase(
	repo repository.ResourceRepository,
	movements repository.MovementRepository,
	departments repository.DepartmentRepository,
) *ResourceUseCase {
	return &ResourceUseCase{repo: repo, movements: movements, departments: departments, now: time.Now}
}

// Create valida la entrada, deriva el slug y persiste el recurso.
func (uc *ResourceUseCase) Create(ctx context.Context, p entity.Principal, in dto.CreateResourceRequest) (*dto.ResourceResponse, error) {
	if !access.CanCreateResource(p.Role) {
		return nil, domain.ErrForbidden
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewFieldError("name", "el nombre es requerido")
	}
	if utf8.RuneCountInString(name) > maxResourceNameLength {
		return nil, domain.NewFieldError("name", fmt.Sprintf("máximo %d caracteres", maxResourceNameLength))
	}
	s := slug.Make(name)
	if s == "" {
		return nil, domain.NewFieldError("name", "el nombre debe contener letras o números")
	}
	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) > maxResourceDescriptionLength {
		return nil, domain.NewFieldError("description", fmt.Sprintf("máximo %d caracteres", maxResourceDescriptionLength))
	}
	if in.InitialBalance == nil {
		return nil, domain.NewFieldError("initialBalance", "el saldo inicial es requerido")
	}
	if in.InitialBalance.IsNegative() {
		return nil, domain.NewFieldError("initialBalance", "el saldo inicial no puede ser negativo")
	}
	status := entity.ResourceStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if status == "" {
		status = entity.ResourceStatusActive
	}
	if !status.Valid() {
		return nil, domain.NewFieldError("status", "estado inválido")
	}

	var departmentID *string
	departmentName := ""
	if in.DepartmentID != nil && strings.TrimSpace(*in.DepartmentID) != "" {
		id := strings.TrimSpace(*in.DepartmentID)
		dep, err := uc.departments.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if dep == nil {
			return nil, domain.NewFieldError("departmentId", "el departamento no existe")
		}
		departmentID = &id
		departmentName = dep.Name
	}

	existing, err := uc.repo.GetBySlug(ctx, s)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: ya existe un recurso con el slug %q", domain.ErrDuplicate, s)
	}

	now := uc.now().UTC().Truncate(time.Microsecond)
	initial := *in.InitialBalance
	resource := &entity.Resource{
		ID:             uuid.New().String(),
		Slug:           s,
		Name:           name,
		Description:    description,
		DepartmentID:   departmentID,
		InitialBalance: initial,
		CurrentBalance: initial,
		Status:         status,
		CreatedBy:      p.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, resource); err != nil {
		return nil, err
	}
	out := dto.FromResource(resource)
	out.DepartmentName = departmentName
	return out, nil
}

// GetByID devuelve el recurso con los totales de sus movimientos.
func (uc *ResourceUseCase) GetByID(ctx context.Context, p entity.Principal, id string) (*dto.ResourceDetailResponse, error) {
	if !access.CanRead(p.Role) {
		return nil, domain.ErrForbidden
	}
	resource, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if resource == nil {
		return nil, domain.ErrNotFound
	}
	totals, err := uc.movements.Totals(ctx, resource.ID)
	if err != nil {
		return nil, err
	}

	out := &dto.ResourceDetailResponse{
		ResourceResponse: *dto.FromResource(resource),
		Totals:           dto.FromTotals(totals),
	}
	count := totals.Count
	out.MovementCount = &count
	if resource.DepartmentID != nil {
		dep, err := uc.departments.GetByID(ctx, *resource.DepartmentID)
		if err != nil {
			return nil, err
		}
		if dep != nil {
			out.DepartmentName = dep.Name
		}
	}
	return out, nil
}

// List filtra por estado y texto libre, con paginación por offset.
func (uc *ResourceUseCase) List(ctx context.Context, p entity.Principal, q dto.ResourceListQuery) (*dto.ResourceListResponse, error) {
	if !access.CanRead(p.Role) {
		return nil, domain.ErrForbidden
	}
	q.Normalize(dto.DefaultPageSize)

	filter := repository.ResourceFilter{
		Search: strings.TrimSpace(q.Search),
		Limit:  q.PageSize,
		Offset: q.Offset(),
	}
	if raw := strings.TrimSpace(q.Status); raw != "" {
		status := entity.ResourceStatus(strings.ToLower(raw))
		if !status.Valid() {
			return nil, domain.NewFieldError("status", "estado inválido")
		}
		filter.Status = &status
	}

	list, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ResourceResponse, 0, len(list))
	for _, s := range list {
		items = append(items, dto.FromResourceSummary(s))
	}
	return &dto.ResourceListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: q.Page, PageSize: q.PageSize, Total: total},
	}, nil
}
