package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/strategic-ledger/internal/application/dto"
	"github.com/jhoicas/strategic-ledger/internal/domain"
	"github.com/jhoicas/strategic-ledger/internal/domain/access"
	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
)

// DepartmentUseCase catálogo de departamentos.
type DepartmentUseCase struct {
	repo repository.DepartmentRepository
}

// NewDepartmentUseCase construye el caso de uso.
func NewDepartmentUseCase(repo repository.DepartmentRepository) *DepartmentUseCase {
	return &DepartmentUseCase{repo: repo}
}

// List devuelve todos los departamentos ordenados por nombre.
func (uc *DepartmentUseCase) List(ctx context.Context, p entity.Principal) ([]dto.DepartmentResponse, error) {
	if !access.CanRead(p.Role) {
		return nil, domain.ErrForbidden
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DepartmentResponse, 0, len(list))
	for _, d := range list {
		out = append(out, dto.FromDepartment(d))
	}
	return out, nil
}

// Seed crea los departamentos que aún no existen (por ID). Lo usa cmd/migrate.
func (uc *DepartmentUseCase) Seed(ctx context.Context, names map[string]string) (int, error) {
	created := 0
	for id, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return created, domain.NewFieldError("name", "el nombre es requerido")
		}
		if id == "" {
			id = uuid.New().String()
		}
		existing, err := uc.repo.GetByID(ctx, id)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		if err := uc.repo.Create(ctx, &entity.Department{ID: id, Name: name, CreatedAt: time.Now().UTC()}); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
