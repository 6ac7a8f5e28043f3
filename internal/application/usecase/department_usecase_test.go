package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/strategic-ledger/internal/application/usecase"
	"github.com/jhoicas/strategic-ledger/internal/domain"
	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
)

func TestDepartmentUseCase_SeedEsIdempotente(t *testing.T) {
	repo := &fakeDepartments{}
	uc := usecase.NewDepartmentUseCase(repo)
	seed := map[string]string{"d-1": "Ventas", "d-2": "Operaciones"}

	n, err := uc.Seed(context.Background(), seed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = uc.Seed(context.Background(), seed)
	require.NoError(t, err)
	assert.Zero(t, n, "los departamentos existentes no se recrean")

	list, err := uc.List(context.Background(), employee)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestDepartmentUseCase_SeedNombreVacio(t *testing.T) {
	uc := usecase.NewDepartmentUseCase(&fakeDepartments{})

	_, err := uc.Seed(context.Background(), map[string]string{"d-1": " "})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDepartmentUseCase_ListRolDesconocido(t *testing.T) {
	uc := usecase.NewDepartmentUseCase(departments())

	_, err := uc.List(context.Background(), entity.Principal{})

	assert.ErrorIs(t, err, domain.ErrForbidden)
}
