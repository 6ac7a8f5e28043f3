package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
)

// CreateResourceRequest body para POST /api/resources.
type CreateResourceRequest struct {
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	DepartmentID   *string          `json:"departmentId,omitempty"`
	InitialBalance *decimal.Decimal `json:"initialBalance"`
	Status         string           `json:"status,omitempty"`
}

// ResourceListQuery filtros de GET /api/resources.
type ResourceListQuery struct {
	Status string `query:"status"`
	Search string `query:"q"`
	PageRequest
}

// ResourceResponse salida de un recurso.
type ResourceResponse struct {
	ID             string          `json:"id"`
	Slug           string          `json:"slug"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	DepartmentID   *string         `json:"departmentId"`
	DepartmentName string          `json:"departmentName,omitempty"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	Status         string          `json:"status"`
	CreatedBy      string          `json:"createdBy"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	MovementCount  *int            `json:"movementCount,omitempty"`
}

// ResourceDetailResponse recurso con los totales de sus movimientos.
type ResourceDetailResponse struct {
	ResourceResponse
	Totals MovementTotalsResponse `json:"totals"`
}

// ResourceListResponse lista paginada de recursos.
type ResourceListResponse struct {
	Items []ResourceResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// FromResource convierte la entidad en su representación HTTP.
func FromResource(r *entity.Resource) *ResourceResponse {
	if r == nil {
		return nil
	}
	return &ResourceResponse{
		ID:             r.ID,
		Slug:           r.Slug,
		Name:           r.Name,
		Description:    r.Description,
		DepartmentID:   r.DepartmentID,
		InitialBalance: r.InitialBalance,
		CurrentBalance: r.CurrentBalance,
		Status:         string(r.Status),
		CreatedBy:      r.CreatedBy,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// FromResourceSummary incluye nombre de departamento y número de movimientos.
func FromResourceSummary(s *entity.ResourceSummary) ResourceResponse {
	out := *FromResource(&s.Resource)
	out.DepartmentName = s.DepartmentName
	count := s.MovementCount
	out.MovementCount = &count
	return out
}
