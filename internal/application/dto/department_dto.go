package dto

import (
	"time"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
)

// DepartmentResponse salida de un departamento.
type DepartmentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromDepartment convierte la entidad en su representación HTTP.
func FromDepartment(d *entity.Department) DepartmentResponse {
	return DepartmentResponse{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt}
}
