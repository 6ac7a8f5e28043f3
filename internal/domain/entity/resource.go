package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResourceStatus estado informativo de un recurso; no bloquea movimientos.
type ResourceStatus string

// Estados de recurso. Archived es el estado terminal (no hay borrado físico).
const (
	ResourceStatusActive   ResourceStatus = "active"
	ResourceStatusPaused   ResourceStatus = "paused"
	ResourceStatusArchived ResourceStatus = "archived"
)

// Valid indica si el estado pertenece al conjunto cerrado.
func (s ResourceStatus) Valid() bool {
	switch s {
	case ResourceStatusActive, ResourceStatusPaused, ResourceStatusArchived:
		return true
	}
	return false
}

// Resource representa una cantidad con nombre (cupo de plantilla, bolsa de presupuesto)
// cuyo saldo cambia solo a través de movimientos.
// CurrentBalance == InitialBalance + Σ delta(movimientos); solo lo modifica el motor de saldos.
type Resource struct {
	ID             string
	Slug           string // derivado de Name al crear, nunca se recalcula
	Name           string
	Description    string
	DepartmentID   *string // nil = general
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	Status         ResourceStatus
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ResourceSummary es la fila de listado: recurso + nombre de departamento + número de movimientos.
type ResourceSummary struct {
	Resource
	DepartmentName string
	MovementCount  int
}
