package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
)

// RecordMovementRequest body para POST /api/movements.
type RecordMovementRequest struct {
	ResourceID      string          `json:"resourceId"`
	MovementType    string          `json:"movementType"`
	Quantity        decimal.Decimal `json:"quantity"`
	Notes           string          `json:"notes,omitempty"`
	ReferencePeriod string          `json:"referencePeriod,omitempty"`
}

// MovementListQuery filtros de GET /api/movements.
type MovementListQuery struct {
	ResourceID string `query:"resourceId"`
	PageRequest
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID              string          `json:"id"`
	ResourceID      string          `json:"resourceId"`
	Sequence        int64           `json:"sequence"`
	MovementType    string          `json:"movementType"`
	Quantity        decimal.Decimal `json:"quantity"`
	Notes           string          `json:"notes,omitempty"`
	ReferencePeriod string          `json:"referencePeriod,omitempty"`
	PerformedBy     string          `json:"performedBy"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// MovementListResponse lista paginada de movimientos (más reciente primero).
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// RecordMovementResponse resultado de POST /api/movements.
type RecordMovementResponse struct {
	Resource *ResourceResponse `json:"resource"`
	Movement *MovementResponse `json:"movement"`
}

// MovementTotalsResponse sumas por tipo; Net = entradas - salidas + ajustes.
type MovementTotalsResponse struct {
	Entries     decimal.Decimal `json:"entries"`
	Exits       decimal.Decimal `json:"exits"`
	Adjustments decimal.Decimal `json:"adjustments"`
	Net         decimal.Decimal `json:"net"`
	Count       int             `json:"count"`
}

// SeriesPointResponse un punto de la trayectoria de saldo.
type SeriesPointResponse struct {
	Label        string          `json:"label"`
	Balance      decimal.Decimal `json:"balance"`
	MovementID   string          `json:"movementId,omitempty"`
	MovementType string          `json:"movementType,omitempty"`
	Delta        decimal.Decimal `json:"delta"`
	At           *time.Time      `json:"at,omitempty"`
}

// BalanceSeriesResponse trayectoria completa de un recurso.
// Consistent es false si el último punto no coincide con el saldo actual almacenado.
type BalanceSeriesResponse struct {
	ResourceID     string                `json:"resourceId"`
	Points         []SeriesPointResponse `json:"points"`
	FinalBalance   decimal.Decimal       `json:"finalBalance"`
	CurrentBalance decimal.Decimal       `json:"currentBalance"`
	Consistent     bool                  `json:"consistent"`
}

// IntegrityReportResponse resultado de verificar el invariante de saldo.
type IntegrityReportResponse struct {
	ResourceID      string          `json:"resourceId"`
	InitialBalance  decimal.Decimal `json:"initialBalance"`
	ExpectedBalance decimal.Decimal `json:"expectedBalance"`
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
	MovementCount   int             `json:"movementCount"`
	Consistent      bool            `json:"consistent"`
}

// FromMovement convierte la entidad en su representación HTTP.
func FromMovement(m *entity.Movement) *MovementResponse {
	if m == nil {
		return nil
	}
	return &MovementResponse{
		ID:              m.ID,
		ResourceID:      m.ResourceID,
		Sequence:        m.Sequence,
		MovementType:    string(m.Type),
		Quantity:        m.Quantity,
		Notes:           m.Notes,
		ReferencePeriod: m.ReferencePeriod,
		PerformedBy:     m.PerformedBy,
		CreatedAt:       m.CreatedAt,
	}
}

// FromTotals convierte los totales agregados.
func FromTotals(t entity.MovementTotals) MovementTotalsResponse {
	return MovementTotalsResponse{
		Entries:     t.Entries,
		Exits:       t.Exits,
		Adjustments: t.Adjustments,
		Net:         t.Net(),
		Count:       t.Count,
	}
}
