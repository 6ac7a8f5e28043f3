package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del ledger.
type MovementType string

// Tipos de movimiento.
const (
	MovementTypeEntry      MovementType = "ENTRY"      // entrada, cantidad > 0
	MovementTypeExit       MovementType = "EXIT"       // salida, cantidad > 0
	MovementTypeAdjustment MovementType = "ADJUSTMENT" // ajuste con signo, cantidad != 0
)

// Movement registro inmutable que cambia el saldo de un recurso.
// El orden total por recurso es (CreatedAt, Sequence) ascendente.
type Movement struct {
	ID              string
	ResourceID      string
	Sequence        int64 // contador por recurso, asignado dentro de la transacción
	Type            MovementType
	Quantity        decimal.Decimal // magnitud para ENTRY/EXIT; con signo para ADJUSTMENT
	Notes           string
	ReferencePeriod string // etiqueta libre, ej. "2025-01"
	PerformedBy     string
	CreatedAt       time.Time
}

// MovementTotals sumas de cantidad agrupadas por tipo.
type MovementTotals struct {
	Entries     decimal.Decimal
	Exits       decimal.Decimal
	Adjustments decimal.Decimal
	Count       int
}

// Net devuelve el efecto neto sobre el saldo: entradas - salidas + ajustes.
func (t MovementTotals) Net() decimal.Decimal {
	return t.Entries.Sub(t.Exits).Add(t.Adjustments)
}
