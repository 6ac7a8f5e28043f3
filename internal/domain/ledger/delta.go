// Package ledger contiene la aritmética pura del ledger de recursos: regla de
// signos, validación de cantidades y reconstrucción de la trayectoria de saldo.
// No conoce la persistencia; el motor transaccional vive en application/ledger.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/strategic-ledger/internal/domain"
	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
)

// MsgInvalidQuantity mensaje para cantidades rechazadas.
const MsgInvalidQuantity = "cantidad inválida"

// Delta devuelve el efecto con signo de un movimiento sobre el saldo.
//
//	ENTRY      → +cantidad
//	EXIT       → -cantidad
//	ADJUSTMENT → +cantidad (la cantidad puede ser negativa)
func Delta(t entity.MovementType, quantity decimal.Decimal) decimal.Decimal {
	if t == entity.MovementTypeExit {
		return quantity.Neg()
	}
	return quantity
}

// Validate comprueba el par tipo/cantidad: ENTRY y EXIT exigen cantidad > 0,
// ADJUSTMENT exige cantidad != 0.
func Validate(t entity.MovementType, quantity decimal.Decimal) error {
	switch t {
	case entity.MovementTypeEntry, entity.MovementTypeExit:
		if !quantity.IsPositive() {
			return domain.NewFieldError("quantity", MsgInvalidQuantity)
		}
	case entity.MovementTypeAdjustment:
		if quantity.IsZero() {
			return domain.NewFieldError("quantity", MsgInvalidQuantity)
		}
	default:
		return domain.NewFieldError("movementType", "tipo de movimiento inválido")
	}
	return nil
}

// Replay aplica los movimientos en orden sobre el saldo inicial y devuelve el saldo final.
func Replay(initial decimal.Decimal, movements []*entity.Movement) decimal.Decimal {
	balance := initial
	for _, m := range movements {
		balance = balance.Add(Delta(m.Type, m.Quantity))
	}
	return balance
}

// Totals agrupa las cantidades por tipo. Las salidas se suman como magnitud positiva.
func Totals(movements []*entity.Movement) entity.MovementTotals {
	t := entity.MovementTotals{
		Entries:     decimal.Zero,
		Exits:       decimal.Zero,
		Adjustments: decimal.Zero,
	}
	for _, m := range movements {
		switch m.Type {
		case entity.MovementTypeEntry:
			t.Entries = t.Entries.Add(m.Quantity)
		case entity.MovementTypeExit:
			t.Exits = t.Exits.Add(m.Quantity)
		case entity.MovementTypeAdjustment:
			t.Adjustments = t.Adjustments.Add(m.Quantity)
		}
		t.Count++
	}
	return t
}
