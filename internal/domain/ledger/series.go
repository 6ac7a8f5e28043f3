package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
)

// InitialLabel etiqueta del primer punto de la serie.
const InitialLabel = "initial"

// LabelLayout formato de fecha usado como etiqueta de cada punto.
const LabelLayout = "2006-01-02"

// SeriesPoint un punto de la trayectoria de saldo.
// El punto inicial no tiene movimiento asociado (MovementID vacío, At nil).
type SeriesPoint struct {
	Label      string
	Balance    decimal.Decimal
	MovementID string
	Type       entity.MovementType
	Delta      decimal.Decimal
	At         *time.Time
}

// BuildSeries reconstruye la trayectoria de saldo partiendo de initial.
// Los movimientos se ordenan por (CreatedAt, Sequence) ascendente antes de aplicarse,
// así que el llamador puede pasarlos en cualquier orden. No modifica el slice recibido.
func BuildSeries(initial decimal.Decimal, movements []*entity.Movement) []SeriesPoint {
	ordered := make([]*entity.Movement, len(movements))
	copy(ordered, movements)
	SortChronological(ordered)

	points := make([]SeriesPoint, 0, len(ordered)+1)
	points = append(points, SeriesPoint{Label: InitialLabel, Balance: initial, Delta: decimal.Zero})

	running := initial
	for _, m := range ordered {
		d := Delta(m.Type, m.Quantity)
		running = running.Add(d)
		at := m.CreatedAt
		points = append(points, SeriesPoint{
			Label:      m.CreatedAt.Format(LabelLayout),
			Balance:    running,
			MovementID: m.ID,
			Type:       m.Type,
			Delta:      d,
			At:         &at,
		})
	}
	return points
}

// SortChronological ordena por CreatedAt y, en empate, por Sequence.
func SortChronological(movements []*entity.Movement) {
	sort.SliceStable(movements, func(i, j int) bool {
		a, b := movements[i], movements[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Sequence < b.Sequence
	})
}

// FinalBalance devuelve el saldo del último punto de la serie.
func FinalBalance(points []SeriesPoint) decimal.Decimal {
	if len(points) == 0 {
		return decimal.Zero
	}
	return points[len(points)-1].Balance
}
