package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	"github.com/jhoicas/strategic-ledger/internal/domain/ledger"
)

func TestBuildSeries_PuntoInicialYUnoPorMovimiento(t *testing.T) {
	day1 := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC)
	movs := []*entity.Movement{
		{ID: "b", Sequence: 2, Type: entity.MovementTypeExit, Quantity: dec("3"), CreatedAt: day2},
		{ID: "a", Sequence: 1, Type: entity.MovementTypeEntry, Quantity: dec("5"), CreatedAt: day1},
	}

	points := ledger.BuildSeries(dec("10"), movs)
	require.Len(t, points, 3)

	assert.Equal(t, ledger.InitialLabel, points[0].Label)
	assert.True(t, dec("10").Equal(points[0].Balance))
	assert.Nil(t, points[0].At)

	assert.Equal(t, "2025-01-02", points[1].Label)
	assert.Equal(t, "a", points[1].MovementID)
	assert.True(t, dec("15").Equal(points[1].Balance))

	assert.Equal(t, "2025-01-03", points[2].Label)
	assert.True(t, dec("-3").Equal(points[2].Delta))
	assert.True(t, dec("12").Equal(ledger.FinalBalance(points)))

	// el slice original no se reordena
	assert.Equal(t, "b", movs[0].ID)
}

// Empates de CreatedAt se resuelven por Sequence (orden de inserción).
func TestBuildSeries_EmpateResueltoPorSecuencia(t *testing.T) {
	at := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	movs := []*entity.Movement{
		{ID: "second", Sequence: 2, Type: entity.MovementTypeAdjustment, Quantity: dec("-20"), CreatedAt: at},
		{ID: "first", Sequence: 1, Type: entity.MovementTypeEntry, Quantity: dec("20"), CreatedAt: at},
	}

	points := ledger.BuildSeries(dec("0"), movs)
	require.Len(t, points, 3)
	assert.Equal(t, "first", points[1].MovementID)
	assert.True(t, dec("20").Equal(points[1].Balance))
	assert.True(t, dec("0").Equal(points[2].Balance))
}

func TestBuildSeries_SinMovimientos(t *testing.T) {
	points := ledger.BuildSeries(dec("7"), nil)
	require.Len(t, points, 1)
	assert.True(t, dec("7").Equal(ledger.FinalBalance(points)))
}

func TestBuildSeries_TerminaEnReplay(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	var movs []*entity.Movement
	for i := 0; i < 25; i++ {
		typ := entity.MovementTypeEntry
		qty := dec("1.25")
		if i%3 == 0 {
			typ = entity.MovementTypeExit
			qty = dec("0.5")
		}
		if i%7 == 0 {
			typ = entity.MovementTypeAdjustment
			qty = dec("-0.75")
		}
		movs = append(movs, &entity.Movement{
			ID:        string(rune('a' + i)),
			Sequence:  int64(i + 1),
			Type:      typ,
			Quantity:  qty,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	points := ledger.BuildSeries(dec("100"), movs)
	assert.True(t, ledger.Replay(dec("100"), movs).Equal(ledger.FinalBalance(points)))
}

func TestFinalBalance_SerieVacia(t *testing.T) {
	assert.True(t, ledger.FinalBalance(nil).IsZero())
}
