package seed_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/strategic-ledger/internal/infrastructure/seed"
)

func TestParseDepartments_PuntoYComaConCabecera(t *testing.T) {
	in := "id;nombre\nventas;Ventas\nrrhh;Recursos Humanos\n"

	out, err := seed.ParseDepartments(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []seed.Department{
		{ID: "rrhh", Name: "Recursos Humanos"},
		{ID: "ventas", Name: "Ventas"},
	}, out)
}

func TestParseDepartments_ComaSinCabeceraYSinID(t *testing.T) {
	in := ",Logística Área Norte\nfin, Finanzas\n"

	out, err := seed.ParseDepartments(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "fin", out[0].ID)
	assert.Equal(t, "Finanzas", out[0].Name)
	assert.Equal(t, "logistica-area-norte", out[1].ID)
}

func TestParseDepartments_Latin1(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String("id;nombre\nlog;Logística\ndis;Diseño\n")
	require.NoError(t, err)

	out, err := seed.ParseDepartments(strings.NewReader(latin1))
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "Diseño", out[0].Name)
	assert.Equal(t, "Logística", out[1].Name)
}

func TestParseDepartments_Errores(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"IDRepetido", "a;Uno\na;Dos\n"},
		{"NombreVacio", "a;\n"},
		{"UnaColumna", "solo\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seed.ParseDepartments(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestDefault_CatalogoBase(t *testing.T) {
	deps := seed.Default()

	m := seed.AsMap(deps)
	assert.Len(t, m, 5)
	assert.Equal(t, "Recursos Humanos", m["rrhh"])
}

func TestWriteSQL_EscapaComillas(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, seed.WriteSQL(&buf, []seed.Department{
		{ID: "a", Name: "Atención al cliente"},
		{ID: "b", Name: "O'Brien"},
	}))

	sql := buf.String()
	assert.Contains(t, sql, "('a', 'Atención al cliente'),\n")
	assert.Contains(t, sql, "('b', 'O''Brien')\n")
	assert.True(t, strings.HasSuffix(sql, "ON CONFLICT (id) DO NOTHING;\n"))
}
