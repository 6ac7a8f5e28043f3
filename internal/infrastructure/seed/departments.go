// Package seed lee el catálogo de departamentos (CSV "id;nombre") y lo convierte en
// semillas para cmd/migrate o en el script SQL de la migración de PostgreSQL.
package seed

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jhoicas/strategic-ledger/pkg/slug"
)

//go:embed departments.csv
var defaultCSV []byte

// Department fila del catálogo.
type Department struct {
	ID   string
	Name string
}

// Default devuelve el catálogo base embebido en el binario.
func Default() []Department {
	out, err := ParseDepartments(bytes.NewReader(defaultCSV))
	if err != nil {
		panic("seed: catálogo embebido inválido: " + err.Error())
	}
	return out
}

// ParseDepartments lee filas "id;nombre" (también acepta coma). La cabecera es opcional.
// Un id vacío se deriva del nombre. Las filas se devuelven ordenadas por id y un id
// repetido es un error.
func ParseDepartments(r io.Reader) ([]Department, error) {
	utf8r, err := newUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detectar codificación: %w", err)
	}
	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("leer csv: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = detectComma(raw)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leer csv: %w", err)
	}

	seen := make(map[string]int)
	var out []Department
	for i, row := range rows {
		lineNum := i + 1
		if i == 0 && isHeader(row) {
			continue
		}
		if len(row) < 2 {
			if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
				continue
			}
			return nil, fmt.Errorf("fila %d: se esperaban 2 columnas (id;nombre)", lineNum)
		}
		name := strings.TrimSpace(row[1])
		if name == "" {
			return nil, fmt.Errorf("fila %d: nombre vacío", lineNum)
		}
		id := strings.TrimSpace(row[0])
		if id == "" {
			id = slug.Make(name)
		}
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("fila %d: id %q repetido (fila %d)", lineNum, id, prev)
		}
		seen[id] = lineNum
		out = append(out, Department{ID: id, Name: name})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AsMap formato que recibe usecase.DepartmentUseCase.Seed.
func AsMap(deps []Department) map[string]string {
	m := make(map[string]string, len(deps))
	for _, d := range deps {
		m[d.ID] = d.Name
	}
	return m
}

// WriteSQL escribe el INSERT idempotente de la migración de PostgreSQL.
func WriteSQL(w io.Writer, deps []Department) error {
	var b strings.Builder
	b.WriteString("-- Departamentos base. Regenerar con cmd/seed_departments a partir del CSV de RR. HH.\n")
	b.WriteString("INSERT INTO departments (id, name) VALUES\n")
	for i, d := range deps {
		fmt.Fprintf(&b, "    ('%s', '%s')", escapeSQL(d.ID), escapeSQL(d.Name))
		if i < len(deps)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString("\n")
		}
	}
	b.WriteString("ON CONFLICT (id) DO NOTHING;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func detectComma(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	if bytes.Count(line, []byte{';'}) >= bytes.Count(line, []byte{','}) && bytes.Contains(line, []byte{';'}) {
		return ';'
	}
	return ','
}

func isHeader(row []string) bool {
	if len(row) < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	second := strings.ToLower(strings.TrimSpace(row[1]))
	return first == "id" && (second == "nombre" || second == "name")
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
