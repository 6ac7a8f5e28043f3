// seed_departments genera el script SQL que puebla la tabla departments a partir del
// CSV exportado por RR. HH. ("id;nombre", UTF-8 o Latin-1).
//
// Uso: go run ./cmd/seed_departments [ruta/departamentos.csv]
// Sin argumento usa el catálogo base embebido.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_departments.sql
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/strategic-ledger/internal/infrastructure/seed"
)

func main() {
	deps := seed.Default()
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
			os.Exit(1)
		}
		deps, err = seed.ParseDepartments(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
			os.Exit(1)
		}
	}
	if len(deps) == 0 {
		fmt.Fprintln(os.Stderr, "El CSV no contiene departamentos")
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_departments.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := seed.WriteSQL(out, deps); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d departamentos\n", outPath, len(deps))
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
