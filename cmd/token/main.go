// token emite un JWT de desarrollo firmado con JWT_SECRET. La autenticación real vive
// en el proveedor de identidad; esta herramienta solo sirve para probar la API en local.
//
// Uso: go run ./cmd/token -user u-1 -role hr [-department rrhh] [-exp 60]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	"github.com/jhoicas/strategic-ledger/pkg/config"
	"github.com/jhoicas/strategic-ledger/pkg/jwt"
)

func main() {
	user := flag.String("user", "dev-user", "user_id del token")
	role := flag.String("role", "employee", "admin | hr | manager | employee")
	department := flag.String("department", "", "department_id opcional")
	exp := flag.Int("exp", 0, "minutos de validez (por defecto JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET no está definido")
		os.Exit(1)
	}
	r, ok := entity.ParseRole(*role)
	if !ok {
		fmt.Fprintf(os.Stderr, "Rol desconocido %q\n", *role)
		os.Exit(1)
	}
	minutes := *exp
	if minutes <= 0 {
		minutes = cfg.JWT.Expiration
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, cfg.JWT.Issuer, jwt.Identity{
		UserID:       *user,
		DepartmentID: *department,
		Role:         r.String(),
	}, minutes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Firmar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
