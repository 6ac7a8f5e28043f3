package entity

import "strings"

// Role es el rol efectivo de quien invoca al ledger. El conjunto es cerrado:
// cualquier valor fuera de las constantes se trata como RoleUnknown.
type Role uint8

// Roles válidos. RoleUnknown representa un llamador no autenticado.
const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleHR
	RoleManager
	RoleEmployee
)

// ParseRole convierte el claim de rol del token ("admin", "hr", "manager", "employee").
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "hr":
		return RoleHR, true
	case "manager":
		return RoleManager, true
	case "employee":
		return RoleEmployee, true
	}
	return RoleUnknown, false
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleHR:
		return "hr"
	case RoleManager:
		return "manager"
	case RoleEmployee:
		return "employee"
	}
	return "unknown"
}

// Principal identifica al usuario autenticado que ejecuta una operación.
type Principal struct {
	UserID       string
	Role         Role
	DepartmentID string
}
