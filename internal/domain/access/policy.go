// Package access decide qué puede hacer cada rol sobre el ledger.
// Es una función pura rol → bool: sin estado ni efectos laterales.
package access

import "github.com/jhoicas/strategic-ledger/internal/domain/entity"

// Permission acción protegida del ledger.
type Permission uint8

// Permisos del ledger.
const (
	PermRead Permission = iota + 1
	PermCreateResource
	PermCreateMovement
)

func (p Permission) String() string {
	switch p {
	case PermRead:
		return "read"
	case PermCreateResource:
		return "create_resource"
	case PermCreateMovement:
		return "create_movement"
	}
	return "unknown"
}

// CanCreateResource solo hr y admin crean recursos.
func CanCreateResource(role entity.Role) bool {
	switch role {
	case entity.RoleAdmin, entity.RoleHR:
		return true
	case entity.RoleManager, entity.RoleEmployee, entity.RoleUnknown:
		return false
	}
	return false
}

// CanCreateMovement cualquier rol operativo autenticado registra movimientos.
func CanCreateMovement(role entity.Role) bool {
	switch role {
	case entity.RoleAdmin, entity.RoleHR, entity.RoleManager, entity.RoleEmployee:
		return true
	case entity.RoleUnknown:
		return false
	}
	return false
}

// CanRead cualquier rol conocido puede leer.
func CanRead(role entity.Role) bool {
	switch role {
	case entity.RoleAdmin, entity.RoleHR, entity.RoleManager, entity.RoleEmployee:
		return true
	case entity.RoleUnknown:
		return false
	}
	return false
}

// Allows evalúa un permiso para un rol. Un permiso desconocido se deniega.
func Allows(role entity.Role, p Permission) bool {
	switch p {
	case PermRead:
		return CanRead(role)
	case PermCreateResource:
		return CanCreateResource(role)
	case PermCreateMovement:
		return CanCreateMovement(role)
	}
	return false
}
