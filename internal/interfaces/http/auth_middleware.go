package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/strategic-ledger/internal/application/dto"
	"github.com/jhoicas/strategic-ledger/internal/domain/access"
	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	"github.com/jhoicas/strategic-ledger/pkg/jwt"
)

// Locals keys para la identidad del llamador en Fiber.
const (
	LocalUserID       = "user_id"
	LocalRole         = "role"
	LocalDepartmentID = "department_id"
)

// AuthMiddleware valida el Bearer Token JWT y carga UserID, Role y DepartmentID en c.Locals.
// Un token sin rol o con un rol fuera del catálogo se rechaza con 401.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "MISSING_TOKEN", "Authorization header requerido")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c, "INVALID_TOKEN", "formato: Bearer <token>")
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return unauthorized(c, "MISSING_TOKEN", "token vacío")
		}
		id, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return unauthorized(c, "INVALID_TOKEN", "token inválido o expirado")
		}
		if id.UserID == "" {
			return unauthorized(c, "INVALID_TOKEN", "token sin user_id")
		}
		if strings.TrimSpace(id.Role) == "" {
			return unauthorized(c, "MISSING_ROLE", "el token no incluye rol")
		}
		role, ok := entity.ParseRole(id.Role)
		if !ok {
			return unauthorized(c, "INVALID_ROLE", "rol desconocido")
		}
		c.Locals(LocalUserID, id.UserID)
		c.Locals(LocalRole, role)
		c.Locals(LocalDepartmentID, id.DepartmentID)
		return c.Next()
	}
}

// RequirePermission corta la petición con 403 si el rol del token no tiene el permiso.
// Debe usarse DESPUÉS de AuthMiddleware.
func RequirePermission(perm access.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == entity.RoleUnknown {
			return unauthorized(c, "UNAUTHORIZED", "identidad no encontrada en el contexto")
		}
		if !access.Allows(role, perm) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "el rol '" + role.String() + "' no tiene permiso " + perm.String(),
			})
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRole devuelve el rol del contexto; RoleUnknown si no hay identidad.
func GetRole(c *fiber.Ctx) entity.Role {
	r, _ := c.Locals(LocalRole).(entity.Role)
	return r
}

// GetPrincipal arma la identidad que reciben los casos de uso.
func GetPrincipal(c *fiber.Ctx) entity.Principal {
	dep, _ := c.Locals(LocalDepartmentID).(string)
	return entity.Principal{UserID: GetUserID(c), Role: GetRole(c), DepartmentID: dep}
}
