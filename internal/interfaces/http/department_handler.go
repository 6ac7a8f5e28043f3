package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/strategic-ledger/internal/application/usecase"
	"github.com/jhoicas/strategic-ledger/pkg/logger"
)

// DepartmentHandler catálogo de departamentos (protegido).
type DepartmentHandler struct {
	uc  *usecase.DepartmentUseCase
	log *logger.Logger
}

// NewDepartmentHandler construye el handler.
func NewDepartmentHandler(uc *usecase.DepartmentUseCase, log *logger.Logger) *DepartmentHandler {
	return &DepartmentHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar departamentos
// @Tags         departments
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.DepartmentResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/departments [get]
func (h *DepartmentHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
