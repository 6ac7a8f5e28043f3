package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/strategic-ledger/internal/application/dto"
	"github.com/jhoicas/strategic-ledger/internal/application/ledger"
	"github.com/jhoicas/strategic-ledger/internal/application/usecase"
	"github.com/jhoicas/strategic-ledger/pkg/logger"
)

// ResourceHandler maneja las peticiones HTTP de recursos (protegido).
type ResourceHandler struct {
	uc     *usecase.ResourceUseCase
	series *ledger.BalanceSeriesUseCase
	log    *logger.Logger
}

// NewResourceHandler construye el handler.
func NewResourceHandler(uc *usecase.ResourceUseCase, series *ledger.BalanceSeriesUseCase, log *logger.Logger) *ResourceHandler {
	return &ResourceHandler{uc: uc, series: series, log: log}
}

// List godoc
// @Summary      Listar recursos
// @Tags         resources
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "active | inactive | archived"
// @Param        q         query  string  false  "Búsqueda por nombre, slug o departamento"
// @Param        page      query  int     false  "Página (desde 1)"
// @Param        pageSize  query  int     false  "Tamaño de página (máx. 100)"
// @Success      200  {object}  dto.ResourceListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/resources [get]
func (h *ResourceHandler) List(c *fiber.Ctx) error {
	var q dto.ResourceListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de consulta inválidos"})
	}
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear recurso
// @Description  El slug se deriva del nombre. El saldo actual arranca igual al inicial.
// @Tags         resources
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateResourceRequest  true  "name, initialBalance, departmentId, status"
// @Success      201   {object}  dto.ResourceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/resources [post]
func (h *ResourceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateResourceRequest
	if err := c.BodyParser(&in); err != nil {
		return bodyError(c, h.log, map[string]string{"initialBalance": "saldo inicial inválido"})
	}
	out, err := h.uc.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Detalle de recurso con totales
// @Tags         resources
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del recurso"
// @Success      200  {object}  dto.ResourceDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/resources/{id} [get]
func (h *ResourceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Series godoc
// @Summary      Trayectoria de saldo
// @Description  Saldo inicial seguido del saldo tras cada movimiento, en orden cronológico.
// @Tags         resources
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del recurso"
// @Success      200  {object}  dto.BalanceSeriesResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/resources/{id}/series [get]
func (h *ResourceHandler) Series(c *fiber.Ctx) error {
	out, err := h.series.Reconstruct(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Integrity godoc
// @Summary      Verificar saldo contra historial
// @Tags         resources
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del recurso"
// @Success      200  {object}  dto.IntegrityReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/resources/{id}/integrity [get]
func (h *ResourceHandler) Integrity(c *fiber.Ctx) error {
	out, err := h.series.Verify(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
