package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/strategic-ledger/internal/application/dto"
	"github.com/jhoicas/strategic-ledger/internal/application/ledger"
	"github.com/jhoicas/strategic-ledger/internal/application/usecase"
	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	rules "github.com/jhoicas/strategic-ledger/internal/domain/ledger"
	"github.com/jhoicas/strategic-ledger/pkg/logger"
)

// Cabeceras de idempotencia de POST /api/movements.
const (
	HeaderIdempotencyKey   = "Idempotency-Key"
	HeaderIdempotentReplay = "Idempotent-Replay"
)

// MovementHandler maneja el registro y la consulta de movimientos (protegido).
type MovementHandler struct {
	record *ledger.RecordMovementUseCase
	query  *usecase.MovementQueryUseCase
	log    *logger.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(record *ledger.RecordMovementUseCase, query *usecase.MovementQueryUseCase, log *logger.Logger) *MovementHandler {
	return &MovementHandler{record: record, query: query, log: log}
}

// Create godoc
// @Summary      Registrar movimiento
// @Description  Inserta el movimiento y actualiza el saldo del recurso en una sola transacción.
// @Description  Con Idempotency-Key, un reintento devuelve el movimiento original (200, Idempotent-Replay: true).
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                     false  "Clave de deduplicación (1-128 caracteres)"
// @Param        body             body    dto.RecordMovementRequest  true   "resourceId, movementType (ENTRY|EXIT|ADJUSTMENT), quantity"
// @Success      201  {object}  dto.RecordMovementResponse
// @Success      200  {object}  dto.RecordMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return bodyError(c, h.log, map[string]string{"quantity": rules.MsgInvalidQuantity})
	}
	res, err := h.record.RecordMovement(c.UserContext(), GetPrincipal(c), ledger.MovementInput{
		ResourceID:      in.ResourceID,
		Type:            entity.MovementType(in.MovementType),
		Quantity:        in.Quantity,
		Notes:           in.Notes,
		ReferencePeriod: in.ReferencePeriod,
		IdempotencyKey:  strings.TrimSpace(c.Get(HeaderIdempotencyKey)),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.RecordMovementResponse{
		Resource: dto.FromResource(res.Resource),
		Movement: dto.FromMovement(res.Movement),
	}
	if res.Replayed {
		c.Set(HeaderIdempotentReplay, "true")
		return c.Status(fiber.StatusOK).JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar movimientos de un recurso
// @Description  Más reciente primero.
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        resourceId  query  string  true   "ID del recurso"
// @Param        page        query  int     false  "Página (desde 1)"
// @Param        pageSize    query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de consulta inválidos"})
	}
	out, err := h.query.List(c.UserContext(), GetPrincipal(c), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
