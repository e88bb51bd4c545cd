package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reparaciones-api/internal/application/dto"
	"github.com/jhoicas/Reparaciones-api/internal/application/estimates"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

// EstimateHandler cotizaciones y decisiones por partida.
type EstimateHandler struct {
	uc      *estimates.UseCase
	taxRate decimal.Decimal
	log     *logger.Logger
}

// NewEstimateHandler construye el handler.
func NewEstimateHandler(uc *estimates.UseCase, taxRate decimal.Decimal, log *logger.Logger) *EstimateHandler {
	return &EstimateHandler{uc: uc, taxRate: taxRate, log: log}
}

// Save godoc
// @Summary      Guardar cotización
// @Description  Reemplaza las partidas pendientes; las ya decididas se conservan.
// @Tags         estimates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "ID de la orden"
// @Param        body  body      dto.SaveEstimateRequest  true  "items, apply_tax"
// @Success      200   {object}  dto.EstimateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/estimate [put]
func (h *EstimateHandler) Save(c *fiber.Ctx) error {
	var in dto.SaveEstimateRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]estimates.ItemInput, 0, len(in.Items))
	for i, it := range in.Items {
		price, err := money.Parse(it.UnitPrice)
		if err != nil {
			return writeError(c, h.log, domain.Invalid(fmt.Sprintf("items[%d].unit_price", i), "importe inválido"))
		}
		items = append(items, estimates.ItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   price,
			SKU:         it.SKU,
		})
	}
	est, err := h.uc.SaveEstimate(c.Context(), estimates.SaveInput{
		OrderID:  c.Params("id"),
		ApplyTax: in.ApplyTax,
		Note:     in.Note,
		Items:    items,
		Actor:    GetActor(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.EstimateFromEntity(est, h.taxRate))
}

// GetByOrder cotización vigente de la orden.
func (h *EstimateHandler) GetByOrder(c *fiber.Ctx) error {
	est, err := h.uc.GetByOrder(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.EstimateFromEntity(est, h.taxRate))
}

// Decide godoc
// @Summary      Decisión sobre una partida
// @Tags         estimates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "ID de la cotización"
// @Param        item  path      string               true  "ID de la partida"
// @Param        body  body      dto.DecisionRequest  true  "ACC o REJ"
// @Success      200   {object}  dto.EstimateResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/estimates/{id}/items/{item}/decision [post]
func (h *EstimateHandler) Decide(c *fiber.Ctx) error {
	var in dto.DecisionRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	est, err := h.uc.RecordDecision(c.Context(), c.Params("id"), c.Params("item"), entity.Decision(in.Decision))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.EstimateFromEntity(est, h.taxRate))
}

// Finalize decide de una vez todas las partidas pendientes.
func (h *EstimateHandler) Finalize(c *fiber.Ctx) error {
	var in dto.FinalizeDecisionsRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	decisions := make(map[string]entity.Decision, len(in.Decisions))
	for id, d := range in.Decisions {
		decisions[id] = entity.Decision(d)
	}
	est, err := h.uc.FinalizePendingDecisions(c.Context(), c.Params("id"), decisions)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.EstimateFromEntity(est, h.taxRate))
}
