package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reparaciones-api/internal/application/dto"
	"github.com/jhoicas/Reparaciones-api/internal/application/inventory"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

// InventoryHandler maneja las peticiones HTTP de existencias (protegido).
type InventoryHandler struct {
	stock    *inventory.StockUseCase
	lowStock *inventory.LowStockUseCase
	log      *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(stock *inventory.StockUseCase, lowStock *inventory.LowStockUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{stock: stock, lowStock: lowStock, log: log}
}

// CreateItem godoc
// @Summary      Alta de artículo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateItemRequest  true  "sku, name, quantity, min_quantity"
// @Success      201   {object}  dto.InventoryItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/items [post]
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	item, err := h.stock.CreateItem(c.Context(), inventory.NewItemInput{
		SKU:         in.SKU,
		Name:        in.Name,
		Quantity:    in.Quantity,
		MinQuantity: in.MinQuantity,
		Location:    in.Location,
		AuthorID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ItemFromEntity(item))
}

// Receive godoc
// @Summary      Entrada de mercancía
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.StockMovementRequest  true  "sku, quantity, reason"
// @Success      200   {object}  dto.InventoryItemResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/receive [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	return h.move(c, h.stock.ReceiveStock)
}

// Consume godoc
// @Summary      Salida manual
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.StockMovementRequest  true  "sku, quantity, reason"
// @Success      200   {object}  dto.InventoryItemResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/consume [post]
func (h *InventoryHandler) Consume(c *fiber.Ctx) error {
	return h.move(c, h.stock.ConsumeStock)
}

type stockMove func(ctx context.Context, in inventory.MovementInput) (*entity.InventoryItem, error)

func (h *InventoryHandler) move(c *fiber.Ctx, fn stockMove) error {
	var in dto.StockMovementRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	item, err := fn(c.Context(), inventory.MovementInput{
		SKU:      in.SKU,
		Quantity: in.Quantity,
		Reason:   in.Reason,
		AuthorID: GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ItemFromEntity(item))
}

// GetItem artículo por SKU.
func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	item, err := h.stock.GetBySKU(c.Context(), c.Params("sku"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ItemFromEntity(item))
}

// Movements libro del artículo, paginado.
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, h.log, domain.Invalid("limit", "paginación inválida"))
	}
	page.DefaultPage()
	list, err := h.stock.Movements(c.Context(), c.Params("sku"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MovementsFromEntities(list))
}

// LowStock godoc
// @Summary      Artículos en o por debajo del mínimo
// @Description  Vista previa del barrido periódico; no emite eventos.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.InventoryItemResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.lowStock.List(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ItemsFromEntities(items))
}
