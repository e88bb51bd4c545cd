package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reparaciones-api/internal/application/billing"
	"github.com/jhoicas/Reparaciones-api/internal/application/dto"
	"github.com/jhoicas/Reparaciones-api/internal/application/orders"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

// OrderHandler órdenes de servicio, pagos y consulta pública.
type OrderHandler struct {
	orders   *orders.UseCase
	payments *billing.PaymentUseCase
	taxRate  decimal.Decimal
	log      *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.UseCase, payments *billing.PaymentUseCase, taxRate decimal.Decimal, log *logger.Logger) *OrderHandler {
	return &OrderHandler{orders: uc, payments: payments, taxRate: taxRate, log: log}
}

// Create godoc
// @Summary      Alta de orden de servicio
// @Description  Crea la orden en NEW con folio SR-NNNN-AAAA. Cliente y equipos pueden ser existentes (id) o nuevos.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateOrderRequest  true  "cliente, equipos, técnico opcional"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	devices := make([]orders.DeviceInput, 0, len(in.Devices))
	for _, d := range in.Devices {
		devices = append(devices, orders.DeviceInput{
			ID:             d.ID,
			Brand:          d.Brand,
			Model:          d.Model,
			Serial:         d.Serial,
			Notes:          d.Notes,
			PasswordNotes:  d.PasswordNotes,
			AccessoryNotes: d.AccessoryNotes,
		})
	}
	o, err := h.orders.CreateOrder(c.Context(), orders.CreateOrderInput{
		Customer: orders.CustomerInput{
			ID:       in.Customer.ID,
			Name:     in.Customer.Name,
			Phone:    in.Customer.Phone,
			AltPhone: in.Customer.AltPhone,
			Email:    in.Customer.Email,
		},
		Devices:    devices,
		AssignedTo: in.AssignedTo,
		Notes:      in.Notes,
		Actor:      GetActor(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OrderFromEntity(o))
}

// Get godoc
// @Summary      Detalle de orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	d, err := h.orders.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	targets, err := h.orders.AllowedTargets(c.Context(), d.Order.ID, GetActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OrderDetailResponse{
		Order:          dto.OrderFromEntity(d.Order),
		History:        dto.HistoryFromEntities(d.History),
		Estimate:       dto.EstimateFromEntity(d.Estimate, h.taxRate),
		Ledger:         ledgerResponse(d.Ledger, d.Payments),
		Movements:      dto.MovementsFromEntities(d.Movements),
		AllowedTargets: dto.StatusesToStrings(targets),
	})
}

// Public godoc
// @Summary      Estado de la orden para el cliente
// @Description  Acceso con el token impreso en el comprobante. No expone actores ni notas internas.
// @Tags         public
// @Produce      json
// @Param        token  path      string  true  "token público"
// @Success      200    {object}  dto.PublicOrderResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/public/orders/{token} [get]
func (h *OrderHandler) Public(c *fiber.Ctx) error {
	d, err := h.orders.GetByToken(c.Context(), c.Params("token"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	timeline := make([]dto.PublicTimelineEntry, 0, len(d.History))
	for _, e := range d.History {
		timeline = append(timeline, dto.PublicTimelineEntry{
			Status:      string(e.ToStatus),
			StatusLabel: e.ToStatus.Label(),
			At:          e.CreatedAt,
		})
	}
	return c.JSON(dto.PublicOrderResponse{
		Folio:       d.Order.Folio,
		Status:      string(d.Order.Status),
		StatusLabel: d.Order.Status.Label(),
		CheckinAt:   d.Order.CheckinAt,
		CheckoutAt:  d.Order.CheckoutAt,
		Timeline:    timeline,
		Estimate:    dto.PublicEstimateFromEntity(d.Estimate, h.taxRate),
		Balance:     d.Ledger.Balance,
	})
}

// Transition godoc
// @Summary      Cambio de estado
// @Description  force=true solo para gerencia y requiere motivo.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "ID de la orden"
// @Param        body  body      dto.TransitionRequest   true  "target, reason, force"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [post]
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	actor := GetActor(c)
	target := entity.OrderStatus(in.Target)
	var (
		o   *entity.ServiceOrder
		err error
	)
	if in.Force {
		o, err = h.orders.ForceStatus(c.Context(), c.Params("id"), target, actor, in.Reason)
	} else {
		o, err = h.orders.TransitionStatus(c.Context(), c.Params("id"), orders.TransitionRequest{
			Target: target,
			Actor:  actor,
			Reason: in.Reason,
		})
	}
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OrderFromEntity(o))
}

// Reopen regresa una orden DONE/CANC a REV.
func (h *OrderHandler) Reopen(c *fiber.Ctx) error {
	var in dto.ReasonRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	o, err := h.orders.Reopen(c.Context(), c.Params("id"), GetActor(c), in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OrderFromEntity(o))
}

// Cancel pasa la orden a CANC.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	var in dto.ReasonRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	o, err := h.orders.Cancel(c.Context(), c.Params("id"), GetActor(c), in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OrderFromEntity(o))
}

func (h *OrderHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	o, err := h.orders.AssignTechnician(c.Context(), c.Params("id"), in.UserID, GetActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OrderFromEntity(o))
}

// Warranty godoc
// @Summary      Orden de garantía
// @Description  Crea una orden hija de una orden entregada. La madre no puede volver a DONE mientras la hija esté abierta.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "ID de la orden madre"
// @Param        body  body      dto.WarrantyRequest  false "notas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/warranty [post]
func (h *OrderHandler) Warranty(c *fiber.Ctx) error {
	var in dto.WarrantyRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return writeError(c, h.log, err)
		}
	}
	o, err := h.orders.CreateWarrantyOrder(c.Context(), c.Params("id"), GetActor(c), in.Notes)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OrderFromEntity(o))
}

// AddPayment godoc
// @Summary      Registrar pago
// @Description  Rechaza pagos que dejen saldo negativo. Si el saldo llega a cero en READY o AUTH la orden pasa a DONE.
// @Tags         payments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "ID de la orden"
// @Param        body  body      dto.PaymentRequest  true  "amount, method"
// @Success      201   {object}  dto.PaymentResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/payments [post]
func (h *OrderHandler) AddPayment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	amount, err := money.Parse(in.Amount)
	if err != nil {
		return writeError(c, h.log, domain.Invalid("amount", "importe inválido"))
	}
	res, err := h.payments.AddPayment(c.Context(), billing.AddPaymentInput{
		OrderID:   c.Params("id"),
		DeviceID:  in.DeviceID,
		Amount:    amount,
		Method:    in.Method,
		Reference: in.Reference,
		Actor:     GetActor(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PaymentResultResponse{
		Payment:          dto.PaymentFromEntity(res.Payment),
		Ledger:           ledgerResponse(res.Ledger, nil),
		Status:           string(res.Order.Status),
		AutoClosed:       res.AutoClosed,
		AutoCloseBlocked: res.AutoCloseBlocked,
	})
}

// Ledger aprobado, pagado y saldo con la lista de pagos.
func (h *OrderHandler) Ledger(c *fiber.Ctx) error {
	ledger, payments, err := h.payments.GetLedger(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(ledgerResponse(ledger, payments))
}

func ledgerResponse(l billing.Ledger, payments []*entity.Payment) dto.LedgerResponse {
	out := dto.LedgerResponse{Approved: l.Approved, Paid: l.Paid, Balance: l.Balance}
	if len(payments) > 0 {
		out.Payments = dto.PaymentsFromEntities(payments)
	}
	return out
}
