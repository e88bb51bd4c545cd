package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reparaciones-api/internal/application/billing"
	"github.com/jhoicas/Reparaciones-api/internal/application/dto"
	"github.com/jhoicas/Reparaciones-api/internal/application/estimates"
	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/application/inventory"
	"github.com/jhoicas/Reparaciones-api/internal/application/orders"
	"github.com/jhoicas/Reparaciones-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Reparaciones-api/internal/interfaces/http"
)

const (
	managerID = "00000000-0000-0000-0000-0000000000aa"
	deskID    = "00000000-0000-0000-0000-0000000000bb"
	techID    = "00000000-0000-0000-0000-0000000000cc"
)

type testServer struct {
	app *fiber.App
	pub *events.MemoryPublisher
	t   *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := memory.New()
	store := db.Store()
	pub := &events.MemoryPublisher{}
	dispatcher := events.NewDispatcher(pub, nil)
	rate := decimal.RequireFromString("0.16")

	reconciler := billing.NewReconciler(rate)
	ordersUC := orders.NewUseCase(db, store, reconciler, inventory.NewConsumer(), dispatcher, nil, orders.Config{})
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Orders:    ordersUC,
		Payments:  billing.NewPaymentUseCase(db, store, reconciler, ordersUC, dispatcher),
		Estimates: estimates.NewUseCase(db, store, dispatcher, nil, rate),
		Stock:     inventory.NewStockUseCase(db, store, dispatcher),
		LowStock:  inventory.NewLowStockUseCase(store, dispatcher),
		TaxRate:   rate,
		JWTSecret: testJWTSecret,
	})
	return &testServer{app: app, pub: pub, t: t}
}

// do envía body como JSON y decodifica la respuesta en out (si no es nil).
func (s *testServer) do(method, path, auth string, body any, out any) int {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) createOrder(auth string) dto.OrderResponse {
	s.t.Helper()
	var o dto.OrderResponse
	code := s.do(http.MethodPost, "/api/orders", auth, dto.CreateOrderRequest{
		Customer: dto.CustomerRequest{Name: "Ana López", Phone: "5512345678"},
		Devices:  []dto.DeviceRequest{{Brand: "Lenovo", Model: "T480"}},
	}, &o)
	require.Equal(s.t, http.StatusCreated, code)
	return o
}

func TestRouter_FlujoCompleto(t *testing.T) {
	s := newTestServer(t)
	manager := tokenFor(t, managerID, "gerencia")
	desk := tokenFor(t, deskID, "recepcion")

	var item dto.InventoryItemResponse
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/inventory/items", desk,
		dto.CreateItemRequest{SKU: "PANT-01", Name: "Pantalla 14", Quantity: 5, MinQuantity: 1}, &item))
	assert.Equal(t, 5, item.Quantity)

	o := s.createOrder(desk)
	assert.Regexp(t, `^SR-0001-\d{4}$`, o.Folio)
	assert.Equal(t, "NEW", o.Status)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/orders/"+o.ID+"/status", manager,
		dto.TransitionRequest{Target: "REV"}, nil))

	var est dto.EstimateResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/orders/"+o.ID+"/estimate", manager, dto.SaveEstimateRequest{
		ApplyTax: true,
		Items: []dto.EstimateItemRequest{
			{Description: "Pantalla", Quantity: 1, UnitPrice: "100.00", SKU: "PANT-01"},
			{Description: "Mano de obra", Quantity: 1, UnitPrice: "50.00"},
		},
	}, &est))
	require.Len(t, est.Items, 2)
	assert.Equal(t, "174.00", est.Quote.Total.String())
	assert.Equal(t, "PENDING", est.Status)

	decisions := map[string]string{est.Items[0].ID: "ACC", est.Items[1].ID: "ACC"}
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/estimates/"+est.ID+"/decisions", desk,
		dto.FinalizeDecisionsRequest{Decisions: decisions}, &est))
	assert.Equal(t, "CLOSED_ACCEPTED", est.Status)
	assert.Equal(t, "174.00", est.Accepted.Total.String())

	// ya decidida
	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/estimates/"+est.ID+"/items/"+est.Items[0].ID+"/decision", desk,
		dto.DecisionRequest{Decision: "REJ"}, &errBody))
	assert.Equal(t, "DECISION_FINAL", errBody.Code)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/orders/"+o.ID+"/status", manager,
		dto.TransitionRequest{Target: "READY"}, nil))
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/inventory/items/PANT-01", desk, nil, &item))
	assert.Equal(t, 4, item.Quantity)

	// pago excedente
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodPost, "/api/orders/"+o.ID+"/payments", desk,
		dto.PaymentRequest{Amount: "200.00", Method: "efectivo"}, &errBody))
	assert.Equal(t, "BALANCE_VIOLATION", errBody.Code)

	var paid dto.PaymentResultResponse
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/orders/"+o.ID+"/payments", desk,
		dto.PaymentRequest{Amount: "174.00", Method: "efectivo"}, &paid))
	assert.True(t, paid.AutoClosed)
	assert.Equal(t, "DONE", paid.Status)
	assert.True(t, paid.Ledger.Balance.IsZero())

	var public dto.PublicOrderResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/public/orders/"+o.Token, "", nil, &public))
	assert.Equal(t, o.Folio, public.Folio)
	assert.Equal(t, "DONE", public.Status)
	require.NotNil(t, public.Estimate)
	assert.Empty(t, public.Estimate.Items[0].InventoryItemID)
	assert.Len(t, public.Timeline, 4)

	assert.NotEmpty(t, s.pub.Named(events.NameOrderStatusChanged))
}

func TestRouter_TecnicoNoCreaOrdenes(t *testing.T) {
	s := newTestServer(t)
	var errBody dto.ErrorResponse
	code := s.do(http.MethodPost, "/api/orders", tokenFor(t, techID, "tecnico"), dto.CreateOrderRequest{
		Customer: dto.CustomerRequest{Name: "X", Phone: "1"},
		Devices:  []dto.DeviceRequest{{Brand: "HP"}},
	}, &errBody)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", errBody.Code)
}

func TestRouter_TransicionInvalida(t *testing.T) {
	s := newTestServer(t)
	o := s.createOrder(tokenFor(t, deskID, "recepcion"))

	var errBody dto.ErrorResponse
	code := s.do(http.MethodPost, "/api/orders/"+o.ID+"/status", tokenFor(t, managerID, "gerencia"),
		dto.TransitionRequest{Target: "DONE"}, &errBody)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_TRANSITION", errBody.Code)
}

func TestRouter_ValidacionDeCuerpo(t *testing.T) {
	s := newTestServer(t)
	var errBody dto.ErrorResponse
	code := s.do(http.MethodPost, "/api/orders", tokenFor(t, deskID, "recepcion"), dto.CreateOrderRequest{
		Customer: dto.CustomerRequest{Name: "Sin equipos", Phone: "1"},
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION", errBody.Code)
	assert.Contains(t, errBody.Message, "devices")
	assert.Equal(t, "devices", errBody.Field)
}

func TestRouter_OrdenInexistente(t *testing.T) {
	s := newTestServer(t)
	var errBody dto.ErrorResponse
	code := s.do(http.MethodGet, "/api/orders/no-existe", tokenFor(t, managerID, "gerencia"), nil, &errBody)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", errBody.Code)
}

func TestRouter_StockInsuficiente(t *testing.T) {
	s := newTestServer(t)
	desk := tokenFor(t, deskID, "recepcion")
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/inventory/items", desk,
		dto.CreateItemRequest{SKU: "BAT-9", Name: "Batería", Quantity: 1, MinQuantity: 1}, nil))

	var errBody dto.ErrorResponse
	code := s.do(http.MethodPost, "/api/inventory/consume", tokenFor(t, techID, "tecnico"),
		dto.StockMovementRequest{SKU: "BAT-9", Quantity: 2}, &errBody)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)

	var low []dto.InventoryItemResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/inventory/low-stock", desk, nil, &low))
	require.Len(t, low, 1)
	assert.Equal(t, "BAT-9", low[0].SKU)
}

func TestRouter_CotizacionTecnicoNoAsignado(t *testing.T) {
	s := newTestServer(t)
	desk := tokenFor(t, deskID, "recepcion")
	tech := tokenFor(t, techID, "tecnico")
	o := s.createOrder(desk)
	body := dto.SaveEstimateRequest{Items: []dto.EstimateItemRequest{{Description: "Diagnóstico", Quantity: 1, UnitPrice: "80.00"}}}

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, "/api/orders/"+o.ID+"/estimate", tech, body, &errBody))
	assert.Equal(t, "FORBIDDEN", errBody.Code)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/orders/"+o.ID+"/assign", desk,
		dto.AssignRequest{UserID: techID}, nil))
	var est dto.EstimateResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/orders/"+o.ID+"/estimate", tech, body, &est))
	assert.Len(t, est.Items, 1)
}
