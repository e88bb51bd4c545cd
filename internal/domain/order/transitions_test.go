package order_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
	"github.com/jhoicas/Reparaciones-api/internal/domain/order"
)

var (
	manager   = entity.NewActor("u-ger", entity.RoleManager)
	frontDesk = entity.NewActor("u-rec", entity.RoleFrontDesk)
	tech      = entity.NewActor("u-tec", entity.RoleTechnician)
	staff     = entity.NewActor("u-staff")
)

func newOrder(status entity.OrderStatus) *entity.ServiceOrder {
	return &entity.ServiceOrder{ID: "o1", Status: status}
}

func TestValidateTransition_Tabla(t *testing.T) {
	all := []entity.OrderStatus{
		entity.StatusNew, entity.StatusInReview, entity.StatusWaitingParts, entity.StatusRequiresAuth,
		entity.StatusReadyPickup, entity.StatusDelivered, entity.StatusCancelled,
	}
	for _, from := range all {
		for _, to := range all {
			err := order.ValidateTransition(newOrder(from), to, entity.NewActor("root", entity.RoleSuperuser), order.Options{}, order.Facts{})
			if order.CanReach(from, to) {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidTransition, "%s -> %s", from, to)
			}
		}
	}
	assert.Empty(t, order.Targets(entity.StatusCancelled))
}

func TestValidateTransition_TecnicoNoAsignado(t *testing.T) {
	o := newOrder(entity.StatusNew)
	o.AssignedTo = "otro"
	err := order.ValidateTransition(o, entity.StatusInReview, tech, order.Options{}, order.Facts{})
	var te *domain.InvalidTransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "NEW", te.From)
	assert.Equal(t, "REV", te.To)
}

func TestValidateTransition_TecnicoAsignado(t *testing.T) {
	o := newOrder(entity.StatusNew)
	o.AssignedTo = tech.UserID
	assert.NoError(t, order.ValidateTransition(o, entity.StatusInReview, tech, order.Options{}, order.Facts{}))

	o.Status = entity.StatusInReview
	assert.ErrorIs(t, order.ValidateTransition(o, entity.StatusRequiresAuth, tech, order.Options{}, order.Facts{}), domain.ErrInvalidTransition)
	assert.ErrorIs(t, order.ValidateTransition(o, entity.StatusCancelled, tech, order.Options{}, order.Facts{}), domain.ErrInvalidTransition)
	assert.NoError(t, order.ValidateTransition(o, entity.StatusReadyPickup, tech, order.Options{}, order.Facts{}))

	o.Status = entity.StatusReadyPickup
	assert.ErrorIs(t, order.ValidateTransition(o, entity.StatusDelivered, tech, order.Options{}, order.Facts{}), domain.ErrInvalidTransition)
}

func TestValidateTransition_TecnicoPorCapacidades(t *testing.T) {
	a := entity.NewActor("u-tec", entity.RoleTechnician)
	a.Capabilities.AssignedOrderIDs = []string{"o1"}
	assert.NoError(t, order.ValidateTransition(newOrder(entity.StatusNew), entity.StatusInReview, a, order.Options{}, order.Facts{}))
}

func TestValidateTransition_EntregaRequiereSaldoCero(t *testing.T) {
	o := newOrder(entity.StatusReadyPickup)
	err := order.ValidateTransition(o, entity.StatusDelivered, frontDesk, order.Options{}, order.Facts{Balance: money.MustParse("10.00")})
	assert.ErrorIs(t, err, domain.ErrBalance)

	err = order.ValidateTransition(o, entity.StatusDelivered, staff, order.Options{}, order.Facts{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.NoError(t, order.ValidateTransition(o, entity.StatusDelivered, frontDesk, order.Options{}, order.Facts{}))
}

func TestValidateTransition_GarantiaAbiertaBloqueaEntrega(t *testing.T) {
	o := newOrder(entity.StatusReadyPickup)
	err := order.ValidateTransition(o, entity.StatusDelivered, manager, order.Options{}, order.Facts{OpenWarrantyChildren: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// forzar no evita la condición de entrega
	err = order.ValidateTransition(newOrder(entity.StatusRequiresAuth), entity.StatusDelivered, entity.SystemActor(), order.Options{Force: true}, order.Facts{OpenWarrantyChildren: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestValidateTransition_Cancelar(t *testing.T) {
	o := newOrder(entity.StatusInReview)
	assert.ErrorIs(t, order.ValidateTransition(o, entity.StatusCancelled, frontDesk, order.Options{}, order.Facts{}), domain.ErrInvalidTransition)
	assert.NoError(t, order.ValidateTransition(o, entity.StatusCancelled, manager, order.Options{}, order.Facts{}))
	assert.NoError(t, order.ValidateTransition(o, entity.StatusCancelled, frontDesk, order.Options{Force: true}, order.Facts{}))

	// cancelación tardía
	assert.NoError(t, order.ValidateTransition(newOrder(entity.StatusDelivered), entity.StatusCancelled, manager, order.Options{}, order.Facts{}))
}

func TestValidateTransition_Reapertura(t *testing.T) {
	opts := order.Options{AllowReopen: true, Force: true}
	assert.NoError(t, order.ValidateTransition(newOrder(entity.StatusDelivered), entity.StatusInReview, manager, opts, order.Facts{}))
	assert.NoError(t, order.ValidateTransition(newOrder(entity.StatusCancelled), entity.StatusInReview, manager, opts, order.Facts{}))
	assert.Error(t, order.ValidateTransition(newOrder(entity.StatusReadyPickup), entity.StatusInReview, manager, opts, order.Facts{}))
	assert.Error(t, order.ValidateTransition(newOrder(entity.StatusDelivered), entity.StatusReadyPickup, manager, opts, order.Facts{}))
	assert.Error(t, order.ValidateTransition(newOrder(entity.StatusDelivered), entity.StatusInReview, tech, order.Options{AllowReopen: true}, order.Facts{}))
}

func TestValidateTransition_MismoEstadoODesconocido(t *testing.T) {
	assert.Error(t, order.ValidateTransition(newOrder(entity.StatusNew), entity.StatusNew, manager, order.Options{}, order.Facts{}))
	assert.Error(t, order.ValidateTransition(newOrder(entity.StatusNew), entity.OrderStatus("XYZ"), manager, order.Options{Force: true}, order.Facts{}))
}

func TestAllowedTargets(t *testing.T) {
	o := newOrder(entity.StatusInReview)
	o.AssignedTo = tech.UserID
	got := order.AllowedTargets(o, tech, order.Facts{})
	assert.ElementsMatch(t, []entity.OrderStatus{entity.StatusWaitingParts, entity.StatusReadyPickup}, got)

	got = order.AllowedTargets(o, manager, order.Facts{})
	assert.Len(t, got, 4)
}
