package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/folio"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

// CustomerInput cliente existente (ID) o datos para darlo de alta.
// La deduplicación de clientes es responsabilidad del caller.
type CustomerInput struct {
	ID       string
	Name     string
	Phone    string
	AltPhone string
	Email    string
}

// DeviceInput equipo existente (ID) o datos para darlo de alta.
type DeviceInput struct {
	ID             string
	Brand          string
	Model          string
	Serial         string
	Notes          string
	PasswordNotes  string
	AccessoryNotes string
}

// CreateOrderInput alta de orden en recepción.
type CreateOrderInput struct {
	Customer   CustomerInput
	Devices    []DeviceInput
	AssignedTo string
	Notes      string
	Actor      entity.Actor
}

// CreateOrder valida el contacto, da de alta cliente y equipos nuevos y crea la
// orden en NEW con folio autogenerado bajo reintento acotado.
func (uc *UseCase) CreateOrder(ctx context.Context, in CreateOrderInput) (*entity.ServiceOrder, error) {
	if len(in.Devices) == 0 {
		return nil, domain.Invalid("devices", "se requiere al menos un equipo")
	}
	if in.AssignedTo != "" && !in.Actor.Capabilities.CanAssign {
		return nil, domain.ErrForbidden
	}

	now := uc.now()
	var customer *entity.Customer
	if in.Customer.ID == "" {
		customer = &entity.Customer{
			ID:        uuid.New().String(),
			Name:      strings.TrimSpace(in.Customer.Name),
			Phone:     strings.TrimSpace(in.Customer.Phone),
			AltPhone:  strings.TrimSpace(in.Customer.AltPhone),
			Email:     strings.ToLower(strings.TrimSpace(in.Customer.Email)),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if customer.Name == "" {
			return nil, domain.Invalid("customer.name", "requerido")
		}
		if !customer.HasContact() {
			return nil, domain.Invalid("customer", "se requiere teléfono o email")
		}
	} else {
		existing, err := uc.store.Customers().GetByID(ctx, in.Customer.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, domain.Invalid("customer.id", "cliente inexistente")
		}
		if !existing.HasContact() {
			return nil, domain.Invalid("customer", "se requiere teléfono o email")
		}
	}
	customerID := in.Customer.ID
	if customer != nil {
		customerID = customer.ID
	}

	var newDevices []*entity.Device
	deviceIDs := make([]string, 0, len(in.Devices))
	for _, d := range in.Devices {
		if d.ID != "" {
			dev, err := uc.store.Devices().GetByID(ctx, d.ID)
			if err != nil {
				return nil, err
			}
			if dev == nil || dev.CustomerID != customerID {
				return nil, domain.Invalid("devices", "equipo inexistente o de otro cliente")
			}
			deviceIDs = append(deviceIDs, dev.ID)
			continue
		}
		dev := &entity.Device{
			ID:             uuid.New().String(),
			CustomerID:     customerID,
			Brand:          strings.TrimSpace(d.Brand),
			Model:          strings.TrimSpace(d.Model),
			Serial:         strings.TrimSpace(d.Serial),
			Notes:          strings.TrimSpace(d.Notes),
			PasswordNotes:  strings.TrimSpace(d.PasswordNotes),
			AccessoryNotes: strings.TrimSpace(d.AccessoryNotes),
			CreatedAt:      now,
		}
		newDevices = append(newDevices, dev)
		deviceIDs = append(deviceIDs, dev.ID)
	}

	o := &entity.ServiceOrder{
		ID:         uuid.New().String(),
		Token:      uuid.New().String(),
		CustomerID: customerID,
		DeviceIDs:  deviceIDs,
		Status:     entity.StatusNew,
		CheckinAt:  now,
		AssignedTo: in.AssignedTo,
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := uc.insertWithFolio(ctx, o, in.Actor, func(ctx context.Context, store repository.Store) error {
		if customer != nil {
			if err := store.Customers().Create(ctx, customer); err != nil {
				return err
			}
		}
		for _, dev := range newDevices {
			if err := store.Devices().Create(ctx, dev); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// insertWithFolio persiste la orden en NEW con su primera fila de historial.
// prepare corre dentro de la misma transacción antes del INSERT de la orden.
// El folio se asigna aquí, al guardar, para que cada reintento lo regenere.
func (uc *UseCase) insertWithFolio(
	ctx context.Context,
	o *entity.ServiceOrder,
	actor entity.Actor,
	prepare func(ctx context.Context, store repository.Store) error,
) error {
	year := o.CheckinAt.In(uc.cfg.Location).Year()
	rec := events.NewRecorder()

	assigned, err := AssignFolio(ctx, uc.cfg.FolioAttempts, func(ctx context.Context, attempt int) (string, error) {
		rec.Reset()
		o.Folio = ""
		var candidate string
		err := uc.txRunner.RunWorkshop(ctx, func(store repository.Store) error {
			existing, err := store.Orders().ListFoliosBySuffix(ctx, folio.Suffix(year))
			if err != nil {
				return err
			}
			candidate = folio.Next(uc.cfg.FolioPrefix, existing, year)
			o.Folio = candidate
			if prepare != nil {
				if err := prepare(ctx, store); err != nil {
					return err
				}
			}
			if err := store.Orders().Create(ctx, o); err != nil {
				return err
			}
			if err := store.History().Append(ctx, &entity.StatusHistory{
				ID:        uuid.New().String(),
				OrderID:   o.ID,
				ToStatus:  entity.StatusNew,
				ActorID:   actor.UserID,
				ActorRole: actor.RoleLabel(),
				CreatedAt: o.CreatedAt,
			}); err != nil {
				return err
			}
			rec.Record(events.OrderStatusChanged{
				OrderID:   o.ID,
				Folio:     o.Folio,
				Token:     o.Token,
				To:        entity.StatusNew,
				ActorID:   actor.UserID,
				ActorRole: actor.RoleLabel(),
				At:        o.CreatedAt,
			})
			return nil
		})
		if err != nil && errors.Is(err, domain.ErrFolioTaken) {
			uc.log.Warn().Str("folio", candidate).Int("attempt", attempt).Msg("folio en conflicto, se regenera")
		}
		return candidate, err
	})
	if err != nil {
		o.Folio = ""
		var conflict *domain.IdentityConflictError
		if errors.As(err, &conflict) {
			uc.log.Error().Err(err).Int("attempts", conflict.Attempts).Str("last_folio", conflict.Folio).
				Msg("folios agotados: el generador por escaneo está bajo contención inesperada")
		}
		return err
	}
	o.Folio = assigned
	uc.dispatcher.Dispatch(ctx, rec)
	return nil
}
