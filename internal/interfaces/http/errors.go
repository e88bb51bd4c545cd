package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reparaciones-api/internal/application/dto"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Reportar el nombre JSON del campo, no el del struct.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodifica el JSON y aplica las reglas validate de la DTO.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.Invalid("body", "cuerpo inválido")
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			field := f.Namespace()
			if i := strings.Index(field, "."); i >= 0 {
				field = field[i+1:]
			}
			return domain.Invalid(field, "no cumple la regla "+f.Tag())
		}
		return domain.Invalid("body", err.Error())
	}
	return nil
}

// writeError traduce errores de dominio a {code, message} con su status HTTP.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, code, msg := classify(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error en petición")
	}
	resp := dto.ErrorResponse{Code: code, Message: msg}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}
	return c.Status(status).JSON(resp)
}

func classify(err error) (int, string, string) {
	var (
		ve *domain.ValidationError
		te *domain.InvalidTransitionError
		se *domain.InsufficientStockError
		be *domain.BalanceViolationError
		de *domain.DecisionFinalError
	)
	switch {
	case errors.Is(err, domain.ErrIdentityConflict):
		return fiber.StatusServiceUnavailable, "IDENTITY_CONFLICT", "no se pudo asignar folio, intente de nuevo"
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, "VALIDATION", ve.Error()
	case errors.As(err, &te):
		return fiber.StatusConflict, "INVALID_TRANSITION", te.Error()
	case errors.As(err, &se):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK", se.Error()
	case errors.As(err, &be):
		return fiber.StatusUnprocessableEntity, "BALANCE_VIOLATION", be.Error()
	case errors.As(err, &de):
		return fiber.StatusConflict, "DECISION_FINAL", de.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION", "datos inválidos"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE", "el recurso ya existe"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT", err.Error()
	default:
		return fiber.StatusInternalServerError, "INTERNAL", "error interno"
	}
}
