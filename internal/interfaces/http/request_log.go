package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

// RequestLog una línea por petición con id, ruta, estado y duración.
// Va después de requestid.New() para que el id exista.
func RequestLog(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		ev := log.WithRequest(id).Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.WithRequest(id).Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("took", time.Since(start)).
			Msg("http")
		return err
	}
}
