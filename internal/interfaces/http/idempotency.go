package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/idempotency"
	"github.com/google/uuid"
)

const (
	// HeaderIdempotencyKey clave que envía el cliente (UUID).
	HeaderIdempotencyKey = "X-Idempotency-Key"
	// headerIdempotencyScope clave interna "<user_id>|<clave>" que usa la caché.
	headerIdempotencyScope = "X-Idempotency-Scope"

	// IdempotencyLifetime tiempo que se recuerda la respuesta de una clave.
	IdempotencyLifetime = 30 * time.Minute
)

// Idempotency devuelve la cadena de middlewares para rutas idempotentes. La
// respuesta guardada se indexa por usuario y clave: dos usuarios con la misma
// clave no comparten respuesta. Requiere AuthMiddleware antes.
func Idempotency() []fiber.Handler {
	return []fiber.Handler{
		scopeIdempotencyKey,
		idempotency.New(idempotency.Config{
			Lifetime:          IdempotencyLifetime,
			KeyHeader:         headerIdempotencyScope,
			KeyHeaderValidate: validateScopedKey,
		}),
	}
}

// scopeIdempotencyKey reescribe siempre la cabecera interna; el cliente no puede fijarla.
func scopeIdempotencyKey(c *fiber.Ctx) error {
	c.Request().Header.Del(headerIdempotencyScope)
	if key := c.Get(HeaderIdempotencyKey); key != "" {
		c.Request().Header.Set(headerIdempotencyScope, GetUserID(c)+"|"+key)
	}
	return c.Next()
}

func validateScopedKey(scoped string) error {
	i := strings.LastIndexByte(scoped, '|')
	key := scoped[i+1:]
	if i <= 0 || len(key) != 36 || uuid.Validate(key) != nil {
		return fiber.NewError(fiber.StatusBadRequest, HeaderIdempotencyKey+" debe ser un UUID")
	}
	return nil
}
