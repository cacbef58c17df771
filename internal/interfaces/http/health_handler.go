package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger almacenamiento que puede verificar su conexión.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler expone GET /health.
type HealthHandler struct {
	store   Pinger
	backend string
}

// NewHealthHandler construye el handler; backend se informa en la respuesta.
func NewHealthHandler(store Pinger, backend string) *HealthHandler {
	return &HealthHandler{store: store, backend: backend}
}

// Health godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "storage": h.backend})
	}
	return c.JSON(fiber.Map{"status": "ok", "storage": h.backend})
}
