package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pricewatch/logger"
)

// RequestID reuses the caller's X-Request-ID or assigns a new one, echoes it
// on the response and stores it in the user context for logging.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.Locals("request_id", id)
		c.SetUserContext(logger.WithRequestID(c.UserContext(), id))
		return c.Next()
	}
}
