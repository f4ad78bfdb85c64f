package routes

import (
	"github.com/gofiber/fiber/v2"

	"pricewatch/controllers"
)

// Setup registers every API route plus the health check.
func Setup(app *fiber.App, h *controllers.Controller) {
	app.Get("/health", h.Health)

	RegisterBrandRoutes(app, h)
	RegisterMobileRoutes(app, h)
	RegisterPriceRoutes(app, h)
}
