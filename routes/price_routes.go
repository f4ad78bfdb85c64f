package routes

import (
	"github.com/gofiber/fiber/v2"

	"pricewatch/controllers"
)

func RegisterPriceRoutes(app *fiber.App, h *controllers.Controller) {
	api := app.Group("/api")
	api.Get("/prices/brand-averages", h.GetBrandAverages)
	api.Get("/prices/trends", h.GetTrends)
	api.Get("/prices/changes", h.GetPriceChanges)
	api.Post("/prices", h.CreatePrice)

	api.Get("/dashboard", h.GetDashboard)
}
