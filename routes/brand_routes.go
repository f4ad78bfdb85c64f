package routes

import (
	"github.com/gofiber/fiber/v2"

	"pricewatch/controllers"
)

func RegisterBrandRoutes(app *fiber.App, h *controllers.Controller) {
	api := app.Group("/api")
	api.Get("/brands", h.GetBrands)
	api.Post("/brands", h.CreateBrand)
}
