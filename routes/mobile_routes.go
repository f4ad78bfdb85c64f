package routes

import (
	"github.com/gofiber/fiber/v2"

	"pricewatch/controllers"
)

func RegisterMobileRoutes(app *fiber.App, h *controllers.Controller) {
	api := app.Group("/api")
	api.Get("/mobiles", h.GetMobiles)
	api.Get("/mobiles/:id/offers", h.GetMobileOffers)
	api.Post("/mobiles", h.CreateMobile)
}
