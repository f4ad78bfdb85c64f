package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pricewatch/apperrors"
	"pricewatch/database"
	"pricewatch/pricing"
)

// GetBrands returns the brand selector list ordered by name.
func (h *Controller) GetBrands(c *fiber.Ctx) error {
	return h.serveView(c, func(v *pricing.View) (any, error) {
		return orEmpty(v.Brands()), nil
	})
}

type createBrandRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *Controller) CreateBrand(c *fiber.Ctx) error {
	var input createBrandRequest
	if err := h.parseBody(c, &input); err != nil {
		return err
	}

	brand, err := h.store.CreateBrand(c.UserContext(), input.Name)
	if err != nil {
		if errors.Is(err, database.ErrBrandExists) {
			return apperrors.Conflict("Brand already exists")
		}
		return apperrors.InternalWrap(err, "Failed to create brand")
	}

	h.log(c).Info("brand created", "brand_id", brand.ID, "name", brand.Name)
	return h.created(c, brand)
}
