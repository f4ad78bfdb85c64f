package controllers

import (
	"errors"
	"math"

	"github.com/gofiber/fiber/v2"

	"pricewatch/apperrors"
	"pricewatch/database"
	"pricewatch/models"
	"pricewatch/pricing"
)

const defaultChangeLimit = 10

// GetBrandAverages returns brands by average price, highest first. The
// optional limit keeps only the most expensive brands.
func (h *Controller) GetBrandAverages(c *fiber.Ctx) error {
	limit, err := queryLimit(c, 0)
	if err != nil {
		return err
	}
	return h.serveView(c, func(v *pricing.View) (any, error) {
		return orEmpty(v.TopBrandAverages(limit)), nil
	})
}

func (h *Controller) GetTrends(c *fiber.Ctx) error {
	return h.serveView(c, func(v *pricing.View) (any, error) {
		return orEmpty(v.Trends()), nil
	})
}

func (h *Controller) GetPriceChanges(c *fiber.Ctx) error {
	limit, err := queryLimit(c, defaultChangeLimit)
	if err != nil {
		return err
	}
	return h.serveView(c, func(v *pricing.View) (any, error) {
		return orEmpty(v.RecentChanges(limit)), nil
	})
}

type createPriceRequest struct {
	MobileID uint     `json:"mobile_id" validate:"required"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	Retailer string   `json:"retailer" validate:"required,max=100"`
	City     string   `json:"city" validate:"required,max=100"`
}

// CreatePrice appends an observation. Prices are never edited in place.
func (h *Controller) CreatePrice(c *fiber.Ctx) error {
	var input createPriceRequest
	if err := h.parseBody(c, &input); err != nil {
		return err
	}
	if math.IsInf(*input.Price, 0) || math.IsNaN(*input.Price) {
		return apperrors.Validation("Request validation failed").WithDetails("Price must be finite")
	}

	price := &models.MobilePrice{
		MobileID: input.MobileID,
		Price:    *input.Price,
		Retailer: input.Retailer,
		City:     input.City,
	}
	if err := h.store.AppendPrice(c.UserContext(), price); err != nil {
		if errors.Is(err, database.ErrMobileNotFound) {
			return apperrors.NotFound("Mobile not found")
		}
		return apperrors.InternalWrap(err, "Failed to record price")
	}

	h.log(c).Info("price recorded", "mobile_id", price.MobileID, "retailer", price.Retailer, "city", price.City)
	return h.created(c, price)
}
