package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pricewatch/apperrors"
	"pricewatch/database"
	"pricewatch/models"
	"pricewatch/pricing"
)

// GetMobiles lists the catalog with lowest prices, narrowed by the search,
// brand and price_range query parameters.
func (h *Controller) GetMobiles(c *fiber.Ctx) error {
	var f pricing.Filters
	if err := c.QueryParser(&f); err != nil {
		return apperrors.BadRequestWrap(err, "Invalid query parameters")
	}
	return h.serveView(c, func(v *pricing.View) (any, error) {
		return orEmpty(v.Listings(f)), nil
	})
}

type offersResponse struct {
	Mobile      pricing.Model   `json:"mobile"`
	Brand       string          `json:"brand"`
	LowestPrice pricing.Price   `json:"lowestPrice"`
	Offers      []pricing.Offer `json:"offers"`
}

// GetMobileOffers compares the current price of one mobile across retailers.
func (h *Controller) GetMobileOffers(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperrors.BadRequest("Invalid mobile ID")
	}
	return h.serveView(c, func(v *pricing.View) (any, error) {
		offers, ok := v.Offers(uint(id))
		if !ok {
			return nil, apperrors.NotFound("Mobile not found")
		}
		m, _ := v.Model(uint(id))
		var brand string
		for _, b := range v.Brands() {
			if b.ID == m.BrandID {
				brand = b.Name
				break
			}
		}
		return offersResponse{
			Mobile:      m,
			Brand:       brand,
			LowestPrice: v.LowestPrice(m.ID),
			Offers:      orEmpty(offers),
		}, nil
	})
}

type createMobileRequest struct {
	BrandID         uint   `json:"brand_id" validate:"required"`
	Model           string `json:"model" validate:"required,max=150"`
	DisplaySize     string `json:"display_size" validate:"max=50"`
	RAM             string `json:"ram" validate:"max=50"`
	Storage         string `json:"storage" validate:"max=50"`
	Camera          string `json:"camera" validate:"max=100"`
	Battery         string `json:"battery" validate:"max=50"`
	Processor       string `json:"processor" validate:"max=100"`
	OperatingSystem string `json:"operating_system" validate:"max=50"`
	ImageURL        string `json:"image_url" validate:"omitempty,url"`
}

func (h *Controller) CreateMobile(c *fiber.Ctx) error {
	var input createMobileRequest
	if err := h.parseBody(c, &input); err != nil {
		return err
	}

	mobile := &models.Mobile{
		BrandID: input.BrandID,
		Model:   input.Model,
		Specs: models.Specs{
			DisplaySize:     input.DisplaySize,
			RAM:             input.RAM,
			Storage:         input.Storage,
			Camera:          input.Camera,
			Battery:         input.Battery,
			Processor:       input.Processor,
			OperatingSystem: input.OperatingSystem,
		},
		ImageURL: input.ImageURL,
	}
	if err := h.store.CreateMobile(c.UserContext(), mobile); err != nil {
		if errors.Is(err, database.ErrBrandNotFound) {
			return apperrors.NotFound("Brand not found")
		}
		return apperrors.InternalWrap(err, "Failed to create mobile")
	}

	h.log(c).Info("mobile created", "mobile_id", mobile.ID, "brand_id", mobile.BrandID)
	return h.created(c, mobile)
}
