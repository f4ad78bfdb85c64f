package controllers

import (
	"github.com/gofiber/fiber/v2"

	"pricewatch/pricing"
)

const (
	dashboardTopBrands = 6
	dashboardChanges   = 5
)

type dashboardResponse struct {
	// Timezone is the zone whose calendar months bucket the trend periods.
	Timezone       string                  `json:"timezone"`
	Summary        pricing.MarketSummary   `json:"summary"`
	BrandAverages  []pricing.BrandAverage  `json:"brandAverages"`
	Trends         []pricing.TrendPoint    `json:"trends"`
	PeriodAverages []pricing.PeriodAverage `json:"periodAverages"`
	RecentChanges  []pricing.PriceChange   `json:"recentChanges"`
}

// GetDashboard builds every chart of the trends page from a single snapshot.
func (h *Controller) GetDashboard(c *fiber.Ctx) error {
	return h.serveView(c, func(v *pricing.View) (any, error) {
		return dashboardResponse{
			Timezone:       h.engine.Location().String(),
			Summary:        v.Summary(),
			BrandAverages:  orEmpty(v.TopBrandAverages(dashboardTopBrands)),
			Trends:         orEmpty(v.Trends()),
			PeriodAverages: orEmpty(v.PeriodAverages()),
			RecentChanges:  orEmpty(v.RecentChanges(dashboardChanges)),
		}, nil
	})
}
