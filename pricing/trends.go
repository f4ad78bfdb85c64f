package pricing

import (
	"slices"
	"strings"
	"time"
)

// PeriodLayout formats the calendar month a trend point belongs to.
const PeriodLayout = "2006-01"

// TrendPoint is the average price of one brand within one calendar month.
type TrendPoint struct {
	Period      string  `json:"period"`
	BrandID     uint    `json:"brandId"`
	Brand       string  `json:"brand"`
	AvgPrice    float64 `json:"avgPrice"`
	SampleCount int     `json:"sampleCount"`
}

// PeriodAverage is the market-wide average for one calendar month.
type PeriodAverage struct {
	Period      string  `json:"period"`
	AvgPrice    float64 `json:"avgPrice"`
	SampleCount int     `json:"sampleCount"`
}

func periodKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(PeriodLayout)
}

type periodBrand struct {
	period  string
	brandID uint
}

// trendSeries buckets samples by calendar month in loc. Each (period, brand)
// pair is averaged only over the samples that fall inside that month, so
// appending observations can only change the months they land in. Samples
// without a timestamp are skipped; the caller has already warned about them.
func trendSeries(samples []sample, loc *time.Location) ([]TrendPoint, []PeriodAverage) {
	byBrand := make(map[periodBrand]*mean)
	names := make(map[uint]string)
	byPeriod := make(map[string]*mean)

	for _, s := range samples {
		if s.obs.ObservedAt.IsZero() {
			continue
		}
		period := periodKey(s.obs.ObservedAt, loc)

		total, ok := byPeriod[period]
		if !ok {
			total = &mean{}
			byPeriod[period] = total
		}
		total.add(s.obs.Price)

		if !s.hasBrand {
			continue
		}
		key := periodBrand{period: period, brandID: s.brand.ID}
		g, ok := byBrand[key]
		if !ok {
			g = &mean{}
			byBrand[key] = g
			names[s.brand.ID] = s.brand.Name
		}
		g.add(s.obs.Price)
	}

	points := make([]TrendPoint, 0, len(byBrand))
	for key, g := range byBrand {
		points = append(points, TrendPoint{
			Period:      key.period,
			BrandID:     key.brandID,
			Brand:       names[key.brandID],
			AvgPrice:    g.value(),
			SampleCount: g.n,
		})
	}
	slices.SortFunc(points, func(a, b TrendPoint) int {
		if c := strings.Compare(a.Period, b.Period); c != 0 {
			return c
		}
		return compareBrands(a.Brand, a.BrandID, b.Brand, b.BrandID)
	})

	periods := make([]PeriodAverage, 0, len(byPeriod))
	for period, g := range byPeriod {
		periods = append(periods, PeriodAverage{
			Period:      period,
			AvgPrice:    g.value(),
			SampleCount: g.n,
		})
	}
	slices.SortFunc(periods, func(a, b PeriodAverage) int {
		return strings.Compare(a.Period, b.Period)
	})

	return points, periods
}
