package pricing

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// BrandAverage is the mean observed price across every model of a brand.
type BrandAverage struct {
	BrandID     uint    `json:"brandId"`
	Brand       string  `json:"brand"`
	AvgPrice    float64 `json:"avgPrice"`
	SampleCount int     `json:"sampleCount"`
}

// sample is an observation that passed validation, joined with its model and,
// when the model's brand exists, its brand.
type sample struct {
	index    int
	obs      Observation
	model    Model
	brand    Brand
	hasBrand bool
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() float64 {
	return m.sum / float64(m.n)
}

type modelStats struct {
	lowest    float64
	offers    int
	retailers map[string]struct{}
}

func (s *modelStats) add(o Observation) {
	if s.offers == 0 || o.Price < s.lowest {
		s.lowest = o.Price
	}
	s.offers++
	s.retailers[foldKey(o.Retailer)] = struct{}{}
}

// aggregateModels computes the lowest price, offer count and distinct
// retailer count of every model that has at least one sample.
func aggregateModels(samples []sample) map[uint]*modelStats {
	stats := make(map[uint]*modelStats)
	for _, s := range samples {
		st, ok := stats[s.obs.ModelID]
		if !ok {
			st = &modelStats{retailers: make(map[string]struct{})}
			stats[s.obs.ModelID] = st
		}
		st.add(s.obs)
	}
	return stats
}

// averageByBrand groups samples by their model's brand. Brands without samples
// do not appear in the result.
func averageByBrand(samples []sample) []BrandAverage {
	groups := make(map[uint]*mean)
	names := make(map[uint]string)
	for _, s := range samples {
		if !s.hasBrand {
			continue
		}
		g, ok := groups[s.brand.ID]
		if !ok {
			g = &mean{}
			groups[s.brand.ID] = g
			names[s.brand.ID] = s.brand.Name
		}
		g.add(s.obs.Price)
	}

	out := make([]BrandAverage, 0, len(groups))
	for id, g := range groups {
		out = append(out, BrandAverage{
			BrandID:     id,
			Brand:       names[id],
			AvgPrice:    g.value(),
			SampleCount: g.n,
		})
	}
	slices.SortFunc(out, func(a, b BrandAverage) int {
		if c := cmp.Compare(b.AvgPrice, a.AvgPrice); c != 0 {
			return c
		}
		return compareBrands(a.Brand, a.BrandID, b.Brand, b.BrandID)
	})
	return out
}

// compareBrands orders brand names case-insensitively, falling back to byte
// order and then id so the result never depends on map iteration.
func compareBrands(aName string, aID uint, bName string, bID uint) int {
	if c := strings.Compare(foldKey(aName), foldKey(bName)); c != 0 {
		return c
	}
	if c := strings.Compare(aName, bName); c != 0 {
		return c
	}
	return cmp.Compare(aID, bID)
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
