package pricing

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Offer is the latest price a retailer listed for a model in one city.
type Offer struct {
	Retailer   string    `json:"retailer"`
	City       string    `json:"city"`
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observedAt"`
}

type offerKey struct {
	modelID  uint
	retailer string
	city     string
}

func keyOf(o Observation) offerKey {
	return offerKey{modelID: o.ModelID, retailer: foldKey(o.Retailer), city: foldKey(o.City)}
}

// chronological returns the samples ordered by observation time. Samples with
// equal timestamps keep snapshot order.
func (v *View) chronological() []sample {
	out := slices.Clone(v.samples)
	slices.SortStableFunc(out, func(a, b sample) int {
		return a.obs.ObservedAt.Compare(b.obs.ObservedAt)
	})
	return out
}

// Offers returns the current price at every retailer and city that has listed
// the model, cheapest first. The boolean is false for models not in the
// catalog.
func (v *View) Offers(modelID uint) ([]Offer, bool) {
	if _, ok := v.modelByID[modelID]; !ok {
		return nil, false
	}

	latest := make(map[offerKey]Observation)
	var order []offerKey
	for _, s := range v.chronological() {
		if s.obs.ModelID != modelID {
			continue
		}
		k := keyOf(s.obs)
		if _, seen := latest[k]; !seen {
			order = append(order, k)
		}
		latest[k] = s.obs
	}

	offers := make([]Offer, 0, len(order))
	for _, k := range order {
		o := latest[k]
		offers = append(offers, Offer{
			Retailer:   o.Retailer,
			City:       o.City,
			Price:      o.Price,
			ObservedAt: o.ObservedAt,
		})
	}
	slices.SortStableFunc(offers, func(a, b Offer) int {
		if c := cmp.Compare(a.Price, b.Price); c != 0 {
			return c
		}
		if c := strings.Compare(foldKey(a.Retailer), foldKey(b.Retailer)); c != 0 {
			return c
		}
		return strings.Compare(foldKey(a.City), foldKey(b.City))
	})
	return offers, true
}

// PriceChange is a difference between two consecutive observations of the
// same model at the same retailer and city.
type PriceChange struct {
	ModelID       uint      `json:"modelId"`
	Model         string    `json:"model"`
	Brand         string    `json:"brand"`
	Retailer      string    `json:"retailer"`
	City          string    `json:"city"`
	OldPrice      float64   `json:"oldPrice"`
	NewPrice      float64   `json:"newPrice"`
	ChangePercent float64   `json:"changePercent"`
	ObservedAt    time.Time `json:"observedAt"`
}

// percentChange is rounded to two decimals. A zero old price yields zero.
func percentChange(oldPrice, newPrice float64) float64 {
	if oldPrice <= 0 {
		return 0
	}
	return round2((newPrice - oldPrice) / oldPrice * 100)
}

// RecentChanges returns price changes newest first, at most limit of them. A
// non-positive limit returns every change. Repeated observations of an
// unchanged price are not changes.
func (v *View) RecentChanges(limit int) []PriceChange {
	type change struct {
		PriceChange
		seq int
	}
	last := make(map[offerKey]float64)
	var changes []change
	for seq, s := range v.chronological() {
		if s.obs.ObservedAt.IsZero() {
			continue
		}
		k := keyOf(s.obs)
		prev, seen := last[k]
		last[k] = s.obs.Price
		if !seen || prev == s.obs.Price {
			continue
		}
		changes = append(changes, change{
			PriceChange: PriceChange{
				ModelID:       s.model.ID,
				Model:         s.model.Name,
				Brand:         s.brand.Name,
				Retailer:      s.obs.Retailer,
				City:          s.obs.City,
				OldPrice:      prev,
				NewPrice:      s.obs.Price,
				ChangePercent: percentChange(prev, s.obs.Price),
				ObservedAt:    s.obs.ObservedAt,
			},
			seq: seq,
		})
	}

	slices.SortFunc(changes, func(a, b change) int {
		if c := b.ObservedAt.Compare(a.ObservedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})
	if limit > 0 && len(changes) > limit {
		changes = changes[:limit]
	}

	out := make([]PriceChange, len(changes))
	for i, c := range changes {
		out[i] = c.PriceChange
	}
	return out
}

// MarketSummary describes the whole snapshot.
type MarketSummary struct {
	AvgPrice         Price  `json:"avgPrice"`
	SampleCount      int    `json:"sampleCount"`
	ModelCount       int    `json:"modelCount"`
	PricedModelCount int    `json:"pricedModelCount"`
	BrandCount       int    `json:"brandCount"`
	LatestPeriod     string `json:"latestPeriod,omitempty"`
	PreviousPeriod   string `json:"previousPeriod,omitempty"`
	// MonthOverMonthPercent compares the market average of LatestPeriod with
	// PreviousPeriod, the most recent earlier month that has observations.
	MonthOverMonthPercent *float64 `json:"monthOverMonthPercent,omitempty"`
}

func (v *View) Summary() MarketSummary {
	s := MarketSummary{
		AvgPrice:         Unavailable,
		SampleCount:      len(v.samples),
		ModelCount:       len(v.models),
		PricedModelCount: len(v.stats),
		BrandCount:       len(v.brands),
	}
	if len(v.samples) > 0 {
		var m mean
		for _, smp := range v.samples {
			m.add(smp.obs.Price)
		}
		s.AvgPrice = PriceOf(m.value())
	}

	n := len(v.periods)
	if n > 0 {
		s.LatestPeriod = v.periods[n-1].Period
	}
	if n > 1 {
		latest, prev := v.periods[n-1], v.periods[n-2]
		s.PreviousPeriod = prev.Period
		if prev.AvgPrice > 0 {
			pct := percentChange(prev.AvgPrice, latest.AvgPrice)
			s.MonthOverMonthPercent = &pct
		}
	}
	return s
}
