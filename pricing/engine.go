package pricing

import (
	"context"
	"math"
	"slices"
	"time"
)

// Store supplies snapshots. Retries, if any, belong to the implementation.
type Store interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// FetchError is returned by Engine.Load when the store could not produce a
// snapshot. It wraps the store's error unchanged.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "fetch price snapshot: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Option func(*Engine)

// WithLocation sets the timezone used to assign observations to calendar
// months. The default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

type Engine struct {
	loc *time.Location
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{loc: time.UTC}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// Load reads one snapshot from store and analyses it.
func (e *Engine) Load(ctx context.Context, store Store) (*View, error) {
	snap, err := store.Snapshot(ctx)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	return e.Analyze(snap), nil
}

// View holds every result derived from one snapshot. All of its methods read
// the same rows, so listings, averages and trends taken from one View are
// mutually consistent. A View is immutable and safe for concurrent reads.
type View struct {
	loc       *time.Location
	brands    []Brand
	brandByID map[uint]Brand
	models    []Model
	modelByID map[uint]Model
	samples   []sample
	stats     map[uint]*modelStats
	averages  []BrandAverage
	trends    []TrendPoint
	periods   []PeriodAverage
	warnings  []Warning
}

// Analyze validates the snapshot and computes every aggregate. Rows with
// invalid prices or dangling references are left out and reported through
// Warnings; they never fail the whole computation. A nil snapshot is treated
// as empty.
func (e *Engine) Analyze(snap *Snapshot) *View {
	if snap == nil {
		snap = &Snapshot{}
	}
	v := &View{
		loc:       e.loc,
		brandByID: make(map[uint]Brand, len(snap.Brands)),
		modelByID: make(map[uint]Model, len(snap.Models)),
	}

	for _, b := range snap.Brands {
		if _, dup := v.brandByID[b.ID]; dup {
			continue
		}
		v.brandByID[b.ID] = b
		v.brands = append(v.brands, b)
	}
	slices.SortFunc(v.brands, func(a, b Brand) int {
		return compareBrands(a.Name, a.ID, b.Name, b.ID)
	})

	for _, m := range snap.Models {
		if _, dup := v.modelByID[m.ID]; dup {
			v.warn(-1, m.ID, ReasonDuplicateModel)
			continue
		}
		if _, ok := v.brandByID[m.BrandID]; !ok {
			v.warn(-1, m.ID, ReasonUnknownBrand)
		}
		v.modelByID[m.ID] = m
		v.models = append(v.models, m)
	}

	for i, o := range snap.Observations {
		if reason, ok := checkPrice(o.Price); !ok {
			v.warn(i, o.ModelID, reason)
			continue
		}
		m, ok := v.modelByID[o.ModelID]
		if !ok {
			v.warn(i, o.ModelID, ReasonUnknownModel)
			continue
		}
		if o.ObservedAt.IsZero() {
			v.warn(i, o.ModelID, ReasonMissingTime)
		}
		b, hasBrand := v.brandByID[m.BrandID]
		v.samples = append(v.samples, sample{index: i, obs: o, model: m, brand: b, hasBrand: hasBrand})
	}

	v.stats = aggregateModels(v.samples)
	v.averages = averageByBrand(v.samples)
	v.trends, v.periods = trendSeries(v.samples, e.loc)
	return v
}

func checkPrice(p float64) (string, bool) {
	switch {
	case math.IsNaN(p) || math.IsInf(p, 0):
		return ReasonNonFinitePrice, false
	case p < 0:
		return ReasonNegativePrice, false
	}
	return "", true
}

func (v *View) warn(index int, modelID uint, reason string) {
	v.warnings = append(v.warnings, Warning{Index: index, ModelID: modelID, Reason: reason})
}

func (v *View) Warnings() []Warning {
	return slices.Clone(v.warnings)
}

// Brands returns the snapshot's brands ordered by name.
func (v *View) Brands() []Brand {
	return slices.Clone(v.brands)
}

// LowestPrice returns the minimum observed price of a model, or Unavailable
// when nothing was recorded for it.
func (v *View) LowestPrice(modelID uint) Price {
	st, ok := v.stats[modelID]
	if !ok {
		return Unavailable
	}
	return PriceOf(st.lowest)
}

// Listings returns the catalog in snapshot order, annotated with prices and
// narrowed by f.
func (v *View) Listings(f Filters) []Listing {
	all := make([]Listing, 0, len(v.models))
	for _, m := range v.models {
		l := Listing{
			Model:       m,
			Brand:       v.brandByID[m.BrandID].Name,
			LowestPrice: Unavailable,
		}
		if st, ok := v.stats[m.ID]; ok {
			l.LowestPrice = PriceOf(st.lowest)
			l.OfferCount = st.offers
			l.RetailerCount = len(st.retailers)
		}
		all = append(all, l)
	}
	return Apply(all, f.Predicates(v.brands)...)
}

// BrandAverages returns brands ordered by average price, highest first.
func (v *View) BrandAverages() []BrandAverage {
	return slices.Clone(v.averages)
}

// TopBrandAverages returns at most n entries of BrandAverages. A
// non-positive n returns all of them.
func (v *View) TopBrandAverages(n int) []BrandAverage {
	if n <= 0 || n >= len(v.averages) {
		return v.BrandAverages()
	}
	return slices.Clone(v.averages[:n])
}

// Trends returns monthly brand averages ordered by period, then brand name.
func (v *View) Trends() []TrendPoint {
	return slices.Clone(v.trends)
}

// PeriodAverages returns the market-wide monthly averages in period order.
func (v *View) PeriodAverages() []PeriodAverage {
	return slices.Clone(v.periods)
}

func (v *View) Model(id uint) (Model, bool) {
	m, ok := v.modelByID[id]
	return m, ok
}
