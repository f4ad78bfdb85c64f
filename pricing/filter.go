package pricing

import (
	"strings"
)

// All disables the brand or price-range filter.
const All = "all"

// Filters are the listing predicates a caller may set. Zero values match
// everything.
type Filters struct {
	Search     string `query:"search" json:"search,omitempty"`
	Brand      string `query:"brand" json:"brand,omitempty"`
	PriceRange string `query:"price_range" json:"priceRange,omitempty"`
}

// Listing is a catalog model annotated with its brand and price summary.
type Listing struct {
	Model
	Brand         string `json:"brand"`
	LowestPrice   Price  `json:"lowestPrice"`
	RetailerCount int    `json:"retailerCount"`
	OfferCount    int    `json:"offerCount"`
}

// Bucket is a closed-open price interval. A zero Max means no upper bound.
type Bucket struct {
	Key string  `json:"key"`
	Min float64 `json:"min"`
	Max float64 `json:"max,omitempty"`
}

var Buckets = []Bucket{
	{Key: "0-50000", Min: 0, Max: 50000},
	{Key: "50000-100000", Min: 50000, Max: 100000},
	{Key: "100000-200000", Min: 100000, Max: 200000},
	{Key: "200000+", Min: 200000},
}

func (b Bucket) Contains(price float64) bool {
	if price < b.Min {
		return false
	}
	return b.Max == 0 || price < b.Max
}

// LookupBucket finds a bucket by key. "all" and unknown keys report false.
func LookupBucket(key string) (Bucket, bool) {
	key = strings.TrimSpace(key)
	for _, b := range Buckets {
		if b.Key == key {
			return b, true
		}
	}
	return Bucket{}, false
}

// Predicate reports whether a listing passes one filter.
type Predicate func(Listing) bool

func matchAll(Listing) bool { return true }

// SearchPredicate matches term case-insensitively against the brand name and
// model name joined by a space. A blank term matches everything.
func SearchPredicate(term string) Predicate {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return matchAll
	}
	return func(l Listing) bool {
		haystack := strings.ToLower(l.Brand + " " + l.Name)
		return strings.Contains(haystack, needle)
	}
}

// BrandPredicate matches the brand name exactly, ignoring case. "all", blank
// and names of brands that are not in known disable the filter.
func BrandPredicate(name string, known []Brand) Predicate {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, All) {
		return matchAll
	}
	for _, b := range known {
		if strings.EqualFold(b.Name, name) {
			return func(l Listing) bool {
				return strings.EqualFold(l.Brand, name)
			}
		}
	}
	return matchAll
}

// PriceRangePredicate keeps listings whose lowest price falls in the bucket
// named by key. Unpriced listings never match a bucket. "all" and unknown keys
// disable the filter.
func PriceRangePredicate(key string) Predicate {
	bucket, ok := LookupBucket(key)
	if !ok {
		return matchAll
	}
	return func(l Listing) bool {
		price, ok := l.LowestPrice.Value()
		return ok && bucket.Contains(price)
	}
}

// Predicates resolves f against the brands of the snapshot being filtered.
func (f Filters) Predicates(known []Brand) []Predicate {
	return []Predicate{
		SearchPredicate(f.Search),
		BrandPredicate(f.Brand, known),
		PriceRangePredicate(f.PriceRange),
	}
}

// Apply returns the listings that pass every predicate, in input order.
func Apply(listings []Listing, preds ...Predicate) []Listing {
	out := make([]Listing, 0, len(listings))
next:
	for _, l := range listings {
		for _, p := range preds {
			if !p(l) {
				continue next
			}
		}
		out = append(out, l)
	}
	return out
}
