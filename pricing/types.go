// Package pricing turns a snapshot of retailer price observations into
// listings, brand averages and monthly trend series.
//
// Everything in this package is a pure function of its inputs. An Engine holds
// only configuration, so a single Engine can analyse snapshots for many
// concurrent requests.
package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type Brand struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Specs struct {
	DisplaySize string `json:"displaySize"`
	RAM         string `json:"ram"`
	Storage     string `json:"storage"`
	Camera      string `json:"camera"`
	Battery     string `json:"battery"`
	Processor   string `json:"processor"`
	OS          string `json:"os"`
}

type Model struct {
	ID       uint   `json:"id"`
	BrandID  uint   `json:"brandId"`
	Name     string `json:"name"`
	Specs    Specs  `json:"specs"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Observation is one recorded price for one model at one retailer and city.
type Observation struct {
	ModelID    uint      `json:"modelId"`
	Retailer   string    `json:"retailer"`
	City       string    `json:"city"`
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observedAt"`
}

// Snapshot is the immutable set of rows a single query is computed from.
type Snapshot struct {
	Brands       []Brand
	Models       []Model
	Observations []Observation
}

// Price is an amount in the base currency unit that may be unavailable.
// The zero value is unavailable, which is not the same as a price of zero.
type Price struct {
	amount float64
	valid  bool
}

// Unavailable is the price of a model with no recorded observations.
var Unavailable = Price{}

const unavailableLiteral = `"unavailable"`

func PriceOf(amount float64) Price {
	return Price{amount: amount, valid: true}
}

func (p Price) Value() (float64, bool) {
	return p.amount, p.valid
}

func (p Price) Available() bool {
	return p.valid
}

func (p Price) Equal(o Price) bool {
	return p.valid == o.valid && (!p.valid || p.amount == o.amount)
}

func (p Price) String() string {
	if !p.valid {
		return "unavailable"
	}
	return fmt.Sprintf("%.2f", p.amount)
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.valid {
		return []byte(unavailableLiteral), nil
	}
	return json.Marshal(p.amount)
}

func (p *Price) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(unavailableLiteral)) || bytes.Equal(data, []byte("null")) {
		*p = Unavailable
		return nil
	}
	var amount float64
	if err := json.Unmarshal(data, &amount); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*p = PriceOf(amount)
	return nil
}

// Warning reports a row that was left out of the derived results.
type Warning struct {
	// Index is the position of the observation in the snapshot, or -1 when
	// the warning concerns a catalog row.
	Index   int    `json:"index"`
	ModelID uint   `json:"modelId"`
	Reason  string `json:"reason"`
}

const (
	ReasonNegativePrice  = "negative price"
	ReasonNonFinitePrice = "non-finite price"
	ReasonUnknownModel   = "observation references unknown model"
	ReasonUnknownBrand   = "model references unknown brand"
	ReasonDuplicateModel = "duplicate model id"
	ReasonMissingTime    = "observation has no timestamp"
)

func (w Warning) String() string {
	if w.Index < 0 {
		return fmt.Sprintf("model %d: %s", w.ModelID, w.Reason)
	}
	return fmt.Sprintf("observation %d (model %d): %s", w.Index, w.ModelID, w.Reason)
}
