package pricing

import "time"

var (
	samsung = Brand{ID: 1, Name: "Samsung"}
	apple   = Brand{ID: 2, Name: "Apple"}
	xiaomi  = Brand{ID: 3, Name: "Xiaomi"}

	galaxyA15 = Model{ID: 10, BrandID: 1, Name: "Galaxy A15", Specs: Specs{RAM: "6GB", Storage: "128GB"}}
	iphone15  = Model{ID: 20, BrandID: 2, Name: "iPhone 15 Pro"}
	redmi13   = Model{ID: 30, BrandID: 3, Name: "Redmi Note 13"}
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func obs(modelID uint, retailer, city string, price float64, at time.Time) Observation {
	return Observation{ModelID: modelID, Retailer: retailer, City: city, Price: price, ObservedAt: at}
}

// exampleSnapshot is the three-observation example used throughout the
// package docs: two Samsung prices and one Apple price.
func exampleSnapshot() *Snapshot {
	return &Snapshot{
		Brands: []Brand{samsung, apple},
		Models: []Model{
			{ID: 1, BrandID: 1, Name: "Model A"},
			{ID: 2, BrandID: 2, Name: "Model B"},
		},
		Observations: []Observation{
			obs(1, "Daraz", "Lahore", 50000, day(2024, time.January, 5)),
			obs(1, "PriceOye", "Karachi", 45000, day(2024, time.January, 9)),
			obs(2, "Daraz", "Lahore", 180000, day(2024, time.January, 7)),
		},
	}
}

func marketSnapshot() *Snapshot {
	return &Snapshot{
		Brands: []Brand{samsung, apple, xiaomi},
		Models: []Model{galaxyA15, iphone15, redmi13},
		Observations: []Observation{
			obs(10, "Daraz", "Lahore", 52000, day(2024, time.January, 3)),
			obs(10, "PriceOye", "Karachi", 49999, day(2024, time.January, 20)),
			obs(20, "Daraz", "Islamabad", 365000, day(2024, time.January, 15)),
			obs(10, "Daraz", "Lahore", 48000, day(2024, time.February, 2)),
			obs(20, "Daraz", "Islamabad", 369999, day(2024, time.February, 11)),
			obs(20, "Whatmobile", "Lahore", 372000, day(2024, time.February, 12)),
		},
	}
}
