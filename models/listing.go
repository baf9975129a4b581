package models

import "time"

// Condition is the physical state of an offered set.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionUsed    Condition = "used"
	ConditionDamaged Condition = "damaged"
)

// Listing is one observed offer for a catalog item from one marketplace.
// It is built per search call and is not retained by the core afterwards.
type Listing struct {
	CatalogID    string
	Title        string
	Price        float64
	ShippingCost float64
	TotalPrice   float64
	SourceName   string
	SourceURL    string
	Condition    Condition
	Available    bool
	ObservedAt   time.Time
	ImageURL     string
}

// NewListing builds a Listing whose TotalPrice is the sum of price and
// shipping. Negative amounts are clamped to zero.
func NewListing(catalogID, title string, price, shipping float64, source, url string, cond Condition, observedAt time.Time) Listing {
	if price < 0 {
		price = 0
	}
	if shipping < 0 {
		shipping = 0
	}
	return Listing{
		CatalogID:    catalogID,
		Title:        title,
		Price:        price,
		ShippingCost: shipping,
		TotalPrice:   price + shipping,
		SourceName:   source,
		SourceURL:    url,
		Condition:    cond,
		Available:    true,
		ObservedAt:   observedAt,
	}
}

// SearchResult is what a single search across all marketplaces produced.
type SearchResult struct {
	RunID           string
	Query           string
	Listings        []Listing
	Recommendations []Recommendation
	// PerSource counts the listings each marketplace contributed before the
	// result limit was applied.
	PerSource map[string]int
}

// LookupResult holds the exact-id offers for a single catalog id.
type LookupResult struct {
	CatalogID      string
	Listings       []Listing
	Recommendation *Recommendation
}
