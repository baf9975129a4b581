package scraper

// ShippingPolicy is a flat fee waived at or above a price threshold.
type ShippingPolicy struct {
	FlatFee  float64
	FreeFrom float64
}

// Cost returns the shipping charged for an item at price.
func (p ShippingPolicy) Cost(price float64) float64 {
	if price >= p.FreeFrom {
		return 0
	}
	return p.FlatFee
}

// Marketplace describes how to query and read one marketplace. Supporting
// a new marketplace means declaring one of these, not writing a scraper.
type Marketplace struct {
	Name    string
	BaseURL string
	// SearchURL builds the results page address for a free-text query.
	SearchURL func(query string) string

	// ReadySelectors signal that results have rendered; the loader waits
	// for any of them within its settle window.
	ReadySelectors []string
	// Containers are tried in order; the first selector matching at least
	// one element defines the candidate offers.
	Containers []string

	Title Field
	Price Field
	Link  Field
	Image Field

	// NewMarker is the localized word marking a new set in a title. When
	// AlwaysNew is set every offer is considered new.
	NewMarker string
	AlwaysNew bool

	Shipping ShippingPolicy
}
