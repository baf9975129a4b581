package models

import "time"

// Verdict is the action suggested for a catalog id.
type Verdict string

const (
	VerdictBuy   Verdict = "buy"
	VerdictWait  Verdict = "wait"
	VerdictAvoid Verdict = "avoid"
)

// Recommendation is the buy/wait/avoid verdict for one catalog id over a
// batch of listings.
type Recommendation struct {
	CatalogID          string
	DisplayName        string
	Condition          Condition
	CurrentBestPrice   float64
	AverageMarketPrice float64
	MedianPrice        float64
	PriceDifference    float64
	PricePercentage    float64
	Verdict            Verdict
	Confidence         float64
	Reasoning          string
	BestOffers         []Listing
}

// TrendEntry is a single tracked price sample.
type TrendEntry struct {
	CatalogID  string
	Price      float64
	ObservedAt time.Time
}

// TrendStats summarises the tracked window for a catalog id.
type TrendStats struct {
	TrendPercent      float64
	VolatilityPercent float64
	SampleCount       int
}
