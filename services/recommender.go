package services

import (
	"fmt"
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"github.com/samber/lo"

	"lego-price-agent/models"
	"lego-price-agent/utils"
)

const (
	bestOfferCount = 3
	minConfidence  = 0.1

	excellentDealPct = 20.0
	goodDealPct      = 10.0
	fairPricePct     = -5.0
	// used sets are only worth buying well below the new-set average
	usedDiscountPct = 30.0
)

// Recommender turns a batch of listings into per-set verdicts.
type Recommender struct {
	logger *utils.Logger
}

// NewRecommender creates a Recommender with the given logger.
func NewRecommender(logger *utils.Logger) *Recommender {
	return &Recommender{logger: logger}
}

// Analyze groups listings by catalog id and returns one recommendation per
// id in first-seen order. Ids whose listings are neither new nor used get no
// recommendation.
func (r *Recommender) Analyze(listings []models.Listing) []models.Recommendation {
	order := lo.Uniq(lo.Map(listings, func(l models.Listing, _ int) string { return l.CatalogID }))
	groups := lo.GroupBy(listings, func(l models.Listing) string { return l.CatalogID })

	recs := make([]models.Recommendation, 0, len(order))
	for _, id := range order {
		rec, ok := r.analyzeSet(id, groups[id])
		if !ok {
			r.logger.Debug("[recommender] No new or used offers for %s, skipping", id)
			continue
		}
		recs = append(recs, rec)
	}
	return recs
}

func (r *Recommender) analyzeSet(catalogID string, set []models.Listing) (models.Recommendation, bool) {
	byCondition := func(c models.Condition) []models.Listing {
		return lo.Filter(set, func(l models.Listing, _ int) bool { return l.Condition == c })
	}

	if fresh := byCondition(models.ConditionNew); len(fresh) > 0 {
		return r.analyzeCondition(catalogID, fresh, models.ConditionNew)
	}
	if used := byCondition(models.ConditionUsed); len(used) > 0 {
		return r.analyzeCondition(catalogID, used, models.ConditionUsed)
	}
	return models.Recommendation{}, false
}

func (r *Recommender) analyzeCondition(catalogID string, set []models.Listing, condition models.Condition) (models.Recommendation, bool) {
	totals := lo.Map(set, func(l models.Listing, _ int) float64 { return l.TotalPrice })

	best, err := stats.Min(totals)
	if err != nil {
		return models.Recommendation{}, false
	}
	avg, err := stats.Mean(totals)
	if err != nil {
		return models.Recommendation{}, false
	}
	median, err := stats.Median(totals)
	if err != nil {
		return models.Recommendation{}, false
	}

	diff := avg - best
	pct := 0.0
	if avg > 0 {
		pct = diff / avg * 100
	}
	verdict, reasoning := Classify(pct, condition)

	return models.Recommendation{
		CatalogID:          catalogID,
		DisplayName:        set[0].Title,
		Condition:          condition,
		CurrentBestPrice:   best,
		AverageMarketPrice: avg,
		MedianPrice:        median,
		PriceDifference:    diff,
		PricePercentage:    pct,
		Verdict:            verdict,
		Confidence:         Confidence(avg, median),
		Reasoning:          reasoning,
		BestOffers:         bestOffers(set),
	}, true
}

// Classify maps how far the best offer sits below the average (in percent)
// to a verdict with its explanation.
func Classify(pricePercentage float64, condition models.Condition) (models.Verdict, string) {
	var (
		verdict   models.Verdict
		reasoning string
	)
	switch {
	case pricePercentage >= excellentDealPct:
		verdict = models.VerdictBuy
		reasoning = fmt.Sprintf("Excellent deal, %.1f%% below market average", pricePercentage)
	case pricePercentage >= goodDealPct:
		verdict = models.VerdictBuy
		reasoning = fmt.Sprintf("Good deal, %.1f%% below market average", pricePercentage)
	case pricePercentage >= fairPricePct:
		verdict = models.VerdictWait
		reasoning = "Average price, consider waiting for better deals"
	default:
		verdict = models.VerdictAvoid
		reasoning = fmt.Sprintf("Price is %.1f%% above market average", math.Abs(pricePercentage))
	}

	if condition == models.ConditionUsed && pricePercentage < usedDiscountPct {
		verdict = models.VerdictAvoid
		reasoning += ", used set should be cheaper"
	}
	return verdict, reasoning
}

// Confidence is 1 minus the relative gap between mean and median, floored
// at 0.1. Skewed price samples lower it.
func Confidence(avg, median float64) float64 {
	ratio := 0.0
	if avg > 0 {
		ratio = math.Abs(avg-median) / avg
	}
	return math.Max(minConfidence, 1-ratio)
}

func bestOffers(set []models.Listing) []models.Listing {
	sorted := slices.Clone(set)
	slices.SortStableFunc(sorted, func(a, b models.Listing) int {
		switch {
		case a.TotalPrice < b.TotalPrice:
			return -1
		case a.TotalPrice > b.TotalPrice:
			return 1
		}
		return 0
	})
	if len(sorted) > bestOfferCount {
		sorted = sorted[:bestOfferCount]
	}
	return sorted
}
