package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"lego-price-agent/models"
)

var (
	sep  = strings.Repeat("═", 54)
	thin = strings.Repeat("─", 54)
)

// PrintSearch writes a search result as a terminal report.
func PrintSearch(w io.Writer, res models.SearchResult) {
	header(w, "🧱 SEARCH: "+res.Query)

	fmt.Fprintf(w, "\033[1;33m  Sources\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	names := make([]string, 0, len(res.PerSource))
	for name := range res.PerSource {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s : \033[1m%d\033[0m offers\n", name, res.PerSource[name])
	}
	fmt.Fprintf(w, "  Run id       : %s\n\n", res.RunID)

	printListings(w, res.Listings)
	printRecommendations(w, res.Recommendations)
	footer(w)
}

// PrintLookup writes the offers and verdict for a single set.
func PrintLookup(w io.Writer, res models.LookupResult) {
	header(w, "🧱 SET "+res.CatalogID)
	printListings(w, res.Listings)
	if res.Recommendation != nil {
		printRecommendations(w, []models.Recommendation{*res.Recommendation})
	}
	footer(w)
}

// PrintDeals writes the favorable recommendations of a batch run.
func PrintDeals(w io.Writer, recs []models.Recommendation) {
	header(w, "💰 CURRENT DEALS")
	printRecommendations(w, recs)
	footer(w)
}

// PrintTrends writes tracked trend figures per set.
func PrintTrends(w io.Writer, trends map[string]models.TrendStats) {
	header(w, "📈 PRICE TRENDS")

	ids := make([]string, 0, len(trends))
	for id := range trends {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if len(ids) == 0 {
		fmt.Fprintf(w, "  No trend data\n")
	}
	for _, id := range ids {
		t := trends[id]
		fmt.Fprintf(w, "  %-10s trend %+7.2f%%  volatility %6.2f%%  samples %d\n",
			id, t.TrendPercent, t.VolatilityPercent, t.SampleCount)
	}
	footer(w)
}

func printListings(w io.Writer, listings []models.Listing) {
	fmt.Fprintf(w, "\033[1;33m  Offers\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(listings) == 0 {
		fmt.Fprintf(w, "  No offers found\n\n")
		return
	}
	for _, l := range listings {
		fmt.Fprintf(w, "  %-8s %-34s %9.2f zł  %-4s %s\n",
			l.CatalogID, truncate(l.Title, 34), l.TotalPrice, l.Condition, l.SourceName)
	}
	fmt.Fprintln(w)
}

func printRecommendations(w io.Writer, recs []models.Recommendation) {
	fmt.Fprintf(w, "\033[1;33m  Recommendations\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(recs) == 0 {
		fmt.Fprintf(w, "  No recommendations\n\n")
		return
	}
	for _, r := range recs {
		fmt.Fprintf(w, "  \033[1m%s\033[0m %s\n", r.CatalogID, truncate(r.DisplayName, 44))
		fmt.Fprintf(w, "    %s  best %.2f zł | avg %.2f zł | confidence %.2f\n",
			verdictLabel(r.Verdict), round2(r.CurrentBestPrice), round2(r.AverageMarketPrice), r.Confidence)
		fmt.Fprintf(w, "    %s\n", r.Reasoning)
		for i, o := range r.BestOffers {
			fmt.Fprintf(w, "    %d. %.2f zł  %s\n", i+1, o.TotalPrice, o.SourceURL)
		}
	}
	fmt.Fprintln(w)
}

func verdictLabel(v models.Verdict) string {
	switch v {
	case models.VerdictBuy:
		return "\033[1;32mBUY  \033[0m"
	case models.VerdictAvoid:
		return "\033[1;31mAVOID\033[0m"
	default:
		return "\033[1;33mWAIT \033[0m"
	}
}

func header(w io.Writer, title string) {
	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  %s\033[0m\n", title)
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
}

func footer(w io.Writer) {
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
