// Package olx declares how offers are read from olx.pl classifieds.
package olx

import (
	"net/url"
	"regexp"
	"strings"

	"lego-price-agent/scraper"
	"lego-price-agent/utils"
)

const (
	name    = "OLX"
	baseURL = "https://www.olx.pl"
)

var priceText = regexp.MustCompile(`\d[\d\s.,]*\s*zł`)

// containers lists the result wrappers OLX has used, most recent first.
var containers = []string{
	`[data-testid="listing-grid"]`,
	`.listing-grid`,
	`.search-results`,
	`.products-grid`,
	`[data-role="search-results"]`,
	`.offers-list`,
}

// Marketplace returns the olx.pl extraction table.
func Marketplace() scraper.Marketplace {
	cards := make([]string, 0, len(containers)+1)
	for _, c := range containers {
		cards = append(cards, c+" > div, "+c+" > article, "+c+" > li")
	}
	// page-wide fallback when no known wrapper rendered
	cards = append(cards, `[data-testid*="product"], .product-card, .listing-item, article, .offer`)

	return scraper.Marketplace{
		Name:    name,
		BaseURL: baseURL,
		SearchURL: func(query string) string {
			return baseURL + "/d/ogloszenia/q-" + url.PathEscape(strings.ReplaceAll(query, " ", "-")) + "/"
		},
		ReadySelectors: containers,
		Containers:     cards,
		Title: scraper.Texts("h6", "h5", "h4", ".title", `[data-testid="title"]`, ".product-title", ".offer-title").
			Bounded(5, 300),
		Price: scraper.Texts(`[data-testid="ad-price"]`, ".price", ".product-price", ".listing-price", ".offer-price").
			Or(scraper.TextMatching("p, span", priceText)),
		Link: scraper.Hrefs("a", `[data-testid="link"]`, ".product-link", ".offer-link"),
		Image: scraper.Field{Strategies: []scraper.Strategy{
			scraper.Attr("img", "src"),
			scraper.Attr("img", "data-src"),
		}},
		NewMarker: "nowy",
		Shipping:  scraper.ShippingPolicy{FlatFee: 20, FreeFrom: 200},
	}
}

// New returns an Adapter for olx.pl.
func New(loader scraper.Loader, logger *utils.Logger, opts ...scraper.Option) *scraper.Adapter {
	return scraper.NewAdapter(Marketplace(), loader, logger, opts...)
}
