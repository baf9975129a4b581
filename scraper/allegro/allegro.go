// Package allegro declares how offers are read from allegro.pl.
package allegro

import (
	"net/url"
	"regexp"

	"lego-price-agent/scraper"
	"lego-price-agent/utils"
)

const (
	name    = "Allegro"
	baseURL = "https://allegro.pl"
)

var priceText = regexp.MustCompile(`\d[\d\s.,]*\s*zł`)

// Marketplace returns the allegro.pl extraction table.
func Marketplace() scraper.Marketplace {
	return scraper.Marketplace{
		Name:    name,
		BaseURL: baseURL,
		SearchURL: func(query string) string {
			return baseURL + "/listing?string=" + url.QueryEscape(query) +
				"&bmatch=base-relevance-floki-5-nga-hc-ele-1-2-0901"
		},
		ReadySelectors: []string{`[data-testid="listing-grid"]`, `article[data-role="offer"]`},
		Containers: []string{
			`[data-testid="listing-grid"] > div`,
			`article[data-role="offer"]`,
			`section article`,
		},
		Title: scraper.Texts("h2", `[data-testid="title"]`, "h3").Bounded(5, 300),
		Price: scraper.Texts(`[data-testid="price"]`, `[aria-label*="cena"]`).
			Or(scraper.TextMatching("span, div", priceText)),
		Link:      scraper.Hrefs("h2 a", `a[href*="/oferta/"]`, "a"),
		Image:     scraper.Field{Strategies: []scraper.Strategy{scraper.Attr("img", "src")}},
		NewMarker: "nowy",
		Shipping:  scraper.ShippingPolicy{FlatFee: 15, FreeFrom: 100},
	}
}

// New returns an Adapter for allegro.pl.
func New(loader scraper.Loader, logger *utils.Logger, opts ...scraper.Option) *scraper.Adapter {
	return scraper.NewAdapter(Marketplace(), loader, logger, opts...)
}
